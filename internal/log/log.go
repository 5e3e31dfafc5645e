// Package log keeps a per-run journal of filesystem mutations so a run can be undone.
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type OperationType string

const (
	OpMove      OperationType = "move"
	OpCreateDir OperationType = "create_dir"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path,omitempty"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession *LogSession
	sessionMutex   sync.Mutex
	loggingEnabled = true
	// logDir overrides the journal directory; empty means ~/.tvshelf/logs.
	logDir string
)

// StartSession opens a new session. It is a no-op while logging is disabled.
func StartSession(command string, args []string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	now := time.Now()
	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Timestamp:   now,
			SessionID:   fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000),
		},
		Operations: []OperationLog{},
	}
	return nil
}

// EndSession saves the current session to disk. Sessions without operations
// are dropped so undo always finds a run that changed something.
func EndSession() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return nil
	}
	defer func() { currentSession = nil }()

	if len(currentSession.Operations) == 0 {
		return nil
	}
	updateStats()
	return WriteSession(currentSession)
}

// Enabled reports whether operations are being journaled.
func Enabled() bool {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	return loggingEnabled && currentSession != nil
}

// LogMove records a file move.
func LogMove(sourcePath, destPath string, success bool, err error) {
	LogOperation(OpMove, sourcePath, destPath, success, err)
}

// LogCreateDir records a directory creation.
func LogCreateDir(dirPath string, success bool, err error) {
	LogOperation(OpCreateDir, "", dirPath, success, err)
}

// LogOperation appends an operation to the current session.
func LogOperation(opType OperationType, sourcePath, destPath string, success bool, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", currentSession.Metadata.SessionID, len(currentSession.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Success:    success,
	}
	if err != nil {
		op.Error = err.Error()
	}
	currentSession.Operations = append(currentSession.Operations, op)
}

func updateStats() {
	if currentSession == nil {
		return
	}
	successful := 0
	for _, op := range currentSession.Operations {
		if op.Success {
			successful++
		}
	}
	currentSession.Metadata.TotalOps = len(currentSession.Operations)
	currentSession.Metadata.SuccessfulOps = successful
	currentSession.Metadata.FailedOps = len(currentSession.Operations) - successful
}

// Initialize sets whether sessions are recorded and prunes journals older than retentionDays.
func Initialize(enabled bool, retentionDays int) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled
	if !enabled || retentionDays <= 0 {
		return nil
	}
	return cleanupOldLogsUnsafe(retentionDays)
}

// SetDir redirects the journal directory. An empty dir restores the default.
func SetDir(dir string) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	logDir = dir
}

// Dir returns the journal directory without creating it.
func Dir() (string, error) {
	if logDir != "" {
		return logDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tvshelf", "logs"), nil
}

func GetLogPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	now := time.Now()
	return filepath.Join(dir, fmt.Sprintf("%s.%03d.json", now.Format("2006-01-02_150405"), now.Nanosecond()/1000000)), nil
}

func WriteSession(session *LogSession) error {
	if session == nil {
		return nil
	}
	logPath, err := GetLogPath()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// sessionFiles lists journal files newest first. File names sort by time.
func sessionFiles() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// ReadSessions returns up to limit sessions, newest first. Corrupted files are skipped.
func ReadSessions(limit int) ([]*LogSession, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// cleanupOldLogsUnsafe performs cleanup without acquiring mutex (assumes caller holds it)
func cleanupOldLogsUnsafe(retentionDays int) error {
	files, err := sessionFiles()
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var failed []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				failed = append(failed, file)
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove %d old log file(s)", len(failed))
	}
	return nil
}
