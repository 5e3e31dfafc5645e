package log

import (
	"errors"
	"fmt"
	"os"

	"github.com/Digital-Shane/tvshelf/internal/util"
)

// ErrNoSessions is returned when there is nothing to undo.
var ErrNoSessions = errors.New("no sessions found")

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

// UndoOperation reverts a single journaled operation.
func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	switch op.Type {
	case OpMove:
		if op.SourcePath == "" || op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo move: path missing")
			return result
		}
		if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo move: file %s not found", op.DestPath)
			return result
		}
		if _, err := os.Stat(op.SourcePath); err == nil {
			result.Error = fmt.Errorf("cannot undo move: original path %s already exists", op.SourcePath)
			return result
		}
		if err := util.MoveFile(op.DestPath, op.SourcePath); err != nil {
			result.Error = fmt.Errorf("failed to move %s back to %s: %w", op.DestPath, op.SourcePath, err)
			return result
		}
		result.Success = true

	case OpCreateDir:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo directory creation: path missing")
			return result
		}
		info, err := os.Stat(op.DestPath)
		if os.IsNotExist(err) {
			// Already gone.
			result.Success = true
			return result
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to stat %s: %w", op.DestPath, err)
			return result
		}
		if !info.IsDir() {
			result.Error = fmt.Errorf("path %s is not a directory", op.DestPath)
			return result
		}
		entries, err := os.ReadDir(op.DestPath)
		if err != nil {
			result.Error = fmt.Errorf("failed to read directory %s: %w", op.DestPath, err)
			return result
		}
		if len(entries) > 0 {
			result.Error = fmt.Errorf("cannot remove directory %s: not empty", op.DestPath)
			return result
		}
		if err := os.Remove(op.DestPath); err != nil {
			result.Error = fmt.Errorf("failed to remove directory %s: %w", op.DestPath, err)
			return result
		}
		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}
	return result
}

// UndoSession reverts the successful operations of session, newest first.
func UndoSession(session *LogSession) (successful int, failed int, errs []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}
		result := UndoOperation(op)
		if result.Success {
			successful++
			continue
		}
		failed++
		if result.Error != nil {
			errs = append(errs, result.Error)
		}
	}
	return successful, failed, errs
}

// FindLatestSession returns the newest readable session and its file path.
func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", err
	}
	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}
