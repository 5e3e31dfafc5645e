package console

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func plainTheme() *Theme {
	theme := DefaultTheme()
	theme.Icons = asciiIcons
	return &theme
}

func TestConsoleLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, _ := New(Options{Out: &buf, NoColor: true, Theme: plainTheme()})

	log.Info().Msg("Source: /in")
	Success(log).Msg("Moving to /out/a.mkv")
	log.Warn().Msg("Skipping (file too small, probably sample)")
	log.Error().Msg("File /out/a.mkv already exists.")
	Title(log).Msg("Show Name")
	log.Debug().Msg("hidden")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"   Source: /in",
		"[v] Moving to /out/a.mkv",
		"[!] Skipping (file too small, probably sample)",
		"[x] File /out/a.mkv already exists.",
		"[TV] Show Name",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("console output mismatch (-want +got):\n%s", diff)
	}
}

func TestVerboseShowsDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, _ := New(Options{Out: &buf, NoColor: true, Verbose: true, Theme: plainTheme()})
	log.Debug().Msg("probing")
	if got := strings.TrimSpace(buf.String()); got != ".. probing" {
		t.Errorf("debug line = %q", got)
	}
}

func TestComponentFieldIsHiddenOnConsole(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, _ := New(Options{Out: &buf, NoColor: true, Theme: plainTheme()})
	mover := Component(log, "mover")
	mover.Info().Str("show_id", "42").Msg("hello")
	got := strings.TrimSpace(buf.String())
	if strings.Contains(got, "mover") {
		t.Errorf("component leaked into console line: %q", got)
	}
	if !strings.Contains(got, "show_id=42") {
		t.Errorf("context field missing from console line: %q", got)
	}
}

func TestFileSinkWritesJSON(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tvshelf.log")
	var buf bytes.Buffer
	log, closer := New(Options{Out: &buf, NoColor: true, File: path, MaxSizeMB: 1, MaxBackups: 1})
	Success(log).Msg("Finished!")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var evt map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &evt); err != nil {
		t.Fatalf("log file is not JSON: %v\n%s", err, data)
	}
	if evt["message"] != "Finished!" || evt[KindField] != KindSuccess {
		t.Errorf("file event = %v", evt)
	}
}

func TestIconFallsBackToASCII(t *testing.T) {
	t.Parallel()
	theme := Theme{Icons: IconSet{}}
	if got := theme.Icon(KindError); got != "[x]" {
		t.Errorf("Icon(error) = %q", got)
	}
}
