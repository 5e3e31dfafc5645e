package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mkv")
	dst := filepath.Join(dir, "b.mkv")
	if err := os.WriteFile(src, []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still exists: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "video" {
		t.Errorf("destination = %q, %v", data, err)
	}
}

func TestMoveFileMissingSource(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := MoveFile(filepath.Join(dir, "missing"), filepath.Join(dir, "x")); err == nil {
		t.Error("MoveFile() should fail for a missing source")
	}
}

func TestCopyFileRefusesExistingDestination(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	os.WriteFile(src, []byte("new"), 0644)
	os.WriteFile(dst, []byte("old"), 0644)

	if err := copyFile(src, dst); err == nil {
		t.Fatal("copyFile() should refuse an existing destination")
	}
	if data, _ := os.ReadFile(dst); string(data) != "old" {
		t.Errorf("destination was modified: %q", data)
	}
}

func TestCopyFilePreservesContent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	os.WriteFile(src, []byte("payload"), 0600)

	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if data, _ := os.ReadFile(dst); string(data) != "payload" {
		t.Errorf("content = %q", data)
	}
}
