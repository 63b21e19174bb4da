package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hello from test")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "verdant.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing entry, got: %s", data)
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(dir, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("debug line")
	_ = logger.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "verdant.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Errorf("debug entry missing in verbose mode, got: %s", data)
	}
}
