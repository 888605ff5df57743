package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileOpts(t *testing.T, name string) FileOptions {
	t.Helper()
	return FileOptions{Path: filepath.Join(t.TempDir(), name), MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}
}

func readJSONLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not valid JSON: %v\nline: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewManager_BootstrapWritesText(t *testing.T) {
	var buf bytes.Buffer
	mgr := NewManagerWithWriter(&buf)
	defer func() { _ = mgr.Close() }()

	mgr.Logger().Info("bootstrap message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "msg=\"bootstrap message\"") || !strings.Contains(out, "key=value") {
		t.Errorf("bootstrap output not in text format: %q", out)
	}
}

func TestManager_Logger_Stable(t *testing.T) {
	mgr := NewManagerWithWriter(&bytes.Buffer{})
	if mgr.Logger() != mgr.Logger() {
		t.Error("Manager.Logger() should return the same instance")
	}
}

func TestManager_Upgrade_WritesJSONAndText(t *testing.T) {
	var stderr bytes.Buffer
	mgr := NewManagerWithWriter(&stderr)
	defer func() { _ = mgr.Close() }()

	opts := fileOpts(t, "nested/dir/catalog-import.log")
	if err := mgr.Upgrade(opts, slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	mgr.Logger().Info("staged source", "entity", "catalog_product")

	entries := readJSONLines(t, opts.Path)
	if len(entries) != 1 || entries[0]["msg"] != "staged source" || entries[0]["entity"] != "catalog_product" {
		t.Errorf("unexpected log file entries: %v", entries)
	}
	if !strings.Contains(stderr.String(), "staged source") {
		t.Errorf("stderr missing message after upgrade: %q", stderr.String())
	}
}

func TestManager_Upgrade_DerivedLoggerFollowsSwap(t *testing.T) {
	mgr := NewManagerWithWriter(&bytes.Buffer{})
	defer func() { _ = mgr.Close() }()

	runLogger := mgr.Logger().With("run_id", "run-1").WithGroup("import")

	opts := fileOpts(t, "run.log")
	if err := mgr.Upgrade(opts, slog.LevelDebug); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	runLogger.Debug("batch fetched", "rows", 100)

	entries := readJSONLines(t, opts.Path)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["run_id"] != "run-1" {
		t.Errorf("derived logger lost attrs: %v", entries[0])
	}
	group, ok := entries[0]["import"].(map[string]any)
	if !ok || group["rows"] != float64(100) {
		t.Errorf("derived logger lost group: %v", entries[0])
	}
}

func TestManager_LevelFiltering(t *testing.T) {
	mgr := NewManagerWithWriter(&bytes.Buffer{})
	defer func() { _ = mgr.Close() }()

	opts := fileOpts(t, "level.log")
	if err := mgr.Upgrade(opts, slog.LevelWarn); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}

	mgr.Logger().Info("dropped")
	mgr.Logger().Warn("kept")

	entries := readJSONLines(t, opts.Path)
	if len(entries) != 1 || entries[0]["msg"] != "kept" {
		t.Errorf("level filtering failed: %v", entries)
	}

	mgr.SetLevel(slog.LevelInfo)
	mgr.Logger().Info("now kept")
	if entries := readJSONLines(t, opts.Path); len(entries) != 2 {
		t.Errorf("SetLevel did not apply, entries = %v", entries)
	}
}

func TestManager_Upgrade_PathIsDirectory(t *testing.T) {
	mgr := NewManagerWithWriter(&bytes.Buffer{})
	defer func() { _ = mgr.Close() }()

	err := mgr.Upgrade(FileOptions{Path: t.TempDir()}, slog.LevelInfo)
	if err == nil {
		t.Error("Upgrade() should error when path is a directory")
	}
}

func TestManager_Close(t *testing.T) {
	mgr := NewManagerWithWriter(&bytes.Buffer{})

	if err := mgr.Upgrade(fileOpts(t, "close.log"), slog.LevelInfo); err != nil {
		t.Fatalf("Upgrade() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"Warning", slog.LevelWarn, true},
		{" error ", slog.LevelError, true},
		{"", DefaultLevel, false},
		{"verbose", DefaultLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
