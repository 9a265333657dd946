package logfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTodayFilename(t *testing.T) {
	ts := time.Date(2026, time.August, 3, 10, 0, 0, 0, time.UTC)
	if got := TodayFilename(ts); got != "server_2026-08-03.log" {
		t.Fatalf("TodayFilename = %q", got)
	}
}

func TestWriterAppendsToDailyFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	w, err := NewWriter(Options{Dir: dir})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	for _, line := range []string{"first line\n", "second line\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, TodayFilename(time.Now())))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "first line\nsecond line\n" {
		t.Fatalf("file content = %q", data)
	}
}

func TestWriterRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	w, err := NewWriter(Options{Dir: dir, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	// Force rotation by pre-filling the active file past the limit.
	active := filepath.Join(dir, TodayFilename(time.Now()))
	if err := os.WriteFile(active, make([]byte, 1<<20), 0o644); err != nil {
		t.Fatalf("prefill: %v", err)
	}

	if _, err := w.Write([]byte("after rotation\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	rotated := 0
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".log.") {
			rotated++
		}
	}
	if rotated != 1 {
		t.Fatalf("rotated files = %d, want 1", rotated)
	}

	data, err := os.ReadFile(active)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "after rotation\n" {
		t.Fatalf("active file content = %q", data)
	}
}
