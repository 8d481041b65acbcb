package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSONFile(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	L().Info("acquire.window.completed", "window_id", "w1", "seq", 1)

	wantPath := filepath.Join(root, ".ecgwatch", "logs", "ecgwatch.log")
	if Path() != wantPath {
		t.Fatalf("expected path %s, got %s", wantPath, Path())
	}
	if InitTime().IsZero() {
		t.Fatalf("expected init time")
	}
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	b, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", lines[len(lines)-1], err)
	}
	if rec["msg"] != "acquire.window.completed" || rec["window_id"] != "w1" {
		t.Fatalf("unexpected record %v", rec)
	}
	if ts, _ := rec["time"].(string); !strings.HasSuffix(ts, "Z") {
		t.Fatalf("expected UTC timestamp, got %v", rec["time"])
	}

	if Path() != "" {
		t.Fatalf("expected path reset after cleanup")
	}
}

func TestSetup_ConsoleMirrorsRecords(t *testing.T) {
	var console bytes.Buffer

	cleanup, err := Setup(Config{Root: t.TempDir(), Console: true, Stderr: &console})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer func() { _ = cleanup() }()

	L().With("run_id", "r1").Warn("acquire.frame.discarded", "raw", "xx")
	L().Debug("hidden")

	out := console.String()
	if !strings.Contains(out, "acquire.frame.discarded") || !strings.Contains(out, "run_id=r1") {
		t.Fatalf("expected console record, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record should be filtered at info level")
	}
}
