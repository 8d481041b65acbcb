package windowlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

func completedWindow(t *testing.T, values ...float64) domain.Window {
	t.Helper()
	buf, err := domain.NewWindowBuffer(len(values))
	if err != nil {
		t.Fatalf("NewWindowBuffer: %v", err)
	}
	for _, v := range values {
		buf.Append(domain.Sample(v))
	}
	w, ok := buf.Freeze()
	if !ok {
		t.Fatalf("expected complete window")
	}
	return w
}

func TestStore_WritesOneValuePerLine(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, domain.DefaultConfig())
	w := completedWindow(t, 0.5, 1, 0)

	rl, err := store.Open(w)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, v := range w.Values() {
		if err := rl.Append(v); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if _, err := os.Stat(rl.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected log to be invisible before Close, stat err=%v", err)
	}

	if err := rl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if filepath.Dir(rl.Path()) != filepath.Join(root, "windows") {
		t.Fatalf("unexpected log dir %s", rl.Path())
	}

	b, err := os.ReadFile(rl.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(b); got != "0.5\n1\n0\n" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestStore_AbortLeavesNothing(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, domain.DefaultConfig())
	w := completedWindow(t, 0.25)

	rl, err := store.Open(w)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = rl.Append(0.25)
	if err := rl.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("Close after Abort: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(root, "windows"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
}

func TestStore_RoundTrip(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, domain.DefaultConfig())
	w := completedWindow(t, 0.1, 1.0/1024, 0.999)

	rl, err := store.Open(w)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, v := range w.Values() {
		_ = rl.Append(v)
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := store.LoadWindow(rl.Path())
	if err != nil {
		t.Fatalf("LoadWindow: %v", err)
	}
	want := w.Values()
	vals := got.Values()
	if len(vals) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(vals))
	}
	for i := range want {
		if vals[i] != want[i] {
			t.Fatalf("value %d: expected %v, got %v", i, want[i], vals[i])
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	bad := filepath.Join(dir, "bad.csv")
	_ = os.WriteFile(bad, []byte("0.1\nabc\n"), 0o600)
	_, err = Load(bad)
	if !domain.IsKind(err, domain.KindInvalidConfig) || !strings.Contains(err.Error(), "record 2") {
		t.Fatalf("expected invalid_config naming record 2, got %v", err)
	}

	empty := filepath.Join(dir, "empty.csv")
	_ = os.WriteFile(empty, []byte("\n\n"), 0o600)
	if _, err := Load(empty); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config for empty log, got %v", err)
	}
}

func TestLoad_AcceptsExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.csv")
	_ = os.WriteFile(path, []byte("0.5,ignored\n 0.25\n"), 0o600)

	w, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := w.Values(); len(got) != 2 || got[0] != 0.5 || got[1] != 0.25 {
		t.Fatalf("unexpected values %v", got)
	}
}

func TestFileName(t *testing.T) {
	w := domain.NewWindow(7, []float64{1})
	w.CompletedAt = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	w.ID = "0123456789abcdef"

	if got := FileName(w); got != "20260304T050607Z_0007_01234567.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}
