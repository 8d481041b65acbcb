package runstore

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

func sampleRun(start time.Time) domain.RunArtifact {
	return domain.RunArtifact{
		ID:        "7b0c",
		Device:    "/dev/ttyUSB0",
		StartedAt: start,
		EndedAt:   start.Add(2 * time.Second),
		Labels:    domain.DefaultLabels(),
		Windows: []domain.WindowOutcome{
			{
				WindowID:      "w1",
				Seq:           1,
				Samples:       188,
				Probabilities: domain.ProbabilityVector{0.02, 0.01, 0.90, 0.03, 0.04},
				Diagnosis:     &domain.Diagnosis{ClassIndex: 2, Label: "PVC", Confidence: 0.9},
				Alert: &domain.AlertDecision{
					Alert:     true,
					Recipient: "+15550000001",
					Sender:    "+15550000002",
					Message:   "abnormal",
				},
			},
		},
		Stats:      domain.AcquisitionStats{Lines: 190, Decoded: 188, Discarded: 2, Windows: 1},
		StopReason: "max_windows",
	}
}

func TestSaveRun_CreatesJSONFile(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig()
	cfg.Masking.Enabled = false

	store := NewJSONStore(tmp, cfg)

	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	id, err := store.SaveRun(sampleRun(start))
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if id != "20260203T101112Z_ttyusb0" {
		t.Fatalf("unexpected id %q", id)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "runs", id+".json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var decoded domain.RunArtifact
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Device != "/dev/ttyUSB0" {
		t.Fatalf("expected device, got=%q", decoded.Device)
	}
	if len(decoded.Windows) != 1 || decoded.Windows[0].Diagnosis.ClassIndex != 2 {
		t.Fatalf("expected one window with class 2, got %+v", decoded.Windows)
	}
	if decoded.Windows[0].Alert.Recipient != "+15550000001" {
		t.Fatalf("expected recipient unmasked, got=%q", decoded.Windows[0].Alert.Recipient)
	}
	if decoded.Stats.Discarded != 2 {
		t.Fatalf("expected stats preserved, got %+v", decoded.Stats)
	}
}

func TestSaveRun_MasksContactNumbersWhenEnabled(t *testing.T) {
	tmp := t.TempDir()

	cfg := domain.DefaultConfig()
	cfg.Masking.Enabled = true

	store := NewJSONStore(tmp, cfg)
	run := sampleRun(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))

	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if run.Windows[0].Alert.Recipient != "+15550000001" {
		t.Fatalf("expected original run not mutated")
	}

	b, err := os.ReadFile(filepath.Join(tmp, "runs", id+".json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var decoded domain.RunArtifact
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	a := decoded.Windows[0].Alert
	if a.Recipient != maskValue || a.Sender != maskValue {
		t.Fatalf("expected contact numbers masked, got %q / %q", a.Recipient, a.Sender)
	}
	if a.Message != "abnormal" {
		t.Fatalf("expected message preserved, got %q", a.Message)
	}
}

func TestSaveRun_UsesUniqueFilenameOnCollision(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig())
	run := sampleRun(time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC))

	id1, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun #1 error: %v", err)
	}
	id2, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun #2 error: %v", err)
	}
	if id2 != id1+"_2" {
		t.Fatalf("expected second id %q, got %q", id1+"_2", id2)
	}
	for _, id := range []string{id1, id2} {
		if _, err := os.Stat(filepath.Join(tmp, "runs", id+".json")); err != nil {
			t.Fatalf("expected file for %s: %v", id, err)
		}
	}
}

func TestSaveRun_WritesIndex(t *testing.T) {
	tmp := t.TempDir()
	cfg := domain.DefaultConfig()
	cfg.Paths.RunsDir = "history"

	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	store := NewJSONStore(tmp, cfg, WithIndex(true), WithNow(func() time.Time { return now }))

	run := sampleRun(time.Time{})
	run.Device = ""
	id, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if id != "20260506T070809Z_run" {
		t.Fatalf("unexpected id %q", id)
	}

	f, err := os.Open(filepath.Join(tmp, "history", "index.jsonl"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatalf("expected one index line")
	}
	var entry map[string]any
	if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}
	if entry["id"] != id || entry["abnormal"] != float64(1) || entry["windows"] != float64(1) {
		t.Fatalf("unexpected index entry %v", entry)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"COM8":           "com8",
		"ttyUSB0":        "ttyusb0",
		"capture 01.txt": "capture-01-txt",
		"  --weird__  ":  "weird",
		"":               "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
