package history

import (
	"testing"
	"time"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

func TestToRecord_Classified(t *testing.T) {
	completed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	out := domain.WindowOutcome{
		RunID:         "run",
		Device:        "COM8",
		WindowID:      "w1",
		Seq:           2,
		Samples:       188,
		CompletedAt:   completed,
		Probabilities: domain.ProbabilityVector{0.1, 0.9},
		Diagnosis:     &domain.Diagnosis{ClassIndex: 1, Label: "PAC", Confidence: 0.9},
		Alert:         &domain.AlertDecision{Alert: true},
		Dispatch:      &domain.DispatchReport{Call: domain.ActionOutcome{Attempted: true, OK: true}},
	}

	rec := ToRecord(out)

	if rec.ClassIndex == nil || *rec.ClassIndex != 1 || rec.Confidence == nil || *rec.Confidence != 0.9 {
		t.Fatalf("unexpected class/confidence %+v", rec)
	}
	if rec.Label != "PAC" || !rec.Alerted || rec.Dispatch == nil {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.CompletedAt.Location() != time.UTC || !rec.CompletedAt.Equal(completed) {
		t.Fatalf("expected UTC timestamp, got %v", rec.CompletedAt)
	}
	if rec.ID.String() == "" || rec.WindowID != "w1" || rec.Samples != 188 {
		t.Fatalf("unexpected identifiers %+v", rec)
	}

	out.Probabilities[0] = 0.5
	if rec.Probabilities[0] != 0.1 {
		t.Fatalf("expected probabilities copied")
	}
}

func TestToRecord_FailedWindow(t *testing.T) {
	rec := ToRecord(domain.WindowOutcome{WindowID: "w2", Error: "model server unavailable"})

	if rec.ClassIndex != nil || rec.Confidence != nil || rec.Alerted {
		t.Fatalf("expected empty diagnosis columns, got %+v", rec)
	}
	if rec.Error != "model server unavailable" {
		t.Fatalf("expected error kept, got %q", rec.Error)
	}
}

func TestOpen_RequiresDSN(t *testing.T) {
	if _, err := Open("  "); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}

func TestTableName(t *testing.T) {
	if (DiagnosisRecord{}).TableName() != "ecg_diagnoses" {
		t.Fatalf("unexpected table name")
	}
}
