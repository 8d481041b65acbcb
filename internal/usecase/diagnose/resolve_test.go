package diagnose

import (
	"math"
	"testing"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

func TestResolve_Argmax(t *testing.T) {
	p := domain.ProbabilityVector{0.02, 0.01, 0.90, 0.03, 0.04}

	d, err := Resolve(p, domain.DefaultLabels())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ClassIndex != 2 {
		t.Fatalf("expected class 2, got %d", d.ClassIndex)
	}
	if d.Confidence != 0.90 {
		t.Fatalf("expected confidence 0.90, got %v", d.Confidence)
	}
	if d.Label != "Premature ventricular contraction or Ventricular escape" {
		t.Fatalf("unexpected label %q", d.Label)
	}
}

func TestResolve_TieBreakFirstOccurrence(t *testing.T) {
	labels := domain.LabelTable{"a", "b", "c"}
	for i := 0; i < 10; i++ {
		d, err := Resolve(domain.ProbabilityVector{0.5, 0.5, 0.0}, labels)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.ClassIndex != 0 {
			t.Fatalf("expected tie to resolve to index 0, got %d", d.ClassIndex)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	p := domain.ProbabilityVector{0.1, 0.3, 0.3, 0.2, 0.1}
	labels := domain.DefaultLabels()

	first, err := Resolve(p, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Resolve(p, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if p[1] != 0.3 || len(p) != 5 {
		t.Fatalf("expected input untouched")
	}
}

func TestResolve_ToleratesNoise(t *testing.T) {
	p := domain.ProbabilityVector{math.NaN(), -1e-9, 0.7000000001, 0.3}

	d, err := Resolve(p, domain.LabelTable{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ClassIndex != 2 {
		t.Fatalf("expected class 2, got %d", d.ClassIndex)
	}
}

func TestResolve_ContractViolations(t *testing.T) {
	cases := []struct {
		name   string
		p      domain.ProbabilityVector
		labels domain.LabelTable
	}{
		{"length mismatch", domain.ProbabilityVector{0.2, 0.8}, domain.DefaultLabels()},
		{"empty", domain.ProbabilityVector{}, domain.LabelTable{}},
		{"all NaN", domain.ProbabilityVector{math.NaN()}, domain.LabelTable{"a"}},
	}
	for _, c := range cases {
		_, err := Resolve(c.p, c.labels)
		if !domain.IsKind(err, domain.KindContract) {
			t.Errorf("%s: expected contract error, got %v", c.name, err)
		}
		if !domain.IsFatal(err) {
			t.Errorf("%s: expected fatal error", c.name)
		}
	}
}
