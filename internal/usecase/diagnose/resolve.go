// Package diagnose turns a classifier probability vector into a labeled diagnosis.
package diagnose

import (
	"fmt"
	"math"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// Resolve applies the argmax decision rule to p.
//
// Ties go to the lowest class index. NaN entries never win. No normalization is
// applied; the classifier's scale is trusted. A length mismatch between p and
// labels is a contract violation and must stop the run.
func Resolve(p domain.ProbabilityVector, labels domain.LabelTable) (domain.Diagnosis, error) {
	if len(p) == 0 {
		return domain.Diagnosis{}, contractErr("empty probability vector")
	}
	if len(p) != len(labels) {
		return domain.Diagnosis{}, contractErr(fmt.Sprintf("probability vector has %d classes, label table has %d", len(p), len(labels)))
	}

	best := -1
	for i, v := range p {
		if math.IsNaN(v) {
			continue
		}
		if best == -1 || v > p[best] {
			best = i
		}
	}
	if best == -1 {
		return domain.Diagnosis{}, contractErr("probability vector has no comparable entries")
	}

	return domain.Diagnosis{
		ClassIndex: best,
		Label:      labels[best],
		Confidence: p[best],
	}, nil
}

func contractErr(msg string) error {
	return &domain.OpError{
		Op:   "diagnose.resolve",
		Kind: domain.KindContract,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrContract),
	}
}
