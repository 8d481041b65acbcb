package ports

import (
	"context"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// Classifier maps a completed window to a probability vector over diagnosis classes.
type Classifier interface {
	Predict(ctx context.Context, w domain.Window) (domain.ProbabilityVector, error)
}
