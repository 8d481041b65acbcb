package ports

import (
	"context"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// ResultSink receives the outcome of every completed window (presentation, publication, history).
type ResultSink interface {
	Publish(ctx context.Context, out domain.WindowOutcome) error
}
