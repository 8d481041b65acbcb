package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase/alert"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase/diagnose"
)

// Analyzer runs the per-window stages: classify, resolve, decide, dispatch.
type Analyzer struct {
	classifier ports.Classifier
	labels     domain.LabelTable
	policy     alert.Policy
	dispatcher *alert.Dispatcher
	log        *slog.Logger
}

// NewAnalyzer builds an Analyzer. A nil dispatcher evaluates alerts without sending them.
func NewAnalyzer(c ports.Classifier, labels domain.LabelTable, policy alert.Policy, dispatcher *alert.Dispatcher, log *slog.Logger) *Analyzer {
	if log == nil {
		log = discardLogger()
	}
	return &Analyzer{
		classifier: c,
		labels:     labels,
		policy:     policy,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Analyze produces the outcome for one completed window.
//
// Any Predict failure other than cancellation is recorded on the outcome and
// returns a nil error so the caller moves on to the next window. A probability
// vector that does not fit the label table, or cancellation, is returned
// alongside the partial outcome.
func (a *Analyzer) Analyze(ctx context.Context, cw CompletedWindow) (domain.WindowOutcome, error) {
	w := cw.Window
	out := domain.WindowOutcome{
		WindowID:    w.ID,
		Seq:         w.Seq,
		Samples:     w.Len(),
		CompletedAt: w.CompletedAt,
		LogPath:     cw.LogPath,
		Labels:      a.labels,
	}

	p, err := a.classifier.Predict(ctx, w)
	if err != nil {
		out.Error = err.Error()
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		a.log.Warn("analyze.classify.failed", "window_id", w.ID, "seq", w.Seq, "err", err)
		return out, nil
	}
	out.Probabilities = p

	d, err := diagnose.Resolve(p, a.labels)
	if err != nil {
		out.Error = err.Error()
		return out, fmt.Errorf("window %s: %w", w.ID, err)
	}
	out.Diagnosis = &d
	a.log.Info("analyze.diagnosis", "window_id", w.ID, "seq", w.Seq, "label", d.Label, "confidence", d.Confidence)

	decision := a.policy.EvaluateWindow(d, w.ID)
	out.Alert = &decision
	if decision.Alert && a.dispatcher != nil {
		report := a.dispatcher.Dispatch(ctx, decision)
		out.Dispatch = &report
	}

	return out, nil
}
