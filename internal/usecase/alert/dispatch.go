package alert

import (
	"context"
	"io"
	"log/slog"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// Dispatcher carries out alert decisions: a voice call, then a text message.
// Each action is attempted once and reported on its own; one failing never
// prevents the other.
type Dispatcher struct {
	messenger ports.Messenger
	log       *slog.Logger
}

func NewDispatcher(m ports.Messenger, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{messenger: m, log: log}
}

// Dispatch performs the actions of d. NoAlert yields an empty report.
func (d *Dispatcher) Dispatch(ctx context.Context, decision domain.AlertDecision) domain.DispatchReport {
	var report domain.DispatchReport
	if !decision.Alert {
		return report
	}

	report.Call = d.attempt(ctx, "call", func(ctx context.Context) (domain.Receipt, error) {
		return d.messenger.PlaceCall(ctx, decision.Recipient, decision.Sender, decision.VoiceURL)
	})
	report.Message = d.attempt(ctx, "message", func(ctx context.Context) (domain.Receipt, error) {
		return d.messenger.SendMessage(ctx, decision.Recipient, decision.Sender, decision.Message)
	})

	return report
}

func (d *Dispatcher) attempt(ctx context.Context, action string, fn func(context.Context) (domain.Receipt, error)) domain.ActionOutcome {
	out := domain.ActionOutcome{Attempted: true}

	receipt, err := fn(ctx)
	if err != nil {
		out.Error = err.Error()
		d.log.Warn("alert.dispatch.failed", "action", action, "err", err)
		return out
	}

	out.OK = true
	out.ID = receipt.ID
	d.log.Info("alert.dispatch.sent", "action", action, "id", receipt.ID, "status", receipt.Status)
	return out
}
