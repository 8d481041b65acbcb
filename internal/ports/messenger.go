package ports

import (
	"context"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// Messenger places outbound notifications. It never retries on its own behalf.
type Messenger interface {
	PlaceCall(ctx context.Context, to, from, payload string) (domain.Receipt, error)
	SendMessage(ctx context.Context, to, from, body string) (domain.Receipt, error)
}
