package ports

import (
	"context"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

// DeviceLink opens a line-oriented connection to the sensor.
type DeviceLink interface {
	Open(ctx context.Context, cfg domain.DeviceConfig) (Connection, error)
}

// Connection is exclusively owned by one reader.
//
// ReadLine blocks for at most one read timeout and returns domain.ErrReadTimeout
// when no complete line arrived in that interval. It returns io.EOF when the
// source is exhausted (replayed captures).
type Connection interface {
	ReadLine(ctx context.Context) (string, error)
	Close() error
}
