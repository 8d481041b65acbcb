package ports

import "github.com/effieaponniah/Arrythmia-Detect/internal/domain"

// RecordStore persists completed windows as append-only record logs.
type RecordStore interface {
	Open(w domain.Window) (RecordLog, error)
}

// RecordLog receives one normalized value per record. Records become visible on Close;
// Abort drops everything written so far.
type RecordLog interface {
	Append(value float64) error
	Flush() error
	Close() error
	Abort() error
	Path() string
}

// WindowSource reads a persisted record log back into a window.
type WindowSource interface {
	LoadWindow(path string) (domain.Window, error)
}
