package domain

import (
	"time"

	"github.com/google/uuid"
)

// NormalizationDivisor scales raw ADC readings into a bounded sample value.
const NormalizationDivisor = 1024

// Sample is one normalized reading from the sensor.
type Sample float64

// WindowState reports whether a WindowBuffer can accept more samples.
type WindowState int

const (
	Filling WindowState = iota
	Complete
)

func (s WindowState) String() string {
	switch s {
	case Filling:
		return "filling"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Window is a completed, read-only sequence of samples in arrival order.
type Window struct {
	ID          string
	Seq         int
	CompletedAt time.Time

	samples []Sample
}

// NewWindow builds a frozen window from already decoded values (e.g. a persisted window log).
func NewWindow(seq int, values []float64) Window {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Sample(v)
	}
	return Window{
		ID:          uuid.NewString(),
		Seq:         seq,
		CompletedAt: time.Now().UTC(),
		samples:     samples,
	}
}

// Len returns the number of samples in the window.
func (w Window) Len() int { return len(w.samples) }

// Values returns a copy of the samples as float64, ready for a classifier.
func (w Window) Values() []float64 {
	out := make([]float64, len(w.samples))
	for i, s := range w.samples {
		out[i] = float64(s)
	}
	return out
}

// WindowBuffer accumulates samples until it holds exactly Capacity of them.
// Once Complete, Freeze must be called before the next Append.
type WindowBuffer struct {
	capacity int
	samples  []Sample
	seq      int
	now      func() time.Time
}

// NewWindowBuffer returns an empty buffer. Capacity must be positive.
func NewWindowBuffer(capacity int) (*WindowBuffer, error) {
	if capacity <= 0 {
		return nil, &OpError{
			Op:   "window.new",
			Kind: KindInvalidConfig,
			Err:  ErrInvalidConfig,
		}
	}
	return &WindowBuffer{
		capacity: capacity,
		samples:  make([]Sample, 0, capacity),
		now:      time.Now,
	}, nil
}

func (b *WindowBuffer) Capacity() int { return b.capacity }
func (b *WindowBuffer) Len() int      { return len(b.samples) }

// State reports Complete once the buffer holds Capacity samples.
func (b *WindowBuffer) State() WindowState {
	if len(b.samples) >= b.capacity {
		return Complete
	}
	return Filling
}

// Append adds s in arrival order. Appending to a Complete buffer is a caller bug and panics.
func (b *WindowBuffer) Append(s Sample) WindowState {
	if b.State() == Complete {
		panic("domain: append to complete window; call Freeze first")
	}
	b.samples = append(b.samples, s)
	return b.State()
}

// Freeze hands out the completed window and resets the buffer for the next one.
// It returns false, leaving the buffer untouched, if the buffer is still filling.
func (b *WindowBuffer) Freeze() (Window, bool) {
	if b.State() != Complete {
		return Window{}, false
	}
	b.seq++
	w := Window{
		ID:          uuid.NewString(),
		Seq:         b.seq,
		CompletedAt: b.now().UTC(),
		samples:     b.samples,
	}
	b.samples = make([]Sample, 0, b.capacity)
	return w, true
}

// Reset drops any partially filled samples. Completed sequence numbers are kept.
func (b *WindowBuffer) Reset() {
	b.samples = b.samples[:0]
}
