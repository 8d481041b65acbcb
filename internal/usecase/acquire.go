package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase/frame"
)

// AcquisitionState is the position of the acquisition loop in its state machine.
type AcquisitionState int32

const (
	StateIdle AcquisitionState = iota
	StateConnecting
	StateReading
	StateDecoding
	StateBuffering
	StateDispatching
	StateStopped
)

func (s AcquisitionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateReading:
		return "reading"
	case StateDecoding:
		return "decoding"
	case StateBuffering:
		return "buffering"
	case StateDispatching:
		return "dispatching"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stop reasons recorded on run artifacts.
const (
	StopMaxWindows = "max_windows"
	StopEndOfInput = "end_of_input"
	StopCancelled  = "cancelled"
	StopFailed     = "failed"
)

// CompletedWindow is a frozen window plus where its records were persisted.
// LogPath is empty when persistence was disabled or failed.
type CompletedWindow struct {
	Window  domain.Window
	LogPath string
}

// EmitFunc hands a completed window downstream. It may block to apply backpressure
// and must return ctx.Err() if ctx is cancelled while blocked.
type EmitFunc func(ctx context.Context, cw CompletedWindow) error

// AcquisitionResult summarizes one acquisition run.
type AcquisitionResult struct {
	Stats      domain.AcquisitionStats
	StopReason string
}

// Acquisition reads raw lines from a device, decodes them into samples and
// groups them into fixed-size windows.
type Acquisition struct {
	link    ports.DeviceLink
	records ports.RecordStore
	device  domain.DeviceConfig
	window  domain.WindowConfig
	decoder frame.Decoder
	log     *slog.Logger

	state atomic.Int32
}

type AcquisitionOption func(*Acquisition)

// WithRecordStore persists every completed window before it is emitted.
func WithRecordStore(rs ports.RecordStore) AcquisitionOption {
	return func(a *Acquisition) {
		a.records = rs
	}
}

func WithAcquisitionLogger(l *slog.Logger) AcquisitionOption {
	return func(a *Acquisition) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAcquisition(link ports.DeviceLink, device domain.DeviceConfig, window domain.WindowConfig, opts ...AcquisitionOption) (*Acquisition, error) {
	if link == nil {
		return nil, &domain.OpError{Op: "acquire.new", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("device link is required: %w", domain.ErrInvalidConfig)}
	}
	if window.Size <= 0 {
		return nil, &domain.OpError{Op: "acquire.new", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("window size must be positive, got %d: %w", window.Size, domain.ErrInvalidConfig)}
	}
	if window.MaxWindows < 0 {
		return nil, &domain.OpError{Op: "acquire.new", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("max windows must not be negative: %w", domain.ErrInvalidConfig)}
	}

	dec := frame.Decoder{}
	if device.StrictMarkers {
		d, err := frame.NewStrictDecoder(frame.DefaultLead, frame.DefaultTrail)
		if err != nil {
			return nil, err
		}
		dec = d
	}

	a := &Acquisition{
		link:    link,
		device:  device,
		window:  window,
		decoder: dec,
		log:     discardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// State reports the current state. Safe to call from any goroutine.
func (a *Acquisition) State() AcquisitionState {
	return AcquisitionState(a.state.Load())
}

func (a *Acquisition) setState(s AcquisitionState) {
	a.state.Store(int32(s))
}

// Run opens the device and loops until MaxWindows windows were emitted, the
// input ends, ctx is cancelled, or a fatal connection error occurs.
//
// On cancellation the partially filled window is dropped and ctx.Err() is returned.
// The connection is closed exactly once before Run returns.
func (a *Acquisition) Run(ctx context.Context, emit EmitFunc) (AcquisitionResult, error) {
	var res AcquisitionResult
	defer a.setState(StateStopped)

	if err := ctx.Err(); err != nil {
		res.StopReason = StopCancelled
		return res, err
	}

	a.setState(StateConnecting)
	conn, err := a.link.Open(ctx, a.device)
	if err != nil {
		res.StopReason = StopFailed
		if ctx.Err() != nil {
			res.StopReason = StopCancelled
			return res, ctx.Err()
		}
		return res, connectionErr("acquire.connect", a.devicePath(), err)
	}

	var closeOnce sync.Once
	closeConn := func() {
		closeOnce.Do(func() {
			if cerr := conn.Close(); cerr != nil {
				a.log.Warn("acquire.close.failed", "device", a.devicePath(), "err", cerr)
			}
		})
	}
	defer closeConn()

	a.log.Info("acquire.connected", "device", a.devicePath(), "window_size", a.window.Size)

	buf, err := domain.NewWindowBuffer(a.window.Size)
	if err != nil {
		res.StopReason = StopFailed
		return res, err
	}

	for {
		if err := ctx.Err(); err != nil {
			a.abandon(buf)
			res.StopReason = StopCancelled
			return res, err
		}

		a.setState(StateReading)
		line, err := conn.ReadLine(ctx)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrReadTimeout):
				res.Stats.Timeouts++
				continue
			case ctx.Err() != nil:
				a.abandon(buf)
				res.StopReason = StopCancelled
				return res, ctx.Err()
			case errors.Is(err, io.EOF):
				a.abandon(buf)
				res.StopReason = StopEndOfInput
				a.log.Info("acquire.input.ended", "device", a.devicePath(), "windows", res.Stats.Windows)
				return res, nil
			default:
				a.abandon(buf)
				res.StopReason = StopFailed
				return res, connectionErr("acquire.read", a.devicePath(), err)
			}
		}

		res.Stats.Lines++
		if res.Stats.Skipped < a.device.SkipLines {
			res.Stats.Skipped++
			a.log.Debug("acquire.line.skipped", "raw", line)
			continue
		}

		a.setState(StateDecoding)
		sample, err := a.decoder.Decode(line)
		if err != nil {
			res.Stats.Discarded++
			a.log.Warn("acquire.frame.discarded", "raw", line, "err", err)
			continue
		}
		res.Stats.Decoded++

		a.setState(StateBuffering)
		if buf.Append(sample) != domain.Complete {
			continue
		}

		w, _ := buf.Freeze()
		res.Stats.Windows++
		logPath := a.persist(w)
		a.log.Info("acquire.window.completed", "window_id", w.ID, "seq", w.Seq, "samples", w.Len(), "log_path", logPath)

		a.setState(StateDispatching)
		if err := emit(ctx, CompletedWindow{Window: w, LogPath: logPath}); err != nil {
			res.StopReason = StopCancelled
			if ctx.Err() == nil {
				res.StopReason = StopFailed
			}
			return res, err
		}

		if a.window.MaxWindows > 0 && res.Stats.Windows >= a.window.MaxWindows {
			res.StopReason = StopMaxWindows
			return res, nil
		}
	}
}

// persist writes w through the record store. Failures are logged and never block
// classification; a failed log is aborted so no partial window becomes visible.
func (a *Acquisition) persist(w domain.Window) string {
	if a.records == nil {
		return ""
	}

	rl, err := a.records.Open(w)
	if err != nil {
		a.log.Error("acquire.persist.failed", "window_id", w.ID, "err", err)
		return ""
	}

	for _, v := range w.Values() {
		if err := rl.Append(v); err != nil {
			a.log.Error("acquire.persist.failed", "window_id", w.ID, "err", err)
			_ = rl.Abort()
			return ""
		}
	}
	if err := rl.Close(); err != nil {
		a.log.Error("acquire.persist.failed", "window_id", w.ID, "err", err)
		return ""
	}
	return rl.Path()
}

func (a *Acquisition) abandon(buf *domain.WindowBuffer) {
	if n := buf.Len(); n > 0 {
		a.log.Info("acquire.window.abandoned", "samples", n)
	}
	buf.Reset()
}

func (a *Acquisition) devicePath() string {
	if a.device.Kind == domain.DeviceFile {
		return a.device.File
	}
	return a.device.Port
}

func connectionErr(op, path string, err error) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindConnection,
		Path: path,
		Err:  fmt.Errorf("%w: %v", domain.ErrConnection, err),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
