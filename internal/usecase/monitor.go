package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// Monitor is the acquisition → classification → alert pipeline.
//
// Acquisition and analysis run in separate goroutines joined by a bounded
// channel; a full channel blocks acquisition until the analyzer catches up.
type Monitor struct {
	acq      *Acquisition
	analyzer *Analyzer
	device   string
	depth    int

	sinks []ports.ResultSink
	store ports.ArtifactStore
	log   *slog.Logger
	now   func() time.Time
}

type MonitorOption func(*Monitor)

// WithSinks adds result sinks; every window outcome is published to each of them.
func WithSinks(sinks ...ports.ResultSink) MonitorOption {
	return func(m *Monitor) {
		for _, s := range sinks {
			if s != nil {
				m.sinks = append(m.sinks, s)
			}
		}
	}
}

// WithArtifactStore saves the run artifact when the run ends.
func WithArtifactStore(s ports.ArtifactStore) MonitorOption {
	return func(m *Monitor) {
		m.store = s
	}
}

func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.log = l
		}
	}
}

// WithQueueDepth sets the capacity of the channel between acquisition and analysis.
func WithQueueDepth(n int) MonitorOption {
	return func(m *Monitor) {
		if n > 0 {
			m.depth = n
		}
	}
}

func NewMonitor(acq *Acquisition, analyzer *Analyzer, device string, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		acq:      acq,
		analyzer: analyzer,
		device:   device,
		depth:    1,
		log:      discardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs the pipeline until acquisition stops or a fatal error occurs.
// The run artifact is always returned, with the id it was saved under (empty if
// no store is configured). Cancellation returns ctx.Err().
func (m *Monitor) Execute(ctx context.Context) (domain.RunArtifact, string, error) {
	run := domain.RunArtifact{
		ID:        uuid.NewString(),
		Device:    m.device,
		StartedAt: m.now().UTC(),
		Labels:    m.analyzer.labels,
		Windows:   []domain.WindowOutcome{},
	}
	m.log.Info("monitor.started", "run_id", run.ID, "device", m.device)

	windows := make(chan CompletedWindow, m.depth)
	g, gctx := errgroup.WithContext(ctx)

	var acqRes AcquisitionResult
	g.Go(func() error {
		defer close(windows)
		res, err := m.acq.Run(gctx, func(ctx context.Context, cw CompletedWindow) error {
			select {
			case windows <- cw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		acqRes = res
		return err
	})

	var outcomes []domain.WindowOutcome
	g.Go(func() error {
		for cw := range windows {
			if err := gctx.Err(); err != nil {
				m.log.Info("monitor.window.dropped", "window_id", cw.Window.ID, "seq", cw.Window.Seq)
				continue
			}

			out, err := m.analyzer.Analyze(gctx, cw)
			out.RunID = run.ID
			out.Device = m.device
			outcomes = append(outcomes, out)
			m.publish(gctx, out)
			if err != nil {
				return err
			}
		}
		return nil
	})

	err := g.Wait()

	run.EndedAt = m.now().UTC()
	run.Stats = acqRes.Stats
	run.StopReason = acqRes.StopReason
	if outcomes != nil {
		run.Windows = outcomes
	}

	switch {
	case err == nil:
	case ctx.Err() != nil:
		err = ctx.Err()
		run.StopReason = StopCancelled
	default:
		run.StopReason = StopFailed
		run.Error = err.Error()
	}
	m.log.Info("monitor.stopped", "run_id", run.ID, "reason", run.StopReason, "windows", len(run.Windows))

	id := ""
	if m.store != nil {
		savedID, serr := m.store.SaveRun(run)
		if serr != nil {
			m.log.Error("monitor.save.failed", "run_id", run.ID, "err", serr)
			if err == nil {
				err = serr
			}
		} else {
			id = savedID
		}
	}

	return run, id, err
}

func (m *Monitor) publish(ctx context.Context, out domain.WindowOutcome) {
	for _, s := range m.sinks {
		if err := s.Publish(ctx, out); err != nil {
			m.log.Warn("monitor.publish.failed", "window_id", out.WindowID, "err", err)
		}
	}
}
