package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/classifierhttp"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/filelink"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/history"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/linearmodel"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/mqttsink"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/runstore"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/seriallink"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/statusapi"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/twilio"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/windowlog"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase/alert"
)

type pipelineOptions struct {
	device     domain.DeviceConfig
	deviceName string
	link       ports.DeviceLink

	maxWindows int // negative keeps the configured value
	format     string
	noSave     bool
	dispatch   bool
}

// runPipeline wires the configured adapters around usecase.Monitor and prints the run.
func runPipeline(ctx context.Context, ws *workspaceCtx, opts pipelineOptions, stdout io.Writer, log *slog.Logger) error {
	if opts.format != "" && opts.format != "pretty" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (expected pretty|json)", opts.format)
	}
	cfg := ws.cfg

	classifier, err := buildClassifier(ws)
	if err != nil {
		return err
	}

	dispatcher, err := buildDispatcher(cfg.Alert, opts.dispatch, log)
	if err != nil {
		return err
	}
	analyzer := usecase.NewAnalyzer(classifier, cfg.Labels, alert.NewPolicy(cfg.Alert), dispatcher, log)

	window := cfg.Window
	if opts.maxWindows >= 0 {
		window.MaxWindows = opts.maxWindows
	}

	acq, err := usecase.NewAcquisition(opts.link, opts.device, window,
		usecase.WithRecordStore(windowlog.NewStore(ws.root, cfg)),
		usecase.WithAcquisitionLogger(log),
	)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(ctx, ws, opts.deviceName, stdout, opts.format, log)
	if err != nil {
		return err
	}

	mopts := []usecase.MonitorOption{
		usecase.WithSinks(sinks...),
		usecase.WithQueueDepth(window.QueueDepth),
		usecase.WithMonitorLogger(log),
	}
	if !opts.noSave {
		mopts = append(mopts, usecase.WithArtifactStore(runstore.NewJSONStore(ws.root, cfg, runstore.WithIndex(true))))
	}

	run, runID, runErr := usecase.NewMonitor(acq, analyzer, opts.deviceName, mopts...).Execute(ctx)
	closeSinks()

	if err := printRun(stdout, run, runID, opts.format); err != nil {
		return err
	}

	// Ctrl-C is the normal way to end an unbounded monitor.
	if runErr != nil && errors.Is(runErr, context.Canceled) && run.StopReason == usecase.StopCancelled {
		return nil
	}
	if runErr != nil {
		return runErr
	}
	if n := countDispatchFailures(run); n > 0 {
		return fmt.Errorf("alert dispatch incomplete (%d failed action(s))", n)
	}
	return nil
}

func buildClassifier(ws *workspaceCtx) (ports.Classifier, error) {
	cfg := ws.cfg
	switch cfg.Classifier.Kind {
	case domain.ClassifierLinear:
		path := ws.resolvePath(cfg.Classifier.Model)
		m, err := linearmodel.Load(path)
		if err != nil {
			return nil, err
		}
		if m.Classes() != len(cfg.Labels) {
			return nil, &domain.OpError{
				Op:   "cli.classifier",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("model has %d classes but %d labels are configured: %w", m.Classes(), len(cfg.Labels), domain.ErrInvalidConfig),
			}
		}
		if m.Inputs() != cfg.Window.Size {
			return nil, &domain.OpError{
				Op:   "cli.classifier",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("model expects %d inputs but window.size is %d: %w", m.Inputs(), cfg.Window.Size, domain.ErrInvalidConfig),
			}
		}
		return m, nil
	default:
		return classifierhttp.New(cfg.Classifier)
	}
}

// buildDispatcher returns nil when alerts are disabled; decisions are still recorded.
func buildDispatcher(cfg domain.AlertConfig, enabled bool, log *slog.Logger) (*alert.Dispatcher, error) {
	if !enabled || !cfg.Enabled {
		return nil, nil
	}
	m, err := twilio.New(cfg.Twilio)
	if err != nil {
		return nil, err
	}
	return alert.NewDispatcher(m, log), nil
}

func linkFor(device domain.DeviceConfig) ports.DeviceLink {
	if device.Kind == domain.DeviceFile {
		return filelink.NewLink(0)
	}
	return seriallink.NewLink()
}

// buildSinks starts every configured result sink. The returned func stops them.
func buildSinks(ctx context.Context, ws *workspaceCtx, device string, stdout io.Writer, format string, log *slog.Logger) ([]ports.ResultSink, func(), error) {
	var (
		sinks   []ports.ResultSink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if format == "pretty" || format == "" {
		sinks = append(sinks, consoleSink{w: stdout})
	}

	cfg := ws.cfg
	if cfg.Publish.MQTT.Broker != "" {
		s, err := mqttsink.Dial(cfg.Publish.MQTT, device, log)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
		closers = append(closers, func() {
			if err := s.Close(); err != nil {
				log.Warn("mqtt.close.failed", "err", err)
			}
		})
	}

	var apiOpts []statusapi.Option
	if cfg.History.DSN != "" {
		h, err := history.Open(cfg.History.DSN)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, h)
		apiOpts = append(apiOpts, statusapi.WithHistory(func(ctx context.Context, device string, limit int) (any, error) {
			return h.Recent(ctx, device, limit)
		}))
		closers = append(closers, func() {
			if err := h.Close(); err != nil {
				log.Warn("history.close.failed", "err", err)
			}
		})
	}

	if cfg.API.Addr != "" {
		srv := statusapi.New(cfg.API, log, apiOpts...)
		apiCtx, stop := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := srv.Run(apiCtx); err != nil {
				log.Error("statusapi.failed", "err", err)
			}
		}()
		sinks = append(sinks, srv)
		closers = append(closers, func() {
			stop()
			<-done
		})
	}

	return sinks, closeAll, nil
}
