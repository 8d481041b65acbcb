package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/filelink"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/logger"
)

func monitorCmd() *cobra.Command {
	var workspace string
	var port string
	var baud int
	var windows int
	var format string
	var noSave bool
	var noAlert bool

	c := &cobra.Command{
		Use:   "monitor",
		Short: "Read the sensor, classify each window and alert the caregiver on abnormal rhythms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			device := ws.cfg.Device
			if strings.TrimSpace(port) != "" {
				device.Kind = domain.DeviceSerial
				device.Port = strings.TrimSpace(port)
			}
			if baud > 0 {
				device.Baud = baud
			}
			if device.Kind == domain.DeviceFile {
				device.File = ws.resolvePath(device.File)
			}

			name := device.Port
			if device.Kind == domain.DeviceFile {
				name = device.File
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPipeline(ctx, ws, pipelineOptions{
				device:     device,
				deviceName: name,
				link:       linkFor(device),
				maxWindows: windows,
				format:     format,
				noSave:     noSave,
				dispatch:   !noAlert,
			}, cmd.OutOrStdout(), logger.L())
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&port, "port", "p", "", "Serial port (overrides device.port)")
	c.Flags().IntVar(&baud, "baud", 0, "Baud rate (overrides device.baud)")
	c.Flags().IntVarP(&windows, "windows", "n", -1, "Stop after N windows; 0 runs until interrupted (default: window.max_windows)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save the run artifact under runs/")
	c.Flags().BoolVar(&noAlert, "no-alert", false, "Evaluate alerts but do not call or text anyone")
	return c
}

func replayCmd() *cobra.Command {
	var workspace string
	var file string
	var interval time.Duration
	var windows int
	var format string
	var noSave bool
	var sendAlerts bool

	c := &cobra.Command{
		Use:   "replay",
		Short: "Run the pipeline over a recorded capture instead of the serial port",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			device := ws.cfg.Device
			device.Kind = domain.DeviceFile
			device.File = ws.resolvePath(file)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runPipeline(ctx, ws, pipelineOptions{
				device:     device,
				deviceName: device.File,
				link:       filelink.NewLink(interval),
				maxWindows: windows,
				format:     format,
				noSave:     noSave,
				dispatch:   sendAlerts,
			}, cmd.OutOrStdout(), logger.L())
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&file, "file", "f", "", "Capture file, one device line per text line (required)")
	c.Flags().DurationVar(&interval, "interval", 0, "Delay between replayed lines (e.g. 8ms); 0 replays as fast as possible")
	c.Flags().IntVarP(&windows, "windows", "n", 0, "Stop after N windows; 0 replays the whole capture")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save the run artifact under runs/")
	c.Flags().BoolVar(&sendAlerts, "alert", false, "Dispatch alerts for abnormal windows (off by default for replays)")

	_ = c.MarkFlagRequired("file")
	return c
}
