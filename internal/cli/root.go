package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/logger"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/workspacefinder"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var closeLog func() error

	cmd := &cobra.Command{
		Use:           "ecgwatch",
		Short:         "ecgwatch: ECG arrhythmia monitor with caregiver alerts",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			logRoot := wd
			if f := c.Flags().Lookup("workspace"); f != nil && f.Value.String() != "" {
				logRoot, _ = filepath.Abs(f.Value.String())
			} else if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil && root != "" {
				logRoot = root
			}

			closeLog, _ = logger.Setup(logger.Config{
				Root:    logRoot,
				Debug:   debug,
				Console: streamsLogs(c),
			})
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .ecgwatch/logs/ecgwatch.log")

	cmd.AddCommand(
		initCmd(),
		monitorCmd(),
		replayCmd(),
		classifyCmd(),
		validateCmd(),
		portsCmd(),
		apiTokenCmd(),
		versionCmd(),
	)
	return cmd
}

// streamsLogs reports whether c runs the live pipeline, which also logs to stderr.
func streamsLogs(c *cobra.Command) bool {
	switch c.Name() {
	case "monitor", "replay":
		return true
	}
	return false
}
