package cli

import (
	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/logger"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/windowlog"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase"
	"github.com/effieaponniah/Arrythmia-Detect/internal/usecase/alert"
)

func classifyCmd() *cobra.Command {
	var workspace string
	var window string
	var format string

	c := &cobra.Command{
		Use:   "classify",
		Short: "Classify a persisted window log offline (no alerts are sent)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			classifier, err := buildClassifier(ws)
			if err != nil {
				return err
			}

			log := logger.L()
			analyzer := usecase.NewAnalyzer(classifier, ws.cfg.Labels, alert.NewPolicy(ws.cfg.Alert), nil, log)
			uc := usecase.NewClassifyWindow(windowlog.NewStore(ws.root, ws.cfg), analyzer)

			out, err := uc.Execute(cmd.Context(), ws.resolvePath(window))
			if err != nil && out.WindowID == "" {
				return err
			}
			if perr := printOutcome(cmd.OutOrStdout(), out, format); perr != nil {
				return perr
			}
			return err
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&window, "window", "", "Window log (CSV, one value per record) (required)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("window")
	return c
}
