package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/twilio"
)

func validateCmd() *cobra.Command {
	var workspace string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate ecgwatch.yaml and the configured classifier (no device, no alerts)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			if _, err := buildClassifier(ws); err != nil {
				return err
			}
			if ws.cfg.Alert.Enabled {
				if _, err := twilio.New(ws.cfg.Alert.Twilio); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "workspace:  %s\n", ws.root)
			fmt.Fprintf(w, "device:     %s\n", describeDevice(ws.cfg.Device))
			fmt.Fprintf(w, "classifier: %s (%d labels, window %d)\n", ws.cfg.Classifier.Kind, len(ws.cfg.Labels), ws.cfg.Window.Size)
			fmt.Fprintf(w, "alerts:     %s\n", onOff(ws.cfg.Alert.Enabled))
			fmt.Fprintln(w, okStyle.Render("OK"))
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return c
}

func describeDevice(d domain.DeviceConfig) string {
	if d.Kind == domain.DeviceFile {
		return fmt.Sprintf("file %s", d.File)
	}
	return fmt.Sprintf("serial %s @ %d baud", d.Port, d.Baud)
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
