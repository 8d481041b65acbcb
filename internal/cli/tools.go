package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/effieaponniah/Arrythmia-Detect/internal/buildinfo"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/seriallink"
	"github.com/effieaponniah/Arrythmia-Detect/internal/infra/statusapi"
)

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List serial ports the sensor may be attached to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := seriallink.ListPorts()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no serial ports found"))
				return nil
			}
			for _, p := range ports {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func apiTokenCmd() *cobra.Command {
	var workspace string
	var subject string
	var ttl time.Duration

	c := &cobra.Command{
		Use:   "api-token",
		Short: "Issue a bearer token for the status API (requires api.jwt_secret)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			if ws.cfg.API.JWTSecret == "" {
				return fmt.Errorf("api.jwt_secret is not set (use ecgwatch.yaml or ECGWATCH_API_JWT_SECRET)")
			}

			tok, err := statusapi.IssueToken([]byte(ws.cfg.API.JWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVar(&subject, "subject", "dashboard", "Token subject")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
