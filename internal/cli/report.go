package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

func printRun(w io.Writer, run domain.RunArtifact, runID string, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return enc.Encode(payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printOutcome(w io.Writer, out domain.WindowOutcome, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "pretty", "":
		printPrettyOutcome(w, out)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

// printPrettyRun prints the run summary. Per-window detail is streamed by consoleSink.
func printPrettyRun(w io.Writer, run domain.RunArtifact, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintln(w, titleStyle.Render("Run summary"))
	fmt.Fprintf(w, "Device:     %s\n", run.Device)
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Ended:      %s\n", run.EndedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:   %s\n", total.Round(time.Millisecond))
	if run.StopReason != "" {
		fmt.Fprintf(w, "Stopped:    %s\n", run.StopReason)
	}
	if runID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", runID)
	}

	s := run.Stats
	fmt.Fprintf(w, "Frames:     %d decoded / %d discarded / %d skipped (%d timeouts)\n", s.Decoded, s.Discarded, s.Skipped, s.Timeouts)
	fmt.Fprintf(w, "Windows:    %d classified / %d abnormal / %d failed\n",
		len(run.Windows)-countFailedWindows(run), run.Abnormal(), countFailedWindows(run))

	if n := countDispatchFailures(run); n > 0 {
		fmt.Fprintf(w, "Alerts:     %s\n", failStyle.Render(fmt.Sprintf("%d failed action(s)", n)))
	}
	if run.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", failStyle.Render(run.Error))
	}
}

func printPrettyOutcome(w io.Writer, out domain.WindowOutcome) {
	header := fmt.Sprintf("Window #%d", out.Seq)
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(header),
		dimStyle.Render(fmt.Sprintf("%s  %d samples  %s", shortID(out.WindowID), out.Samples, out.CompletedAt.Format(time.TimeOnly))))

	if out.Failed() {
		msg := out.Error
		if msg == "" {
			msg = "no diagnosis"
		}
		fmt.Fprintf(w, "  %s classification failed: %s\n\n", failStyle.Render("✗"), msg)
		return
	}

	d := out.Diagnosis
	verdict := okStyle.Render("NORMAL")
	if !d.IsNormal() {
		verdict = failStyle.Render("ABNORMAL")
	}
	fmt.Fprintf(w, "  Diagnosis: %s  %s\n", d.String(), verdict)

	width := 0
	for _, l := range out.Labels {
		if len(l) > width {
			width = len(l)
		}
	}
	for i, l := range out.Labels {
		if i >= len(out.Probabilities) {
			break
		}
		mark := " "
		if i == d.ClassIndex {
			mark = "›"
		}
		fmt.Fprintf(w, "    %s %-*s %6.2f%%\n", mark, width, l, out.Probabilities[i]*100)
	}

	if out.Alert != nil && out.Alert.Alert {
		if out.Dispatch == nil || !out.Dispatch.Attempted() {
			fmt.Fprintf(w, "  Alert: %s\n", dimStyle.Render("not dispatched"))
		} else {
			fmt.Fprintf(w, "  Alert: call %s / message %s\n",
				actionMark(out.Dispatch.Call), actionMark(out.Dispatch.Message))
		}
	}
	if out.LogPath != "" {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render("log: "+out.LogPath))
	}
	fmt.Fprintln(w)
}

func actionMark(o domain.ActionOutcome) string {
	switch {
	case !o.Attempted:
		return dimStyle.Render("-")
	case o.OK:
		return okStyle.Render("✓ " + o.ID)
	default:
		return failStyle.Render("✗ " + o.Error)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func countFailedWindows(run domain.RunArtifact) int {
	n := 0
	for _, o := range run.Windows {
		if o.Failed() {
			n++
		}
	}
	return n
}

func countDispatchFailures(run domain.RunArtifact) int {
	n := 0
	for _, o := range run.Windows {
		if o.Dispatch != nil {
			n += o.Dispatch.Failures()
		}
	}
	return n
}

// consoleSink streams each window to the terminal as it is classified.
type consoleSink struct {
	w io.Writer
}

var _ ports.ResultSink = consoleSink{}

func (s consoleSink) Publish(_ context.Context, out domain.WindowOutcome) error {
	printPrettyOutcome(s.w, out)
	return nil
}
