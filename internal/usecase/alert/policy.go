// Package alert decides whether a diagnosis warrants notifying a caregiver
// and carries the notification out through a ports.Messenger.
package alert

import (
	"fmt"
	"strings"

	"github.com/effieaponniah/Arrythmia-Detect/internal/app/template"
	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
)

const unknownPatient = "unknown"

// Policy maps a diagnosis to an alert decision. It is pure and holds no state between calls.
type Policy struct {
	Patient  string
	To       string
	From     string
	VoiceURL string
	Template string
}

// NewPolicy builds a Policy from the alert section of the configuration.
func NewPolicy(cfg domain.AlertConfig) Policy {
	return Policy{
		Patient:  cfg.Patient,
		To:       cfg.To,
		From:     cfg.From,
		VoiceURL: cfg.VoiceURL,
		Template: cfg.Message,
	}
}

// Evaluate returns NoAlert for the normal class and an alert for any other class.
func (p Policy) Evaluate(d domain.Diagnosis) domain.AlertDecision {
	return p.EvaluateWindow(d, "")
}

// EvaluateWindow is Evaluate with the window id available to the {{window}} placeholder.
func (p Policy) EvaluateWindow(d domain.Diagnosis, windowID string) domain.AlertDecision {
	if d.IsNormal() {
		return domain.NoAlert
	}

	return domain.AlertDecision{
		Alert:     true,
		Recipient: p.To,
		Sender:    p.From,
		Message:   p.render(d, windowID),
		VoiceURL:  p.VoiceURL,
	}
}

func (p Policy) render(d domain.Diagnosis, windowID string) string {
	patient := strings.TrimSpace(p.Patient)
	if patient == "" {
		patient = unknownPatient
	}
	vars := map[string]string{
		"patient": patient,
		"label":   d.Label,
		"percent": fmt.Sprintf("%.2f", d.Percent()),
		"window":  windowID,
	}

	if strings.TrimSpace(p.Template) != "" {
		if msg, err := template.RenderString(p.Template, vars); err == nil && strings.TrimSpace(msg) != "" {
			return msg
		}
	}

	msg, err := template.RenderString(domain.DefaultAlertMessage, vars)
	if err != nil {
		// DefaultAlertMessage only uses known placeholders.
		return domain.DefaultAlertMessage
	}
	return msg
}
