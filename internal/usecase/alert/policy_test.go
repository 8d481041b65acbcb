package alert

import (
	"strings"
	"testing"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		Patient:  "Jane Roe",
		To:       "+15550000001",
		From:     "+15550000002",
		VoiceURL: "http://example.test/voice.xml",
		Template: domain.DefaultAlertMessage,
	}
}

func TestEvaluate_NormalNeverAlerts(t *testing.T) {
	d := domain.Diagnosis{ClassIndex: 0, Label: "Normal", Confidence: 0.99}

	require.Equal(t, domain.NoAlert, testPolicy().Evaluate(d))
}

func TestEvaluate_AbnormalAlerts(t *testing.T) {
	for class := 1; class < 5; class++ {
		d := domain.Diagnosis{ClassIndex: class, Label: domain.DefaultLabels()[class], Confidence: 0.8}

		got := testPolicy().Evaluate(d)

		require.True(t, got.Alert)
		require.Equal(t, "+15550000001", got.Recipient)
		require.Equal(t, "+15550000002", got.Sender)
		require.Equal(t, "http://example.test/voice.xml", got.VoiceURL)
		require.NotEmpty(t, got.Message)
		require.Contains(t, got.Message, "Jane Roe")
		require.Contains(t, got.Message, d.Label)
	}
}

func TestEvaluate_CustomTemplate(t *testing.T) {
	p := testPolicy()
	p.Template = "{{patient}}: {{label}} {{percent}}% in {{window}}"
	d := domain.Diagnosis{ClassIndex: 3, Label: "Ventricular fibrillation", Confidence: 0.9}

	got := p.EvaluateWindow(d, "w-1")

	require.Equal(t, "Jane Roe: Ventricular fibrillation 90.00% in w-1", got.Message)
}

func TestEvaluate_BrokenTemplateFallsBack(t *testing.T) {
	for _, tpl := range []string{"", "   ", "{{unknown}}", "{{label"} {
		p := testPolicy()
		p.Template = tpl
		p.Patient = ""
		d := domain.Diagnosis{ClassIndex: 4, Label: "Bradyarrhythmias", Confidence: 0.7}

		got := p.Evaluate(d)

		require.True(t, got.Alert)
		require.True(t, strings.HasPrefix(got.Message, "Alert: Patient unknown"), "template %q gave %q", tpl, got.Message)
		require.Contains(t, got.Message, "Bradyarrhythmias")
	}
}

func TestNewPolicy(t *testing.T) {
	cfg := domain.DefaultConfig().Alert
	cfg.Patient = "P"
	cfg.To = "to"
	cfg.From = "from"

	p := NewPolicy(cfg)

	require.Equal(t, "P", p.Patient)
	require.Equal(t, "to", p.To)
	require.Equal(t, "from", p.From)
	require.Equal(t, cfg.VoiceURL, p.VoiceURL)
	require.Equal(t, domain.DefaultAlertMessage, p.Template)
}
