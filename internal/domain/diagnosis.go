package domain

import "fmt"

// NormalClass is the class index that never raises an alert.
const NormalClass = 0

// ProbabilityVector is the classifier output for one window, one entry per class.
type ProbabilityVector []float64

// LabelTable names each class index of a ProbabilityVector.
type LabelTable []string

// DefaultLabels is the five-class arrhythmia table the bundled models are trained on.
func DefaultLabels() LabelTable {
	return LabelTable{
		"Normal",
		"Premature atrial contraction",
		"Premature ventricular contraction or Ventricular escape",
		"Ventricular fibrillation",
		"Bradyarrhythmias",
	}
}

// Diagnosis is the resolved class for one window.
type Diagnosis struct {
	ClassIndex int     `json:"class_index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Percent returns the confidence as a percentage, for display only.
func (d Diagnosis) Percent() float64 {
	return d.Confidence * 100
}

// IsNormal reports whether d is the normal class.
func (d Diagnosis) IsNormal() bool {
	return d.ClassIndex == NormalClass
}

func (d Diagnosis) String() string {
	return fmt.Sprintf("%s (%.2f%%)", d.Label, d.Percent())
}

// AlertDecision is derived from a Diagnosis. The zero value means no alert.
type AlertDecision struct {
	Alert     bool   `json:"alert"`
	Recipient string `json:"recipient,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Message   string `json:"message,omitempty"`
	VoiceURL  string `json:"voice_url,omitempty"`
}

// NoAlert is the decision for a normal diagnosis.
var NoAlert = AlertDecision{}

// Receipt identifies a notification accepted by the messaging provider.
type Receipt struct {
	ID     string
	Status string
}

// ActionOutcome records one notification sub-action.
type ActionOutcome struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	ID        string `json:"id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchReport records each alert sub-action independently.
type DispatchReport struct {
	Call    ActionOutcome `json:"call"`
	Message ActionOutcome `json:"message"`
}

// Failures counts attempted sub-actions that failed.
func (r DispatchReport) Failures() int {
	n := 0
	for _, o := range []ActionOutcome{r.Call, r.Message} {
		if o.Attempted && !o.OK {
			n++
		}
	}
	return n
}

// Attempted reports whether any sub-action was tried.
func (r DispatchReport) Attempted() bool {
	return r.Call.Attempted || r.Message.Attempted
}
