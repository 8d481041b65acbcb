package domain

import "time"

// AcquisitionStats counts what the acquisition loop did with raw device lines.
type AcquisitionStats struct {
	Lines     int `json:"lines"`
	Skipped   int `json:"skipped"`
	Decoded   int `json:"decoded"`
	Discarded int `json:"discarded"`
	Timeouts  int `json:"timeouts"`
	Windows   int `json:"windows"`
}

// WindowOutcome is everything the pipeline produced for one completed window.
// It is what result sinks (console, MQTT, API, history) receive.
type WindowOutcome struct {
	RunID       string    `json:"run_id"`
	Device      string    `json:"device"`
	WindowID    string    `json:"window_id"`
	Seq         int       `json:"seq"`
	Samples     int       `json:"samples"`
	CompletedAt time.Time `json:"completed_at"`
	LogPath     string    `json:"log_path,omitempty"`

	Labels        LabelTable        `json:"labels,omitempty"`
	Probabilities ProbabilityVector `json:"probabilities,omitempty"`
	Diagnosis     *Diagnosis        `json:"diagnosis,omitempty"`
	Alert         *AlertDecision    `json:"alert,omitempty"`
	Dispatch      *DispatchReport   `json:"dispatch,omitempty"`

	// Error is set when classification failed for this window only.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the window could not be classified.
func (o WindowOutcome) Failed() bool {
	return o.Error != "" || o.Diagnosis == nil
}

// RunArtifact represents a persisted monitoring run.
type RunArtifact struct {
	ID     string `json:"id"`
	Device string `json:"device"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Labels  LabelTable       `json:"labels"`
	Windows []WindowOutcome  `json:"windows"`
	Stats   AcquisitionStats `json:"stats"`

	StopReason string `json:"stop_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Abnormal counts windows whose diagnosis was not the normal class.
func (r RunArtifact) Abnormal() int {
	n := 0
	for _, w := range r.Windows {
		if w.Diagnosis != nil && !w.Diagnosis.IsNormal() {
			n++
		}
	}
	return n
}
