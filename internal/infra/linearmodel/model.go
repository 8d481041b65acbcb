// Package linearmodel is an in-process classifier: a single dense layer with a
// softmax output, loaded from a YAML weights file. It lets ecgwatch run without
// a model server.
package linearmodel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// File is the on-disk layout of a model.
//
//	inputs: 188
//	weights:   # one row per class, `inputs` columns each
//	  - [ ... ]
//	bias: [ ... ]
type File struct {
	Name    string      `yaml:"name"`
	Inputs  int         `yaml:"inputs"`
	Weights [][]float64 `yaml:"weights"`
	Bias    []float64   `yaml:"bias"`
}

type Model struct {
	name    string
	inputs  int
	weights [][]float64
	bias    []float64
}

var _ ports.Classifier = (*Model)(nil)

// Load reads and validates a model file.
func Load(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.OpError{Op: "linearmodel.load", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
		}
		return nil, &domain.OpError{Op: "linearmodel.load", Kind: domain.KindExecution, Path: path, Err: err}
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, &domain.OpError{Op: "linearmodel.parse", Kind: domain.KindInvalidConfig, Path: path, Err: err}
	}

	m, err := New(f)
	if err != nil {
		var oe *domain.OpError
		if errors.As(err, &oe) {
			oe.Path = path
		}
		return nil, err
	}
	return m, nil
}

// New validates f and builds a model from it.
func New(f File) (*Model, error) {
	if len(f.Weights) == 0 {
		return nil, invalid("weights must have at least one class row")
	}
	inputs := f.Inputs
	if inputs <= 0 {
		inputs = len(f.Weights[0])
	}
	for i, row := range f.Weights {
		if len(row) != inputs {
			return nil, invalid(fmt.Sprintf("weights row %d has %d columns, expected %d", i, len(row), inputs))
		}
	}
	bias := f.Bias
	if len(bias) == 0 {
		bias = make([]float64, len(f.Weights))
	}
	if len(bias) != len(f.Weights) {
		return nil, invalid(fmt.Sprintf("bias has %d entries, expected %d", len(bias), len(f.Weights)))
	}

	return &Model{
		name:    f.Name,
		inputs:  inputs,
		weights: f.Weights,
		bias:    bias,
	}, nil
}

// Classes is the length of every vector Predict returns.
func (m *Model) Classes() int { return len(m.weights) }

// Inputs is the window size the model was trained for.
func (m *Model) Inputs() int { return m.inputs }

// Predict returns softmax(W·x + b). A window whose length differs from the
// model input size fails classification for that window only.
func (m *Model) Predict(ctx context.Context, w domain.Window) (domain.ProbabilityVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := w.Values()
	if len(x) != m.inputs {
		return nil, &domain.OpError{
			Op:   "linearmodel.predict",
			Kind: domain.KindClassification,
			Err:  fmt.Errorf("model %q expects %d samples, window has %d: %w", m.name, m.inputs, len(x), domain.ErrClassification),
		}
	}

	logits := make([]float64, len(m.weights))
	for k, row := range m.weights {
		z := m.bias[k]
		for i, wi := range row {
			z += wi * x[i]
		}
		logits[k] = z
	}
	return softmax(logits), nil
}

func softmax(z []float64) domain.ProbabilityVector {
	hi := math.Inf(-1)
	for _, v := range z {
		if v > hi {
			hi = v
		}
	}
	out := make(domain.ProbabilityVector, len(z))
	sum := 0.0
	for i, v := range z {
		e := math.Exp(v - hi)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func invalid(msg string) error {
	return &domain.OpError{
		Op:   "linearmodel.validate",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidConfig),
	}
}
