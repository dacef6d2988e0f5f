// Package audio wraps the pre-trained audio mood model. The model is trained
// externally; this package only loads the serialized artifact and runs
// inference, applying the same imputation and standardization that were
// fitted at training time.
package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// Load errors.
var (
	ErrModelNotFound = errors.New("model artifact not found")
	ErrCorruptModel  = errors.New("corrupt model artifact")
)

// artifact mirrors the on-disk JSON bundle: the fitted forest together with
// the preprocessing statistics it was trained with.
type artifact struct {
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Labels   []string `json:"labels"`
	Imputer  struct {
		Strategy string    `json:"strategy"`
		Fill     []float64 `json:"fill"`
	} `json:"imputer"`
	Scaler struct {
		Mean []float64 `json:"mean"`
		Std  []float64 `json:"std"`
	} `json:"scaler"`
	Forest struct {
		Trees []Tree `json:"trees"`
	} `json:"forest"`
}

// Model is the loaded audio classifier. Immutable after Load; safe for
// concurrent use.
type Model struct {
	version  string
	features []string
	labels   []mood.Label
	fill     []float64
	mean     []float64
	std      []float64
	trees    []Tree
}

// Result is one prediction with its full class distribution.
type Result struct {
	Prediction    mood.Prediction
	Probabilities map[mood.Label]float64
}

// Load reads and validates a model artifact. A missing file fails with
// ErrModelNotFound; any structural problem fails with a wrapped
// ErrCorruptModel naming the defect.
func Load(path string) (*Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
	}
	return build(&a)
}

func build(a *artifact) (*Model, error) {
	n := len(a.Features)
	if n == 0 {
		return nil, fmt.Errorf("%w: no features", ErrCorruptModel)
	}
	if len(a.Labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrCorruptModel)
	}
	if len(a.Imputer.Fill) != n {
		return nil, fmt.Errorf("%w: imputer fill length %d, want %d", ErrCorruptModel, len(a.Imputer.Fill), n)
	}
	if len(a.Scaler.Mean) != n || len(a.Scaler.Std) != n {
		return nil, fmt.Errorf("%w: scaler statistics length mismatch", ErrCorruptModel)
	}
	if len(a.Forest.Trees) == 0 {
		return nil, fmt.Errorf("%w: empty forest", ErrCorruptModel)
	}

	labels := make([]mood.Label, len(a.Labels))
	for i, s := range a.Labels {
		label, err := mood.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptModel, err)
		}
		labels[i] = label
	}

	for ti, tree := range a.Forest.Trees {
		if err := tree.validate(n, len(labels)); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrCorruptModel, ti, err)
		}
	}

	return &Model{
		version:  a.Version,
		features: a.Features,
		labels:   labels,
		fill:     a.Imputer.Fill,
		mean:     a.Scaler.Mean,
		std:      a.Scaler.Std,
		trees:    a.Forest.Trees,
	}, nil
}

// Features returns the feature names in the order the model expects.
func (m *Model) Features() []string { return m.features }

// Version returns the artifact's version string.
func (m *Model) Version() string { return m.version }

// NumTrees returns the forest size.
func (m *Model) NumTrees() int { return len(m.trees) }

// Predict classifies a feature vector given in the model's feature order.
// Preprocessing matches training exactly: NaN values take the fitted imputer
// fill, then every value is standardized with the fitted mean and std. The
// returned confidence is the maximum class probability and the distribution
// sums to 1 within floating tolerance.
func (m *Model) Predict(vec []float64, threshold float64) (Result, error) {
	if len(vec) != len(m.features) {
		return Result{}, fmt.Errorf("feature vector length %d, want %d", len(vec), len(m.features))
	}

	x := make([]float64, len(vec))
	for i, v := range vec {
		if math.IsNaN(v) {
			v = m.fill[i]
		}
		std := m.std[i]
		if std == 0 {
			std = 1
		}
		x[i] = (v - m.mean[i]) / std
	}

	// Random-forest inference: average the per-tree class distributions.
	probs := make([]float64, len(m.labels))
	for _, tree := range m.trees {
		leaf := tree.classify(x)
		for i, p := range leaf {
			probs[i] += p
		}
	}
	for i := range probs {
		probs[i] /= float64(len(m.trees))
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	dist := make(map[mood.Label]float64, len(m.labels))
	for i, label := range m.labels {
		dist[label] = probs[i]
	}

	return Result{
		Prediction:    mood.NewPrediction(m.labels[best], probs[best], threshold),
		Probabilities: dist,
	}, nil
}
