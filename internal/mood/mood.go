// Package mood defines the closed set of mood labels and the prediction
// types shared by the audio and lyrics classifiers.
package mood

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLabel is returned when a string does not name one of the four moods.
var ErrUnknownLabel = errors.New("unknown mood label")

// Label is one of the four classification targets.
type Label string

// The four mood targets. There is no ordering among them.
const (
	Happy Label = "happy"
	Chill Label = "chill"
	Sad   Label = "sad"
	Hyped Label = "hyped"
)

// Labels returns the moods in canonical presentation order.
func Labels() []Label {
	return []Label{Happy, Chill, Sad, Hyped}
}

// Parse validates a mood string. Input is lowercased and trimmed before
// matching; anything outside the four targets fails with ErrUnknownLabel.
func Parse(s string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case Happy:
		return Happy, nil
	case Chill:
		return Chill, nil
	case Sad:
		return Sad, nil
	case Hyped:
		return Hyped, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// String returns the label's wire form.
func (l Label) String() string { return string(l) }

// Default classifier thresholds below which a prediction is flagged low
// confidence.
const (
	DefaultAudioThreshold  = 0.35
	DefaultLyricsThreshold = 0.6
)

// Prediction is a single classifier's output for one song. LowConfidence is
// derived from the confidence and the classifier's threshold at construction
// and never set independently.
type Prediction struct {
	Label         Label
	Confidence    float64
	LowConfidence bool
}

// NewPrediction builds a Prediction, deriving the low-confidence flag.
func NewPrediction(label Label, confidence, threshold float64) Prediction {
	return Prediction{
		Label:         label,
		Confidence:    confidence,
		LowConfidence: confidence < threshold,
	}
}

// Pair holds both classifier outputs for one song. Lyrics is nil when the
// record has no lyrics text; in that case agreement is undefined.
type Pair struct {
	Audio  Prediction
	Lyrics *Prediction
}

// Agree reports whether the two mood labels match. It returns nil when the
// lyrics prediction is absent: "no baseline available" is a different fact
// from "baseline disagrees" and must stay distinguishable.
func (p Pair) Agree() *bool {
	if p.Lyrics == nil {
		return nil
	}
	agree := p.Audio.Label == p.Lyrics.Label
	return &agree
}
