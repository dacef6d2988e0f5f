// Package lyrics implements the rule-based lyrics sentiment baseline. It is
// a fixed lexicon-and-thresholds mapping, not a model trained on this
// dataset; anywhere its output is compared against the audio classifier that
// distinction applies.
package lyrics

import (
	"errors"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// ErrNegativeLimit is returned when a dataset classification cap is negative.
var ErrNegativeLimit = errors.New("max songs must not be negative")

// Scores holds the four VADER sentiment sub-scores for a text.
type Scores struct {
	Positive float64
	Negative float64
	Neutral  float64
	Compound float64 // polarity in [-1, 1]
}

// Classifier scores lyrics text and maps the compound score to a mood.
type Classifier struct {
	analyzer  *govader.SentimentIntensityAnalyzer
	threshold float64
}

// New builds a classifier with the given low-confidence threshold.
func New(threshold float64) *Classifier {
	return &Classifier{
		analyzer:  govader.NewSentimentIntensityAnalyzer(),
		threshold: threshold,
	}
}

// Classify scores a lyrics text. It returns ok=false for empty or
// whitespace-only text: a song without lyrics gets no baseline prediction
// rather than a guessed one.
func (c *Classifier) Classify(text string) (mood.Prediction, Scores, bool) {
	if strings.TrimSpace(text) == "" {
		return mood.Prediction{}, Scores{}, false
	}

	s := c.analyzer.PolarityScores(text)
	scores := Scores{
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Compound: s.Compound,
	}

	label := moodForCompound(scores.Compound)
	confidence := math.Min(1, math.Max(0, math.Abs(scores.Compound)))
	return mood.NewPrediction(label, confidence, c.threshold), scores, true
}

// moodForCompound maps a compound polarity score into a mood bucket:
//
//	compound >= 0.5          -> happy
//	compound <= -0.5         -> sad
//	0.05 <= compound < 0.5   -> hyped
//	-0.5 < compound < 0.05   -> chill
//
// The chill band straddles zero, so near-neutral lyrics land there with a
// confidence near zero. That is a known property of these bands, kept as is.
func moodForCompound(compound float64) mood.Label {
	switch {
	case compound >= 0.5:
		return mood.Happy
	case compound <= -0.5:
		return mood.Sad
	case compound >= 0.05:
		return mood.Hyped
	default:
		return mood.Chill
	}
}

// Result pairs a record with its lyrics prediction. Prediction is nil when
// the record has no lyrics text.
type Result struct {
	Record     *dataset.SongRecord
	Prediction *mood.Prediction
	Scores     Scores
}

// ClassifyDataset applies the classifier to each record. maxSongs caps how
// many records are processed (0 means all); a negative cap fails with
// ErrNegativeLimit. Records without lyrics are carried through with an
// absent prediction.
func (c *Classifier) ClassifyDataset(records []*dataset.SongRecord, maxSongs int) ([]Result, error) {
	if maxSongs < 0 {
		return nil, ErrNegativeLimit
	}
	if maxSongs == 0 || maxSongs > len(records) {
		maxSongs = len(records)
	}

	results := make([]Result, maxSongs)
	for i, rec := range records[:maxSongs] {
		results[i] = Result{Record: rec}
		if pred, scores, ok := c.Classify(rec.Lyrics); ok {
			results[i].Prediction = &pred
			results[i].Scores = scores
		}
	}
	return results, nil
}
