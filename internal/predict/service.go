// Package predict coordinates the feature store and the two classifiers
// into per-song and whole-dataset predictions.
package predict

import (
	"errors"
	"fmt"
	"math"

	"github.com/moodlab/go-song-mood-classifier/internal/audio"
	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/lyrics"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// ErrModelUnavailable is returned when the audio model failed to load at
// startup and a prediction is requested anyway.
var ErrModelUnavailable = errors.New("audio model not loaded")

// Config holds the orchestrator's tunables.
type Config struct {
	AudioThreshold  float64
	LyricsThreshold float64
}

// DefaultConfig returns the documented thresholds.
func DefaultConfig() Config {
	return Config{
		AudioThreshold:  mood.DefaultAudioThreshold,
		LyricsThreshold: mood.DefaultLyricsThreshold,
	}
}

// Service runs the dual-classifier pipeline. It is constructed once at
// startup with its collaborators and shared read-only by request handlers.
// model may be nil, in which case audio predictions fail with
// ErrModelUnavailable while lyrics-only batch operation stays possible.
type Service struct {
	store  *dataset.Store
	model  *audio.Model
	lyrics *lyrics.Classifier
	cfg    Config
}

// NewService constructs the orchestrator.
func NewService(store *dataset.Store, model *audio.Model, lc *lyrics.Classifier, cfg Config) *Service {
	return &Service{store: store, model: model, lyrics: lc, cfg: cfg}
}

// ModelLoaded reports whether an audio model is available.
func (s *Service) ModelLoaded() bool { return s.model != nil }

// Store exposes the underlying feature store.
func (s *Service) Store() *dataset.Store { return s.store }

// Query is one prediction request. Features and Lyrics, when set, override
// the dataset row (the song then doesn't need to resolve at all).
type Query struct {
	Song     string
	Artist   string
	Features map[string]float64 // optional caller-supplied feature values
	Lyrics   *string            // optional caller-supplied lyrics text
}

// Result is the assembled response for one query.
type Result struct {
	Song   string
	Artist string

	Audio      mood.Prediction
	AudioProbs map[mood.Label]float64
	Lyrics     *mood.Prediction

	// Agree is nil when the lyrics prediction is absent. It must never be
	// coerced to false on the way to the API boundary.
	Agree *bool

	// ImputedFeatures names features that were zero-filled before audio
	// classification.
	ImputedFeatures []string
}

// PredictSong resolves a song in the dataset and runs both classifiers.
func (s *Service) PredictSong(song, artist string) (Result, error) {
	return s.Predict(Query{Song: song, Artist: artist})
}

// Predict runs the pipeline for one query. Fails with dataset.ErrNotFound
// when the song cannot be resolved and no feature override was supplied,
// and with ErrModelUnavailable when there is no audio model.
func (s *Service) Predict(q Query) (Result, error) {
	if s.model == nil {
		return Result{}, ErrModelUnavailable
	}

	var rec *dataset.SongRecord
	if q.Features == nil || q.Lyrics == nil {
		var err error
		rec, err = s.store.Lookup(q.Song, q.Artist)
		if err != nil && q.Features == nil {
			return Result{}, fmt.Errorf("resolving %q: %w", q.Song, err)
		}
	}

	vec, imputed := s.featureVector(rec, q.Features)
	audioRes, err := s.model.Predict(vec, s.cfg.AudioThreshold)
	if err != nil {
		return Result{}, fmt.Errorf("audio prediction: %w", err)
	}

	text := ""
	switch {
	case q.Lyrics != nil:
		text = *q.Lyrics
	case rec != nil:
		text = rec.Lyrics
	}

	pair := mood.Pair{Audio: audioRes.Prediction}
	if pred, _, ok := s.lyrics.Classify(text); ok {
		pair.Lyrics = &pred
	}

	song, artist := q.Song, q.Artist
	if rec != nil {
		song = rec.Song
		if artist == "" {
			artist = rec.Artist
		}
	}
	if artist == "" {
		artist = "Unknown Artist"
	}

	return Result{
		Song:            song,
		Artist:          artist,
		Audio:           pair.Audio,
		AudioProbs:      audioRes.Probabilities,
		Lyrics:          pair.Lyrics,
		Agree:           pair.Agree(),
		ImputedFeatures: imputed,
	}, nil
}

// featureVector assembles the model-order vector from the record and any
// caller overrides. Overrides win per feature; anything still missing is
// zero-filled and reported.
func (s *Service) featureVector(rec *dataset.SongRecord, overrides map[string]float64) ([]float64, []string) {
	order := s.model.Features()

	if rec != nil && overrides == nil {
		return rec.Vector(order)
	}

	vec := make([]float64, len(order))
	var imputed []string
	for i, name := range order {
		if v, ok := overrides[name]; ok {
			vec[i] = v
			continue
		}
		if rec != nil {
			if v := rec.Feature(name); !math.IsNaN(v) {
				vec[i] = v
				continue
			}
		}
		vec[i] = 0
		imputed = append(imputed, name)
	}
	return vec, imputed
}
