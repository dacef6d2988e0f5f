package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
	"github.com/moodlab/go-song-mood-classifier/internal/predict"
	"github.com/moodlab/go-song-mood-classifier/internal/stats"
)

// Handlers contains the HTTP handlers for the prediction API.
type Handlers struct {
	svc          *predict.Service
	statsWorkers int

	// The dataset and model never change after startup, so the full-scan
	// aggregates are computed once on first demand.
	statsOnce sync.Once
	statsAgg  stats.Aggregate
	statsErr  error

	clustersOnce sync.Once
	clusters     []stats.Cluster
	clustersErr  error
}

// NewHandlers creates a Handlers instance.
func NewHandlers(svc *predict.Service, statsWorkers int) *Handlers {
	return &Handlers{svc: svc, statsWorkers: statsWorkers}
}

type errorResponse struct {
	Error       string   `json:"error"`
	SampleSongs []string `json:"sampleSongs,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Health reports component load status (GET /api/health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"audio_model_loaded": h.svc.ModelLoaded(),
		"dataset_loaded":     h.svc.Store() != nil,
		"songs":              h.svc.Store().Len(),
	})
}

// predictRequest is the /api/predict body. AudioFeatures and Lyrics are
// optional overrides; without them the song must resolve in the dataset.
type predictRequest struct {
	Song          string             `json:"song"`
	Artist        string             `json:"artist"`
	AudioFeatures map[string]float64 `json:"audio_features"`
	Lyrics        *string            `json:"lyrics"`
}

type predictionJSON struct {
	Mood          mood.Label `json:"mood"`
	Confidence    float64    `json:"confidence"`
	LowConfidence bool       `json:"lowConfidence"`
}

type predictResponse struct {
	Song   string          `json:"song"`
	Artist string          `json:"artist"`
	Audio  predictionJSON  `json:"audio"`
	Lyrics *predictionJSON `json:"lyrics"` // null when no lyrics are available
	// Agree is null when the lyrics prediction is absent: "no baseline" and
	// "baseline disagrees" are different facts.
	Agree           *bool    `json:"agree"`
	ImputedFeatures []string `json:"imputedFeatures,omitempty"`
}

// Predict handles POST /api/predict.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.Song == "" {
		writeError(w, http.StatusBadRequest, "missing required field: 'song'")
		return
	}
	for name := range req.AudioFeatures {
		if !validFeature(name) {
			writeError(w, http.StatusBadRequest, "unknown audio feature: "+name)
			return
		}
	}

	res, err := h.svc.Predict(predict.Query{
		Song:     req.Song,
		Artist:   req.Artist,
		Features: req.AudioFeatures,
		Lyrics:   req.Lyrics,
	})
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:       "song '" + req.Song + "' not found in dataset; provide audio_features or try a known song",
			SampleSongs: h.svc.Store().SampleSongs(5),
		})
		return
	case errors.Is(err, predict.ErrModelUnavailable):
		writeError(w, http.StatusServiceUnavailable, "audio model not loaded")
		return
	case err != nil:
		log.Printf("predict %q: %v", req.Song, err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	resp := predictResponse{
		Song:   res.Song,
		Artist: res.Artist,
		Audio: predictionJSON{
			Mood:          res.Audio.Label,
			Confidence:    res.Audio.Confidence,
			LowConfidence: res.Audio.LowConfidence,
		},
		Agree:           res.Agree,
		ImputedFeatures: res.ImputedFeatures,
	}
	if res.Lyrics != nil {
		resp.Lyrics = &predictionJSON{
			Mood:          res.Lyrics.Label,
			Confidence:    res.Lyrics.Confidence,
			LowConfidence: res.Lyrics.LowConfidence,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func validFeature(name string) bool {
	for _, f := range dataset.FeatureNames {
		if f == name {
			return true
		}
	}
	return false
}

// Stats handles GET /api/stats: the aggregate comparison of the two
// classifiers over the whole dataset.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.aggregate()
	if err != nil {
		h.statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// Dataset handles GET /api/dataset: the ground-truth mood distribution.
func (h *Handlers) Dataset(w http.ResponseWriter, r *http.Request) {
	counts := h.svc.Store().MoodCounts()

	var total int
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		writeError(w, http.StatusNotFound, "dataset contains no recognized mood labels")
		return
	}

	type moodCount struct {
		Mood       mood.Label `json:"mood"`
		Count      int        `json:"count"`
		Percentage float64    `json:"percentage"`
	}
	distribution := make([]moodCount, 0, 4)
	for _, label := range mood.Labels() {
		distribution = append(distribution, moodCount{
			Mood:       label,
			Count:      counts[label],
			Percentage: float64(counts[label]) / float64(total) * 100,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":        total,
		"distribution": distribution,
	})
}

// Clusters handles GET /api/clusters: the feature-space mood map summary.
func (h *Handlers) Clusters(w http.ResponseWriter, r *http.Request) {
	h.clustersOnce.Do(func() {
		preds, err := h.scan()
		if err != nil {
			h.clustersErr = err
			return
		}
		h.clusters, h.clustersErr = stats.FeatureClusters(preds, 4)
	})
	if h.clustersErr != nil {
		h.statsError(w, h.clustersErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clusters": h.clusters})
}

func (h *Handlers) aggregate() (stats.Aggregate, error) {
	h.statsOnce.Do(func() {
		preds, err := h.scan()
		if err != nil {
			h.statsErr = err
			return
		}
		h.statsAgg = stats.Compute(preds)
	})
	return h.statsAgg, h.statsErr
}

// scan runs the full-dataset classification behind the memoized endpoints.
// It deliberately ignores the request context: the result outlives any one
// request and a caller hanging up must not poison the cache.
func (h *Handlers) scan() ([]predict.RecordPrediction, error) {
	return h.svc.ClassifyAll(context.Background(), h.statsWorkers)
}

func (h *Handlers) statsError(w http.ResponseWriter, err error) {
	if errors.Is(err, predict.ErrModelUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "audio model not loaded")
		return
	}
	log.Printf("computing stats: %v", err)
	writeError(w, http.StatusInternalServerError, "failed to compute statistics")
}
