package stats

import (
	"fmt"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/moodlab/go-song-mood-classifier/internal/mood"
	"github.com/moodlab/go-song-mood-classifier/internal/predict"
)

// clusterFeatures are the audio features spanning the mood map. Tempo and
// loudness are excluded: they are unbounded and would dominate the distance
// metric without per-feature scaling.
var clusterFeatures = []string{"energy", "valence", "danceability", "acousticness"}

// Cluster is one region of the feature-space mood map.
type Cluster struct {
	Name         string             `json:"name"`
	Centroid     map[string]float64 `json:"centroid"`
	Size         int                `json:"size"`
	DominantMood mood.Label         `json:"dominantMood"`
	MoodCounts   map[mood.Label]int `json:"moodCounts"`
}

// predObservation wraps one predicted record for the k-means interface.
type predObservation struct {
	pred   *predict.RecordPrediction
	coords clusters.Coordinates
}

func (o predObservation) Coordinates() clusters.Coordinates { return o.coords }

func (o predObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// FeatureClusters partitions the predicted dataset into k regions of
// (energy, valence, danceability, acousticness) space and summarizes each:
// centroid, size, and which audio-predicted mood dominates it. Rows missing
// any of the four features are left out rather than imputed, since a
// zero-filled point would distort the centroids.
func FeatureClusters(preds []predict.RecordPrediction, k int) ([]Cluster, error) {
	if k < 1 {
		k = 4
	}

	var obs clusters.Observations
	for i := range preds {
		coords, ok := clusterCoords(&preds[i])
		if !ok {
			continue
		}
		obs = append(obs, predObservation{pred: &preds[i], coords: coords})
	}
	if len(obs) < k {
		return nil, fmt.Errorf("only %d usable rows for %d clusters", len(obs), k)
	}

	km := kmeans.New()
	partition, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("partitioning feature space: %w", err)
	}

	var out []Cluster
	for _, c := range partition {
		centroid := make(map[string]float64, len(clusterFeatures))
		for i, name := range clusterFeatures {
			centroid[name] = c.Center[i]
		}

		moodCounts := make(map[mood.Label]int, 4)
		for _, o := range c.Observations {
			if po, ok := o.(predObservation); ok {
				moodCounts[po.pred.Audio.Label]++
			}
		}

		out = append(out, Cluster{
			Name:         clusterName(centroid),
			Centroid:     centroid,
			Size:         len(c.Observations),
			DominantMood: dominantMood(moodCounts),
			MoodCounts:   moodCounts,
		})
	}
	return out, nil
}

func clusterCoords(p *predict.RecordPrediction) (clusters.Coordinates, bool) {
	coords := make(clusters.Coordinates, len(clusterFeatures))
	for i, name := range clusterFeatures {
		v := p.Record.Feature(name)
		if v != v { // NaN
			return nil, false
		}
		coords[i] = v
	}
	return coords, true
}

// clusterName labels a centroid by its energy/valence quadrant, the same
// quadrants the four mood targets occupy. High acousticness adds a modifier.
func clusterName(centroid map[string]float64) string {
	highEnergy := centroid["energy"] > 0.6
	highValence := centroid["valence"] > 0.5

	var base string
	switch {
	case highEnergy && highValence:
		base = "Bright & Energetic"
	case highEnergy && !highValence:
		base = "Dark & Driving"
	case !highEnergy && highValence:
		base = "Warm & Relaxed"
	default:
		base = "Quiet & Melancholy"
	}

	if centroid["acousticness"] > 0.6 {
		return base + " (Acoustic)"
	}
	return base
}

func dominantMood(counts map[mood.Label]int) mood.Label {
	var best mood.Label
	bestCount := -1
	for _, label := range mood.Labels() {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}
	return best
}
