package spotifyenrich

import (
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
)

func TestFeatureMap(t *testing.T) {
	f := &spotify.AudioFeatures{
		Tempo:            120.5,
		Energy:           0.8,
		Valence:          0.5,
		Loudness:         -6.5,
		Danceability:     0.7,
		Speechiness:      0.05,
		Acousticness:     0.2,
		Instrumentalness: 0.01,
		Liveness:         0.15,
	}

	got := featureMap(f)

	// Every canonical feature must be present, so an enriched row never has
	// holes left over.
	for _, name := range dataset.FeatureNames {
		if _, ok := got[name]; !ok {
			t.Errorf("featureMap missing %q", name)
		}
	}
	if got["tempo"] != 120.5 {
		t.Errorf("tempo = %v, want 120.5", got["tempo"])
	}
	if got["loudness"] != -6.5 {
		t.Errorf("loudness = %v, want -6.5", got["loudness"])
	}
	if got["valence"] != 0.5 {
		t.Errorf("valence = %v, want 0.5", got["valence"])
	}
}
