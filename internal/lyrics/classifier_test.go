package lyrics

import (
	"errors"
	"math"
	"testing"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

func TestMoodForCompound(t *testing.T) {
	tests := []struct {
		name     string
		compound float64
		want     mood.Label
	}{
		{name: "strongly positive", compound: 0.7, want: mood.Happy},
		{name: "happy lower bound inclusive", compound: 0.5, want: mood.Happy},
		{name: "just below happy band", compound: 0.49, want: mood.Hyped},
		{name: "mid hyped band", compound: 0.2, want: mood.Hyped},
		{name: "hyped lower bound inclusive", compound: 0.05, want: mood.Hyped},
		{name: "just below hyped band", compound: 0.049, want: mood.Chill},
		{name: "neutral", compound: 0.0, want: mood.Chill},
		{name: "mildly negative", compound: -0.3, want: mood.Chill},
		{name: "just above sad band", compound: -0.49, want: mood.Chill},
		{name: "sad upper bound inclusive", compound: -0.5, want: mood.Sad},
		{name: "strongly negative", compound: -0.6, want: mood.Sad},
		{name: "extreme positive", compound: 1.0, want: mood.Happy},
		{name: "extreme negative", compound: -1.0, want: mood.Sad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moodForCompound(tt.compound); got != tt.want {
				t.Errorf("moodForCompound(%v) = %s, want %s", tt.compound, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := New(mood.DefaultLyricsThreshold)

	t.Run("positive lyrics classify happy", func(t *testing.T) {
		pred, scores, ok := c.Classify("I'm walking on sunshine and don't it feel good, so happy and free")
		if !ok {
			t.Fatal("Classify() ok = false")
		}
		if scores.Compound < 0.5 {
			t.Fatalf("compound = %v, want strongly positive", scores.Compound)
		}
		if pred.Label != mood.Happy {
			t.Errorf("label = %s, want happy", pred.Label)
		}
	})

	t.Run("negative lyrics classify sad", func(t *testing.T) {
		pred, scores, ok := c.Classify("I am so sad and lonely, crying alone, everything is terrible and hopeless")
		if !ok {
			t.Fatal("Classify() ok = false")
		}
		if scores.Compound > -0.5 {
			t.Fatalf("compound = %v, want strongly negative", scores.Compound)
		}
		if pred.Label != mood.Sad {
			t.Errorf("label = %s, want sad", pred.Label)
		}
	})

	t.Run("confidence is absolute compound clamped", func(t *testing.T) {
		pred, scores, ok := c.Classify("a truly wonderful amazing fantastic great day")
		if !ok {
			t.Fatal("Classify() ok = false")
		}
		want := math.Min(1, math.Abs(scores.Compound))
		if pred.Confidence != want {
			t.Errorf("confidence = %v, want |compound| = %v", pred.Confidence, want)
		}
	})

	t.Run("neutral text is low-confidence chill", func(t *testing.T) {
		pred, _, ok := c.Classify("the table is in the room")
		if !ok {
			t.Fatal("Classify() ok = false")
		}
		if pred.Label != mood.Chill {
			t.Errorf("label = %s, want chill", pred.Label)
		}
		if !pred.LowConfidence {
			t.Error("LowConfidence = false for near-zero compound at threshold 0.6")
		}
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		first, _, _ := c.Classify("good vibes only tonight")
		second, _, _ := c.Classify("good vibes only tonight")
		if first != second {
			t.Errorf("repeated Classify() differs: %+v vs %+v", first, second)
		}
	})
}

func TestClassifyEmptyText(t *testing.T) {
	c := New(mood.DefaultLyricsThreshold)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, _, ok := c.Classify(text); ok {
			t.Errorf("Classify(%q) ok = true, want absent prediction", text)
		}
	}
}

func TestClassifyDataset(t *testing.T) {
	c := New(mood.DefaultLyricsThreshold)

	records := []*dataset.SongRecord{
		{Song: "A", Lyrics: "love this wonderful happy amazing life"},
		{Song: "B", Lyrics: ""},
		{Song: "C", Lyrics: "so sad and lonely, crying every terrible night"},
	}

	t.Run("all records", func(t *testing.T) {
		results, err := c.ClassifyDataset(records, 0)
		if err != nil {
			t.Fatalf("ClassifyDataset() error = %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		if results[0].Prediction == nil {
			t.Error("record with lyrics has absent prediction")
		}
		if results[1].Prediction != nil {
			t.Error("record without lyrics got a guessed prediction")
		}
		if results[2].Prediction == nil || results[2].Prediction.Label != mood.Sad {
			t.Errorf("record C prediction = %+v, want sad", results[2].Prediction)
		}
	})

	t.Run("cap limits processing", func(t *testing.T) {
		results, err := c.ClassifyDataset(records, 2)
		if err != nil {
			t.Fatalf("ClassifyDataset() error = %v", err)
		}
		if len(results) != 2 {
			t.Errorf("got %d results, want 2", len(results))
		}
	})

	t.Run("cap larger than dataset", func(t *testing.T) {
		results, err := c.ClassifyDataset(records, 100)
		if err != nil {
			t.Fatalf("ClassifyDataset() error = %v", err)
		}
		if len(results) != 3 {
			t.Errorf("got %d results, want 3", len(results))
		}
	})

	t.Run("negative cap rejected", func(t *testing.T) {
		_, err := c.ClassifyDataset(records, -1)
		if !errors.Is(err, ErrNegativeLimit) {
			t.Errorf("ClassifyDataset() error = %v, want ErrNegativeLimit", err)
		}
	})
}
