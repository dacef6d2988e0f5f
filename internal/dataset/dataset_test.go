package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

const sampleCSV = `track_name,artists,tempo,energy,valence,loudness,danceability,speechiness,acousticness,instrumentalness,liveness,text,mood
Happy,Pharrell Williams,120,0.8,0.9,-5.0,0.7,0.05,0.1,0.0,0.1,I'm feeling good,happy
Happy,Nevada Tan,98,0.6,0.4,-7.1,0.5,0.08,0.2,0.0,0.2,,sad
Yesterday,The Beatles,97,0.3,0.3,-11.4,0.3,0.03,0.8,0.0,0.1,All my troubles seemed so far away,sad
No Features,Unknown,,,,,,,,,,some words here,chill
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "songs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Len() != 4 {
		t.Errorf("Len() = %d, want 4", store.Len())
	}
	if got := store.LyricsColumn(); got != "text" {
		t.Errorf("LyricsColumn() = %q, want %q", got, "text")
	}
}

func TestLoadMissingColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{
			name:   "no lyrics alias",
			header: "track_name,artists,tempo,energy,valence,loudness,danceability,speechiness,acousticness,instrumentalness,liveness,mood",
		},
		{
			name:   "missing feature columns",
			header: "track_name,artists,tempo,energy,text,mood",
		},
		{
			name:   "no song column",
			header: "artists,tempo,energy,valence,loudness,danceability,speechiness,acousticness,instrumentalness,liveness,text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTemp(t, tt.header+"\n"))
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("Load() error = %v, want ErrMissingColumn", err)
			}
		})
	}
}

func TestLoadHeaderVariants(t *testing.T) {
	// Raw export headers: Positiveness for valence, "Loudness (db)" strings
	// with a dB suffix, "Artist(s)", "song".
	csv := "song,Artist(s),Tempo,Energy,Positiveness,Loudness (db),Danceability,Speechiness,Acousticness,Instrumentalness,Liveness,Lyrics\n" +
		"Test Song,Someone,100,0.5,0.6,-6.3 dB,0.4,0.1,0.3,0.0,0.2,la la la\n"

	store, err := Load(writeTemp(t, csv))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rec, err := store.Lookup("Test Song", "")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got := rec.Feature("valence"); got != 0.6 {
		t.Errorf("valence = %v, want 0.6 (Positiveness alias)", got)
	}
	if got := rec.Feature("loudness"); got != -6.3 {
		t.Errorf("loudness = %v, want -6.3 (cleaned dB string)", got)
	}
	if store.LyricsColumn() != "Lyrics" {
		t.Errorf("LyricsColumn() = %q, want %q", store.LyricsColumn(), "Lyrics")
	}
}

func TestLoadEmptyDataset(t *testing.T) {
	header := "track_name,artists,tempo,energy,valence,loudness,danceability,speechiness,acousticness,instrumentalness,liveness,text\n"
	_, err := Load(writeTemp(t, header))
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("Load() error = %v, want ErrEmptyDataset", err)
	}
}

func TestLookup(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		song       string
		artist     string
		wantArtist string
		wantErr    error
	}{
		{name: "exact match", song: "Yesterday", artist: "The Beatles", wantArtist: "The Beatles"},
		{name: "case insensitive song name", song: "yesterday", artist: "", wantArtist: "The Beatles"},
		{name: "whitespace normalized", song: "  YESTERDAY ", artist: "", wantArtist: "The Beatles"},
		{name: "artist disambiguates duplicates", song: "Happy", artist: "nevada", wantArtist: "Nevada Tan"},
		{name: "artist substring match", song: "Happy", artist: "pharrell", wantArtist: "Pharrell Williams"},
		{name: "no artist match falls back to first", song: "Happy", artist: "Daft Punk", wantArtist: "Pharrell Williams"},
		{name: "unknown artist placeholder ignored", song: "Happy", artist: "Unknown Artist", wantArtist: "Pharrell Williams"},
		{name: "not in dataset", song: "Bohemian Rhapsody", artist: "Queen", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := store.Lookup(tt.song, tt.artist)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && rec.Artist != tt.wantArtist {
				t.Errorf("Lookup() artist = %q, want %q", rec.Artist, tt.wantArtist)
			}
		})
	}
}

func TestVectorZeroFill(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("complete record imputes nothing", func(t *testing.T) {
		rec, _ := store.Lookup("Yesterday", "")
		vec, imputed := rec.Vector(FeatureNames)
		if len(imputed) != 0 {
			t.Errorf("imputed = %v, want none", imputed)
		}
		if vec[0] != 97 {
			t.Errorf("tempo = %v, want 97", vec[0])
		}
	})

	t.Run("record missing every feature zero-fills all nine", func(t *testing.T) {
		rec, _ := store.Lookup("No Features", "")
		vec, imputed := rec.Vector(FeatureNames)
		if len(imputed) != len(FeatureNames) {
			t.Fatalf("imputed %d features, want %d", len(imputed), len(FeatureNames))
		}
		for i, v := range vec {
			if v != 0 {
				t.Errorf("vec[%d] = %v, want 0", i, v)
			}
		}
	})
}

func TestParseLoudness(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain negative", input: "-7.2", want: -7.2},
		{name: "unicode minus with unit", input: "−7.2 dB", want: -7.2},
		{name: "uppercase unit", input: "-3 DB", want: -3},
		{name: "clipped below floor", input: "-80", want: -60},
		{name: "clipped above ceiling", input: "4", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLoudness(tt.input); got != tt.want {
				t.Errorf("ParseLoudness(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("empty is NaN", func(t *testing.T) {
		if got := ParseLoudness(""); !math.IsNaN(got) {
			t.Errorf("ParseLoudness(\"\") = %v, want NaN", got)
		}
	})
}

func TestSampleSongs(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	got := store.SampleSongs(2)
	if len(got) != 2 {
		t.Fatalf("SampleSongs(2) returned %d names", len(got))
	}
	// "Happy" appears twice in the dataset but must be suggested once.
	if got[0] != "Happy" || got[1] != "Yesterday" {
		t.Errorf("SampleSongs(2) = %v, want [Happy Yesterday]", got)
	}
}

func TestMoodCounts(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	counts := store.MoodCounts()
	want := map[mood.Label]int{mood.Happy: 1, mood.Sad: 2, mood.Chill: 1}
	for label, n := range want {
		if counts[label] != n {
			t.Errorf("MoodCounts()[%s] = %d, want %d", label, counts[label], n)
		}
	}
}

func TestHasLyrics(t *testing.T) {
	store, err := Load(writeTemp(t, sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	rec, _ := store.Lookup("Happy", "Nevada Tan")
	if rec.HasLyrics() {
		t.Error("HasLyrics() = true for empty lyrics cell")
	}
	rec, _ = store.Lookup("Happy", "Pharrell Williams")
	if !rec.HasLyrics() {
		t.Error("HasLyrics() = false for record with lyrics")
	}
	if !strings.Contains(rec.Lyrics, "feeling good") {
		t.Errorf("Lyrics = %q", rec.Lyrics)
	}
}
