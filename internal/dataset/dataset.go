// Package dataset loads the song dataset from CSV and resolves song queries
// to their feature rows. The store is immutable once loaded; concurrent
// readers need no locking.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// Common errors.
var (
	ErrMissingColumn = errors.New("dataset missing required column")
	ErrEmptyDataset  = errors.New("dataset contains no rows")
	ErrNotFound      = errors.New("song not found")
)

// SongRecord is one song's identity, audio features and optional lyrics.
// Feature values are NaN where the source cell was empty or unparseable.
type SongRecord struct {
	Song   string
	Artist string
	Lyrics string     // empty when the row has no lyrics text
	Mood   mood.Label // ground-truth label; "" when absent or unrecognized

	features [9]float64 // indexed by position in FeatureNames
}

// NewRecord builds a record from explicit values, for callers whose records
// originate outside a CSV load. Features absent from the map are marked
// missing.
func NewRecord(song, artist, lyricsText string, label mood.Label, features map[string]float64) *SongRecord {
	rec := &SongRecord{Song: song, Artist: artist, Lyrics: lyricsText, Mood: label}
	for i, name := range FeatureNames {
		if v, ok := features[name]; ok {
			rec.features[i] = v
		} else {
			rec.features[i] = math.NaN()
		}
	}
	return rec
}

// Feature returns the named feature value. NaN marks a missing value.
func (r *SongRecord) Feature(name string) float64 {
	for i, f := range FeatureNames {
		if f == name {
			return r.features[i]
		}
	}
	return math.NaN()
}

// Vector assembles the features in the given order, zero-filling missing
// values. The returned imputed list names every feature that was filled, so
// callers can tell that imputation occurred.
func (r *SongRecord) Vector(order []string) (vec []float64, imputed []string) {
	vec = make([]float64, len(order))
	for i, name := range order {
		v := r.Feature(name)
		if math.IsNaN(v) {
			vec[i] = 0
			imputed = append(imputed, name)
			continue
		}
		vec[i] = v
	}
	return vec, imputed
}

// HasLyrics reports whether the record carries non-blank lyrics text.
func (r *SongRecord) HasLyrics() bool {
	return strings.TrimSpace(r.Lyrics) != ""
}

// Store is the in-memory index over the loaded dataset.
type Store struct {
	records []*SongRecord
	byName  map[string][]*SongRecord // keyed by normalized song name

	lyricsColumn string
}

// Load reads a CSV dataset and builds the store. It fails with a wrapped
// ErrMissingColumn when any of the nine feature columns, the song column or
// every lyrics alias is absent, and with ErrEmptyDataset when no data rows
// parse.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return read(f)
}

func read(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are skipped below

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	sch, err := resolveSchema(header)
	if err != nil {
		return nil, err
	}

	s := &Store{
		byName:       make(map[string][]*SongRecord),
		lyricsColumn: sch.lyricsColumn,
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}
		if len(row) != len(header) {
			continue
		}

		rec := parseRow(row, sch)
		if rec.Song == "" {
			continue
		}
		s.records = append(s.records, rec)
		key := normalize(rec.Song)
		s.byName[key] = append(s.byName[key], rec)
	}

	if len(s.records) == 0 {
		return nil, ErrEmptyDataset
	}
	return s, nil
}

func parseRow(row []string, sch *schema) *SongRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := &SongRecord{
		Song:   cell(sch.song),
		Artist: cell(sch.artist),
		Lyrics: cell(sch.lyrics),
	}

	for i, name := range FeatureNames {
		raw := cell(sch.features[name])
		if name == "loudness" {
			rec.features[i] = ParseLoudness(raw)
			continue
		}
		rec.features[i] = parseFloat(raw)
	}

	if label, err := mood.Parse(cell(sch.mood)); err == nil {
		rec.Mood = label
	}
	return rec
}

func parseFloat(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

var loudnessJunk = regexp.MustCompile(`[^0-9.\-+]`)

// ParseLoudness handles the "−7.2 dB" style strings seen in the raw export:
// unicode minus, a dB suffix, stray units. Values are clipped to [-60, 0].
// The preparation pipeline applies the same cleaning before training.
func ParseLoudness(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, "−", "-")
	s = loudnessJunk.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return math.Min(0, math.Max(-60, v))
}

// normalize lowercases and collapses interior whitespace for matching.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Lookup resolves a song query. Matching is exact (case-insensitive,
// whitespace-normalized) on the song name. When several songs share the name
// and an artist is supplied, the best case-insensitive substring match on
// artist wins; with no artist match the first record is returned.
func (s *Store) Lookup(song, artist string) (*SongRecord, error) {
	candidates := s.byName[normalize(song)]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, song)
	}

	artist = strings.TrimSpace(artist)
	if artist != "" && !strings.EqualFold(artist, "Unknown Artist") {
		want := normalize(artist)
		for _, rec := range candidates {
			if strings.Contains(normalize(rec.Artist), want) {
				return rec, nil
			}
		}
	}
	return candidates[0], nil
}

// Records returns every loaded record, in file order.
func (s *Store) Records() []*SongRecord {
	return s.records
}

// Len returns the number of loaded records.
func (s *Store) Len() int { return len(s.records) }

// LyricsColumn reports which lyrics alias the schema resolved to.
func (s *Store) LyricsColumn() string { return s.lyricsColumn }

// SampleSongs returns up to n distinct song names, used to suggest known
// queries in not-found responses.
func (s *Store) SampleSongs(n int) []string {
	seen := make(map[string]bool, n)
	var out []string
	for _, rec := range s.records {
		key := normalize(rec.Song)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec.Song)
		if len(out) == n {
			break
		}
	}
	return out
}

// MoodCounts tallies ground-truth labels over the dataset. Records without a
// recognized mood are not counted.
func (s *Store) MoodCounts() map[mood.Label]int {
	counts := make(map[mood.Label]int, 4)
	for _, rec := range s.records {
		if rec.Mood != "" {
			counts[rec.Mood]++
		}
	}
	return counts
}
