// Package prep turns a raw emotion-labelled song export into the canonical
// training dataset: headers are normalized, loudness strings cleaned, emotion
// labels mapped down to the four mood targets, and unmappable rows dropped.
package prep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// ErrNoEmotionColumn is returned when the input has no emotion or mood
// column.
var ErrNoEmotionColumn = errors.New("input has no emotion column")

// emotionToMood maps raw emotion labels to mood targets. Labels absent from
// the map (noise like "true", "pink", "confusion") drop the row.
var emotionToMood = map[string]mood.Label{
	"joy":      mood.Happy,
	"surprise": mood.Happy,
	"interest": mood.Happy,
	"love":     mood.Chill,
	"sadness":  mood.Sad,
	"anger":    mood.Hyped,
	"angry":    mood.Hyped,
	"fear":     mood.Hyped,
	"thirst":   mood.Hyped,

	// Already-mapped labels pass through, so prep is idempotent over its own
	// output.
	"happy": mood.Happy,
	"chill": mood.Chill,
	"sad":   mood.Sad,
	"hyped": mood.Hyped,
}

var emotionAliases = []string{"emotion", "Emotion", "mood", "Mood", "label", "Label"}

// MoodForEmotion maps a raw emotion label to its mood target. ok is false
// for labels that drop the row.
func MoodForEmotion(emotion string) (mood.Label, bool) {
	m, ok := emotionToMood[strings.ToLower(strings.TrimSpace(emotion))]
	return m, ok
}

// Row is one prepared song row. Feature values are NaN where the source cell
// was empty or unparseable.
type Row struct {
	Song     string
	Artist   string
	Lyrics   string
	Mood     mood.Label
	Features map[string]float64
}

// MissingFeatures lists the canonical features the row has no value for, in
// model order.
func (r *Row) MissingFeatures() []string {
	var out []string
	for _, name := range dataset.FeatureNames {
		if v, ok := r.Features[name]; !ok || math.IsNaN(v) {
			out = append(out, name)
		}
	}
	return out
}

// Summary reports what a preparation pass did.
type Summary struct {
	Read    int
	Kept    int
	Dropped map[string]int // raw emotion label -> dropped row count
}

// Read parses a raw export and returns the prepared rows. Rows without a
// song name or whose emotion maps to no target are dropped and tallied in
// the summary.
func Read(r io.Reader) ([]Row, Summary, error) {
	sum := Summary{Dropped: make(map[string]int)}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, sum, fmt.Errorf("reading input header: %w", err)
	}

	cols, emotionCol, err := resolveColumns(header)
	if err != nil {
		return nil, sum, err
	}

	var rows []Row
	for {
		raw, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, sum, fmt.Errorf("reading input row: %w", err)
		}
		if len(raw) != len(header) {
			continue
		}
		sum.Read++

		cell := func(i int) string {
			if i < 0 || i >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[i])
		}

		emotion := cell(emotionCol)
		label, ok := MoodForEmotion(emotion)
		if !ok {
			sum.Dropped[strings.ToLower(emotion)]++
			continue
		}

		row := Row{
			Song:     cell(cols.song),
			Artist:   cell(cols.artist),
			Lyrics:   cell(cols.lyrics),
			Mood:     label,
			Features: make(map[string]float64, len(dataset.FeatureNames)),
		}
		if row.Song == "" {
			sum.Dropped[""]++
			continue
		}

		for name, idx := range cols.features {
			raw := cell(idx)
			var v float64
			if name == "loudness" {
				v = dataset.ParseLoudness(raw)
			} else {
				v = parseFloat(raw)
			}
			if !math.IsNaN(v) {
				row.Features[name] = v
			}
		}

		rows = append(rows, row)
		sum.Kept++
	}

	return rows, sum, nil
}

// Write emits the prepared rows as the canonical CSV the dataset loader
// expects: lowercase headers, empty cells for missing features.
func Write(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	header := append([]string{"track_name", "artists"}, dataset.FeatureNames...)
	header = append(header, "text", "mood")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}

	for _, row := range rows {
		out := make([]string, 0, len(header))
		out = append(out, row.Song, row.Artist)
		for _, name := range dataset.FeatureNames {
			v, ok := row.Features[name]
			if !ok || math.IsNaN(v) {
				out = append(out, "")
				continue
			}
			out = append(out, strconv.FormatFloat(v, 'g', -1, 64))
		}
		out = append(out, row.Lyrics, string(row.Mood))
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("writing output row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

type columns struct {
	song     int
	artist   int
	lyrics   int
	features map[string]int
}

// resolveColumns maps the raw header to canonical columns, reusing the
// dataset schema's alias lists. Only song and emotion columns are required:
// prep tolerates exports with features or lyrics missing, since enrichment
// can fill features afterwards.
func resolveColumns(header []string) (columns, int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.TrimSpace(h)] = i
	}

	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		song:     find([]string{"song", "track_name", "Song", "Track Name", "name"}),
		artist:   find([]string{"artists", "Artist(s)", "artist", "Artist", "artist_name"}),
		lyrics:   find([]string{"text", "lyrics", "Lyrics", "Text", "song_text"}),
		features: make(map[string]int, len(dataset.FeatureNames)),
	}
	for _, name := range dataset.FeatureNames {
		cols.features[name] = find(featureAliasesFor(name))
	}

	if cols.song < 0 {
		return cols, -1, fmt.Errorf("%w: song", dataset.ErrMissingColumn)
	}
	emotionCol := find(emotionAliases)
	if emotionCol < 0 {
		return cols, -1, ErrNoEmotionColumn
	}
	return cols, emotionCol, nil
}

func featureAliasesFor(name string) []string {
	title := strings.ToUpper(name[:1]) + name[1:]
	aliases := []string{name, title}
	switch name {
	case "valence":
		aliases = append(aliases, "Positiveness")
	case "loudness":
		aliases = append(aliases, "Loudness (dB)", "Loudness (db)")
	}
	return aliases
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
