package dataset

import (
	"fmt"
	"strings"
)

// FeatureNames lists the nine audio features in model order. Column
// resolution, feature vectors and the model artifact all use this ordering.
var FeatureNames = []string{
	"tempo", "energy", "valence", "loudness",
	"danceability", "speechiness", "acousticness",
	"instrumentalness", "liveness",
}

// featureAliases maps each canonical feature to the header variants seen in
// the source datasets. The first present alias wins.
var featureAliases = map[string][]string{
	"tempo":            {"tempo", "Tempo"},
	"energy":           {"energy", "Energy"},
	"valence":          {"valence", "Valence", "Positiveness"},
	"loudness":         {"loudness", "Loudness", "Loudness (dB)", "Loudness (db)"},
	"danceability":     {"danceability", "Danceability"},
	"speechiness":      {"speechiness", "Speechiness"},
	"acousticness":     {"acousticness", "Acousticness"},
	"instrumentalness": {"instrumentalness", "Instrumentalness"},
	"liveness":         {"liveness", "Liveness"},
}

// Column alias lists, tried in order. Lyrics resolution in particular is an
// ordered contract: the first present alias is used for every row.
var (
	songAliases   = []string{"song", "track_name", "Song", "Track Name", "name"}
	artistAliases = []string{"artists", "Artist(s)", "artist", "Artist", "artist_name"}
	lyricsAliases = []string{"text", "lyrics", "Lyrics", "Text", "song_text"}
	moodAliases   = []string{"mood", "Mood"}
)

// schema holds column indices resolved once at load time. An index of -1
// means the column is absent.
type schema struct {
	features map[string]int
	song     int
	artist   int
	lyrics   int
	mood     int

	lyricsColumn string // resolved alias, for diagnostics
}

// resolveSchema maps a header row to column indices. All nine feature
// columns, a song-name column and at least one lyrics alias are required.
func resolveSchema(header []string) (*schema, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.TrimSpace(h)] = i
	}

	find := func(aliases []string) (int, string) {
		for _, a := range aliases {
			if i, ok := byName[a]; ok {
				return i, a
			}
		}
		return -1, ""
	}

	s := &schema{
		features: make(map[string]int, len(FeatureNames)),
	}

	var missing []string
	for _, f := range FeatureNames {
		i, _ := find(featureAliases[f])
		s.features[f] = i
		if i < 0 {
			missing = append(missing, f)
		}
	}

	s.song, _ = find(songAliases)
	if s.song < 0 {
		missing = append(missing, "song")
	}
	s.lyrics, s.lyricsColumn = find(lyricsAliases)
	if s.lyrics < 0 {
		missing = append(missing, "lyrics")
	}
	s.artist, _ = find(artistAliases)
	s.mood, _ = find(moodAliases)

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return s, nil
}
