// Command mood-prep prepares a raw emotion-labelled song export for
// training and serving: emotion labels are mapped to the four mood targets,
// headers and loudness strings normalized, and (with Spotify credentials
// set) rows missing audio features are enriched from the catalog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/moodlab/go-song-mood-classifier/internal/prep"
	"github.com/moodlab/go-song-mood-classifier/internal/spotifyenrich"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inPath  = flag.String("in", "data/raw_songs.csv", "path to the raw emotion-labelled export")
		outPath = flag.String("out", "data/songs.csv", "path for the prepared dataset")
		enrich  = flag.Bool("enrich", false, "fill missing audio features from the Spotify API (needs SPOTIFY_ID and SPOTIFY_SECRET)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(*inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	rows, sum, err := prep.Read(in)
	in.Close()
	if err != nil {
		return err
	}
	logSummary(sum)

	if *enrich {
		if err := enrichRows(ctx, rows); err != nil {
			return err
		}
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := prep.Write(out, rows); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	log.Printf("Wrote %d rows to %s", len(rows), *outPath)
	return nil
}

func logSummary(sum prep.Summary) {
	log.Printf("Read %d rows, kept %d", sum.Read, sum.Kept)

	labels := make([]string, 0, len(sum.Dropped))
	for label := range sum.Dropped {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		name := label
		if name == "" {
			name = "(no song name)"
		}
		log.Printf("Dropped %d rows: %s", sum.Dropped[label], name)
	}
}

// enrichRows fills missing audio features from the Spotify catalog. Lookup
// or fetch failures skip the row with a log line; no value is ever invented.
func enrichRows(ctx context.Context, rows []prep.Row) error {
	cfg, err := spotifyenrich.LoadConfig()
	if errors.Is(err, spotifyenrich.ErrMissingCredentials) {
		return fmt.Errorf("-enrich: %w", err)
	}
	if err != nil {
		return err
	}

	client, err := spotifyenrich.NewClient(ctx, cfg)
	if err != nil {
		return err
	}

	// Find track IDs for the rows that need features.
	idByRow := make(map[int]string)
	var ids []string
	for i := range rows {
		if len(rows[i].MissingFeatures()) == 0 {
			continue
		}
		id, err := client.FindTrack(ctx, rows[i].Song, rows[i].Artist)
		if err != nil {
			log.Printf("Skipping %q: %v", rows[i].Song, err)
			continue
		}
		if id == "" {
			log.Printf("Skipping %q: not found in catalog", rows[i].Song)
			continue
		}
		idByRow[i] = id
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		log.Print("No rows need enrichment")
		return nil
	}

	features, err := client.FetchFeatures(ctx, ids)
	if err != nil {
		return fmt.Errorf("enriching rows: %w", err)
	}

	var filled int
	for i, id := range idByRow {
		fetched, ok := features[id]
		if !ok {
			continue
		}
		for _, name := range rows[i].MissingFeatures() {
			if v, ok := fetched[name]; ok {
				rows[i].Features[name] = v
			}
		}
		filled++
	}
	log.Printf("Enriched %d of %d rows", filled, len(idByRow))
	return nil
}
