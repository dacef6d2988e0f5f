// Command song-mood-classifier serves the dual-classifier prediction API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/moodlab/go-song-mood-classifier/internal/audio"
	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/lyrics"
	"github.com/moodlab/go-song-mood-classifier/internal/predict"
	"github.com/moodlab/go-song-mood-classifier/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dataPath     = flag.String("data", "data/songs.csv", "path to the song dataset CSV")
		modelPath    = flag.String("model", "data/audio_model.json", "path to the audio model artifact")
		listen       = flag.String("listen", web.DefaultAddr, "address to serve the API on")
		statsWorkers = flag.Int("stats-workers", 0, "workers for the stats dataset scan (0 = one per CPU)")
	)
	flag.Parse()

	store, err := dataset.Load(*dataPath)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	log.Printf("Loaded %d songs from %s (lyrics column %q)", store.Len(), *dataPath, store.LyricsColumn())

	// A missing or corrupt model is not fatal: the server starts and answers
	// 503 on prediction routes until a model is supplied.
	model, err := audio.Load(*modelPath)
	switch {
	case errors.Is(err, audio.ErrModelNotFound):
		log.Printf("No audio model at %s; prediction routes will return 503", *modelPath)
	case errors.Is(err, audio.ErrCorruptModel):
		log.Printf("Audio model at %s is unusable (%v); prediction routes will return 503", *modelPath, err)
	case err != nil:
		return fmt.Errorf("loading audio model: %w", err)
	default:
		log.Printf("Loaded audio model %s (%d trees)", model.Version(), model.NumTrees())
	}

	cfg := predict.DefaultConfig()
	svc := predict.NewService(store, model, lyrics.New(cfg.LyricsThreshold), cfg)

	server := web.NewServer(web.ServerConfig{
		Addr:         *listen,
		StatsWorkers: *statsWorkers,
	}, svc)

	return server.Run()
}
