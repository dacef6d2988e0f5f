package predict

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/moodlab/go-song-mood-classifier/internal/dataset"
	"github.com/moodlab/go-song-mood-classifier/internal/mood"
)

// RecordPrediction is one dataset row with both classifier outputs attached.
// Lyrics is nil for rows without lyrics text.
type RecordPrediction struct {
	Record *dataset.SongRecord
	Audio  mood.Prediction
	Lyrics *mood.Prediction
	Agree  *bool

	// Imputed is true when any audio feature was zero-filled for this row.
	Imputed bool
}

// ClassifyAll runs both classifiers over the full dataset. Rows are
// independent, so the scan is parallelized across workers; each worker
// writes its own result slots, and nothing is shared beyond the read-only
// store and model. Results come back in dataset order.
func (s *Service) ClassifyAll(ctx context.Context, workers int) ([]RecordPrediction, error) {
	if s.model == nil {
		return nil, ErrModelUnavailable
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	records := s.store.Records()
	results := make([]RecordPrediction, len(records))
	order := s.model.Features()

	indexes := make(chan int)
	errOnce := sync.Once{}
	var firstErr error

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				rec := records[i]

				vec, imputed := rec.Vector(order)
				audioRes, err := s.model.Predict(vec, s.cfg.AudioThreshold)
				if err != nil {
					errOnce.Do(func() { firstErr = fmt.Errorf("record %d (%s): %w", i, rec.Song, err) })
					continue
				}

				pair := mood.Pair{Audio: audioRes.Prediction}
				if pred, _, ok := s.lyrics.Classify(rec.Lyrics); ok {
					pair.Lyrics = &pred
				}

				results[i] = RecordPrediction{
					Record:  rec,
					Audio:   pair.Audio,
					Lyrics:  pair.Lyrics,
					Agree:   pair.Agree(),
					Imputed: len(imputed) > 0,
				}
			}
		}()
	}

feed:
	for i := range records {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
