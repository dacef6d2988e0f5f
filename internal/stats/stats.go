// Package stats derives read-only aggregate summaries from dataset
// predictions. Everything here is a pure function of its inputs and can be
// recomputed at any time; nothing is cached or incrementally updated.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/moodlab/go-song-mood-classifier/internal/mood"
	"github.com/moodlab/go-song-mood-classifier/internal/predict"
)

// histogramBins are the fixed confidence buckets. The last bin is closed at
// 1.0 so a perfectly confident prediction still lands in a bucket.
var histogramBins = [][2]float64{
	{0, 0.2}, {0.2, 0.4}, {0.4, 0.6}, {0.6, 0.8}, {0.8, 1.0},
}

// Agreement summarizes label agreement over rows where both predictions
// exist.
type Agreement struct {
	AgreePct    float64 `json:"agree_pct"`
	DisagreePct float64 `json:"disagree_pct"`
	Agree       int     `json:"agree"`
	Total       int     `json:"total"`
}

// MoodShare is a per-mood pair of percentages, one per classifier.
type MoodShare struct {
	Mood   mood.Label `json:"mood"`
	Audio  float64    `json:"audio"`
	Lyrics float64    `json:"lyrics"`
}

// ConfusionRow is one audio-mood row of the confusion matrix.
type ConfusionRow struct {
	Audio  mood.Label         `json:"audio"`
	Counts map[mood.Label]int `json:"counts"`
}

// HistogramBin is one confidence bucket with per-classifier counts.
type HistogramBin struct {
	Range  string `json:"range"`
	Audio  int    `json:"audio"`
	Lyrics int    `json:"lyrics"`
}

// MoodAgreement is the agreement rate among rows the audio classifier
// assigned to one mood.
type MoodAgreement struct {
	Mood     mood.Label `json:"mood"`
	AgreePct float64    `json:"agree_pct"`
	Total    int        `json:"total"`
}

// Accuracy is each classifier's accuracy against ground-truth labels, over
// labelled rows where that classifier produced a prediction.
type Accuracy struct {
	Audio  float64 `json:"audio"`
	Lyrics float64 `json:"lyrics"`
}

// Aggregate is the full derived summary over one dataset scan.
type Aggregate struct {
	TotalRecords int `json:"totalRecords"`
	Paired       int `json:"paired"` // rows with both predictions

	Agreement    Agreement   `json:"agreement"`
	Distribution []MoodShare `json:"distribution"` // percentages over paired rows

	// AudioCounts tallies audio predictions over every record, including
	// rows without a lyrics prediction. This is deliberately a different
	// population from Distribution's paired rows.
	AudioCounts map[mood.Label]int `json:"audioCounts"`

	Confusion     []ConfusionRow  `json:"confusion"`
	LowConfidence []MoodShare     `json:"lowConfidence"`
	Histogram     []HistogramBin  `json:"confidenceDistribution"`
	ByMood        []MoodAgreement `json:"agreementByMood"`

	// Accuracy is present only when the dataset carries ground-truth labels.
	Accuracy *Accuracy `json:"accuracy,omitempty"`

	MeanAudioConfidence  float64 `json:"meanAudioConfidence"`
	MeanLyricsConfidence float64 `json:"meanLyricsConfidence"`
}

// Compute derives the aggregate summary from per-record predictions.
func Compute(preds []predict.RecordPrediction) Aggregate {
	agg := Aggregate{
		TotalRecords: len(preds),
		AudioCounts:  make(map[mood.Label]int, 4),
	}

	type cell struct{ audio, lyrics mood.Label }
	confusion := make(map[cell]int)

	lowAudio := make(map[mood.Label]int, 4)
	lowLyrics := make(map[mood.Label]int, 4)
	pairedAudio := make(map[mood.Label]int, 4)
	pairedLyrics := make(map[mood.Label]int, 4)
	agreeByMood := make(map[mood.Label]int, 4)

	var audioConf, lyricsConf []float64
	var audioRight, audioLabelled, lyricsRight, lyricsLabelled int

	for _, p := range preds {
		agg.AudioCounts[p.Audio.Label]++
		audioConf = append(audioConf, p.Audio.Confidence)

		if truth := p.Record.Mood; truth != "" {
			audioLabelled++
			if p.Audio.Label == truth {
				audioRight++
			}
		}

		if p.Lyrics == nil {
			continue
		}

		agg.Paired++
		lyricsConf = append(lyricsConf, p.Lyrics.Confidence)
		pairedAudio[p.Audio.Label]++
		pairedLyrics[p.Lyrics.Label]++
		confusion[cell{p.Audio.Label, p.Lyrics.Label}]++

		if p.Audio.LowConfidence {
			lowAudio[p.Audio.Label]++
		}
		if p.Lyrics.LowConfidence {
			lowLyrics[p.Lyrics.Label]++
		}
		if p.Audio.Label == p.Lyrics.Label {
			agg.Agreement.Agree++
			agreeByMood[p.Audio.Label]++
		}

		if truth := p.Record.Mood; truth != "" {
			lyricsLabelled++
			if p.Lyrics.Label == truth {
				lyricsRight++
			}
		}
	}

	agg.Agreement.Total = agg.Paired
	if agg.Paired > 0 {
		agg.Agreement.AgreePct = pct(agg.Agreement.Agree, agg.Paired)
		agg.Agreement.DisagreePct = 100 - agg.Agreement.AgreePct
	}

	for _, label := range mood.Labels() {
		agg.Distribution = append(agg.Distribution, MoodShare{
			Mood:   label,
			Audio:  pct(pairedAudio[label], agg.Paired),
			Lyrics: pct(pairedLyrics[label], agg.Paired),
		})

		row := ConfusionRow{Audio: label, Counts: make(map[mood.Label]int, 4)}
		for _, col := range mood.Labels() {
			row.Counts[col] = confusion[cell{label, col}]
		}
		agg.Confusion = append(agg.Confusion, row)

		agg.LowConfidence = append(agg.LowConfidence, MoodShare{
			Mood:   label,
			Audio:  pct(lowAudio[label], pairedAudio[label]),
			Lyrics: pct(lowLyrics[label], pairedLyrics[label]),
		})

		agg.ByMood = append(agg.ByMood, MoodAgreement{
			Mood:     label,
			AgreePct: pct(agreeByMood[label], pairedAudio[label]),
			Total:    pairedAudio[label],
		})
	}

	agg.Histogram = histogram(preds)

	if audioLabelled > 0 {
		acc := &Accuracy{Audio: ratio(audioRight, audioLabelled)}
		if lyricsLabelled > 0 {
			acc.Lyrics = ratio(lyricsRight, lyricsLabelled)
		}
		agg.Accuracy = acc
	}

	if len(audioConf) > 0 {
		agg.MeanAudioConfidence = stat.Mean(audioConf, nil)
	}
	if len(lyricsConf) > 0 {
		agg.MeanLyricsConfidence = stat.Mean(lyricsConf, nil)
	}

	return agg
}

// histogram bins both classifiers' confidences over paired rows. Bins are
// half-open except the last, which includes 1.0.
func histogram(preds []predict.RecordPrediction) []HistogramBin {
	bins := make([]HistogramBin, len(histogramBins))
	for i, b := range histogramBins {
		bins[i].Range = fmt.Sprintf("%.1f-%.1f", b[0], b[1])
	}

	place := func(conf float64) int {
		for i, b := range histogramBins {
			last := i == len(histogramBins)-1
			if conf >= b[0] && (conf < b[1] || (last && conf <= b[1])) {
				return i
			}
		}
		return -1
	}

	for _, p := range preds {
		if p.Lyrics == nil {
			continue
		}
		if i := place(p.Audio.Confidence); i >= 0 {
			bins[i].Audio++
		}
		if i := place(p.Lyrics.Confidence); i >= 0 {
			bins[i].Lyrics++
		}
	}
	return bins
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}
