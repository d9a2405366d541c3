package ledger

import (
	"sort"

	"github.com/phrazzld/bandpath/internal/domain"
)

// Direction is the movement of recent scores relative to the prior window.
type Direction string

// Trend directions.
const (
	DirectionFaster  Direction = "faster"
	DirectionOnTrack Direction = "on_track"
	DirectionSlower  Direction = "slower"
)

// TrendResult is the outcome of a trend query. Insufficient data is reported
// as OnTrack with zero confidence rather than as an error.
type TrendResult struct {
	Direction Direction `json:"direction"`
	// Confidence is the fraction of the two windows that had data, in [0, 1].
	Confidence float64 `json:"confidence"`
	RecentMean float64 `json:"recent_mean"`
	PriorMean  float64 `json:"prior_mean"`
	Delta      float64 `json:"delta"`
	Samples    int     `json:"samples"`
}

// HasRecentMean reports whether RecentMean was computed from data.
func (t TrendResult) HasRecentMean() bool {
	return t.Samples > 0
}

// WeakArea is a focus area lagging the overall recent average.
type WeakArea struct {
	Focus   domain.FocusArea `json:"focus"`
	Average float64          `json:"average"`
	// Deficit is how far the area trails the overall average, in bands.
	Deficit float64 `json:"deficit"`
}

// Areas extracts the focus areas from weak, preserving order.
func Areas(weak []WeakArea) []domain.FocusArea {
	out := make([]domain.FocusArea, len(weak))
	for i, w := range weak {
		out[i] = w.Focus
	}
	return out
}

// Trend compares the mean score of the newest windowDays records with data
// against the mean of the windowDays records before them. A non-positive
// windowDays uses the configured default.
func (l *Ledger) Trend(windowDays int) TrendResult {
	if windowDays <= 0 {
		windowDays = l.params.TrendWindowDays
	}

	data := l.withData()
	if len(data) < windowDays {
		return TrendResult{
			Direction:  DirectionOnTrack,
			RecentMean: meanScore(data),
			Samples:    len(data),
		}
	}

	recent := data[:windowDays]
	end := 2 * windowDays
	if end > len(data) {
		end = len(data)
	}
	prior := data[windowDays:end]

	result := TrendResult{
		Direction:  DirectionOnTrack,
		RecentMean: meanScore(recent),
		Samples:    len(data),
	}
	if len(prior) == 0 {
		return result
	}

	result.PriorMean = meanScore(prior)
	result.Delta = result.RecentMean - result.PriorMean
	result.Confidence = float64(len(recent)+len(prior)) / float64(2*windowDays)

	switch {
	case result.Delta >= l.params.TrendThreshold-epsilon:
		result.Direction = DirectionFaster
	case result.Delta <= -l.params.TrendThreshold+epsilon:
		result.Direction = DirectionSlower
	}
	return result
}

// WeakAreas returns foundational areas whose mean sub-score over the newest
// windowDays records with data is more than the threshold below the overall
// mean of the same records, weakest first. A non-positive windowDays uses
// the configured default.
func (l *Ledger) WeakAreas(windowDays int) []WeakArea {
	if windowDays <= 0 {
		windowDays = l.params.WeakAreaWindowDays
	}

	data := l.withData()
	if len(data) > windowDays {
		data = data[:windowDays]
	}
	if len(data) == 0 {
		return []WeakArea{}
	}
	baseline := meanScore(data)

	weak := []WeakArea{}
	for _, area := range domain.FoundationalAreas {
		sum, n := 0.0, 0
		for _, r := range data {
			if v, ok := r.SubScores[area]; ok {
				sum += v
				n++
			}
		}
		if n == 0 || n < l.params.MinWeakAreaSamples {
			continue
		}
		avg := sum / float64(n)
		if deficit := baseline - avg; deficit > l.params.WeakAreaThreshold+epsilon {
			weak = append(weak, WeakArea{Focus: area, Average: avg, Deficit: deficit})
		}
	}

	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].Average != weak[j].Average {
			return weak[i].Average < weak[j].Average
		}
		return weak[i].Focus.Rank() < weak[j].Focus.Rank()
	})
	return weak
}
