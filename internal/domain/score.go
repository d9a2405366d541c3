package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Band score limits expressed in half bands.
const (
	minScoreHalves = 0
	maxScoreHalves = 18
)

// MaxScore is the highest representable band score.
const MaxScore = Score(maxScoreHalves)

// Score is a band score on the 0-9 scale in 0.5 steps.
// The underlying value counts half bands, so 6.5 is stored as 13.
// Scores are never held at finer granularity; all arithmetic re-quantizes.
type Score int

// NewScore validates that value is an exact band score in [0, 9].
func NewScore(value float64) (Score, error) {
	if math.IsNaN(value) || value < 0 || value > 9 {
		return 0, fmt.Errorf("%w: %v is outside 0-9", ErrInvalidScore, value)
	}
	halves := value * 2
	if halves != math.Trunc(halves) {
		return 0, fmt.Errorf("%w: %v is not a multiple of 0.5", ErrInvalidScore, value)
	}
	return Score(int(halves)), nil
}

// MustScore is NewScore for constants known to be valid.
func MustScore(value float64) Score {
	s, err := NewScore(value)
	if err != nil {
		// ALLOW-PANIC: only used with literal values
		panic(err)
	}
	return s
}

// QuantizeScore rounds value to the nearest half band and clamps it to [0, 9].
func QuantizeScore(value float64) Score {
	if math.IsNaN(value) {
		return 0
	}
	halves := int(math.Round(value * 2))
	if halves < minScoreHalves {
		halves = minScoreHalves
	}
	if halves > maxScoreHalves {
		halves = maxScoreHalves
	}
	return Score(halves)
}

// Float returns the band value, e.g. 6.5.
func (s Score) Float() float64 {
	return float64(s) / 2
}

// Halves returns the number of half bands.
func (s Score) Halves() int {
	return int(s)
}

// Add returns s moved by bands, re-quantized and clamped.
func (s Score) Add(bands float64) Score {
	return QuantizeScore(s.Float() + bands)
}

// Sub returns s - other in bands.
func (s Score) Sub(other Score) float64 {
	return float64(s-other) / 2
}

// Valid reports whether s is within the band range.
func (s Score) Valid() bool {
	return s >= minScoreHalves && s <= maxScoreHalves
}

// String renders the score with one decimal, matching how bands are displayed.
func (s Score) String() string {
	return strconv.FormatFloat(s.Float(), 'f', 1, 64)
}

// MarshalJSON encodes the score as a band number.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON decodes a band number and rejects off-grid values.
func (s *Score) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScore, err)
	}
	parsed, err := NewScore(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MaxOf returns the larger of two scores.
func MaxOf(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}
