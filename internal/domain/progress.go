package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressStats is the caller-supplied practice summary for one day.
type ProgressStats struct {
	EssaysCompleted  int                   `json:"essays_completed"`
	LessonsCompleted int                   `json:"lessons_completed"`
	DrillsCompleted  int                   `json:"drills_completed"`
	MinutesSpent     int                   `json:"minutes_spent"`
	AverageScore     *float64              `json:"average_score,omitempty"`
	SubScores        map[FocusArea]float64 `json:"sub_scores,omitempty"`
}

// ProgressRecord is one calendar day of practice on a path.
// AverageScore and SubScores are measured means of graded work, so unlike
// plan scores they are not quantized; nil AverageScore means nothing was graded.
type ProgressRecord struct {
	PathID           uuid.UUID             `json:"path_id"`
	Date             time.Time             `json:"date"`
	EssaysCompleted  int                   `json:"essays_completed"`
	LessonsCompleted int                   `json:"lessons_completed"`
	DrillsCompleted  int                   `json:"drills_completed"`
	MinutesSpent     int                   `json:"minutes_spent"`
	AverageScore     *float64              `json:"average_score,omitempty"`
	SubScores        map[FocusArea]float64 `json:"sub_scores,omitempty"`
	ScoredSamples    int                   `json:"scored_samples"`
	// SubScoreSamples counts the samples behind each SubScores mean. An area
	// can be graded less often than the day overall.
	SubScoreSamples map[FocusArea]int `json:"sub_score_samples,omitempty"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewProgressRecord builds a record for day from stats and validates it.
func NewProgressRecord(pathID uuid.UUID, day time.Time, stats ProgressStats) (*ProgressRecord, error) {
	rec := &ProgressRecord{
		PathID:           pathID,
		Date:             Day(day),
		EssaysCompleted:  stats.EssaysCompleted,
		LessonsCompleted: stats.LessonsCompleted,
		DrillsCompleted:  stats.DrillsCompleted,
		MinutesSpent:     stats.MinutesSpent,
		AverageScore:     stats.AverageScore,
		UpdatedAt:        time.Now().UTC(),
	}
	if len(stats.SubScores) > 0 {
		rec.SubScores = make(map[FocusArea]float64, len(stats.SubScores))
		rec.SubScoreSamples = make(map[FocusArea]int, len(stats.SubScores))
		for k, v := range stats.SubScores {
			rec.SubScores[k] = v
			rec.SubScoreSamples[k] = 1
		}
	}
	if rec.AverageScore != nil {
		rec.ScoredSamples = 1
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// HasData reports whether the record carries a measured score.
func (r *ProgressRecord) HasData() bool {
	return r.AverageScore != nil
}

// Validate checks counts and score ranges.
func (r *ProgressRecord) Validate() error {
	if r.PathID == uuid.Nil {
		return NewValidationError("progress.path_id", "cannot be empty", ErrInvalidRecord)
	}
	if r.Date.IsZero() {
		return NewValidationError("progress.date", "is required", ErrInvalidRecord)
	}
	if r.EssaysCompleted < 0 || r.LessonsCompleted < 0 || r.DrillsCompleted < 0 || r.MinutesSpent < 0 {
		return NewValidationError("progress.counts", "cannot be negative", ErrInvalidRecord)
	}
	if r.AverageScore != nil && !inBandRange(*r.AverageScore) {
		return NewValidationError("progress.average_score", "must be within 0-9", ErrInvalidRecord)
	}
	for area, v := range r.SubScores {
		if area == FocusOverall || !area.Valid() {
			return NewValidationError("progress.sub_scores", "unknown focus area "+string(area), ErrInvalidRecord)
		}
		if !inBandRange(v) {
			return NewValidationError("progress.sub_scores", "must be within 0-9", ErrInvalidRecord)
		}
	}
	return nil
}

// AddScoredSample folds one graded submission into the day's running means.
// Each area's mean is weighted by the samples that carried that area.
func (r *ProgressRecord) AddScoredSample(overall Score, subScores map[FocusArea]Score) {
	n := float64(r.ScoredSamples)
	avg := overall.Float()
	if r.AverageScore != nil && r.ScoredSamples > 0 {
		avg = (*r.AverageScore*n + overall.Float()) / (n + 1)
	}
	r.AverageScore = &avg

	if r.SubScores == nil {
		r.SubScores = make(map[FocusArea]float64, len(subScores))
	}
	if r.SubScoreSamples == nil {
		r.SubScoreSamples = make(map[FocusArea]int, len(subScores))
	}
	for area, s := range subScores {
		count := r.SampleCount(area)
		if count == 0 {
			r.SubScores[area] = s.Float()
		} else {
			r.SubScores[area] = (r.SubScores[area]*float64(count) + s.Float()) / float64(count+1)
		}
		r.SubScoreSamples[area] = count + 1
	}
	r.ScoredSamples++
	r.EssaysCompleted++
}

// SampleCount returns the samples behind area's mean. Records written before
// per-area counts existed count each present area as one sample.
func (r *ProgressRecord) SampleCount(area FocusArea) int {
	if n, ok := r.SubScoreSamples[area]; ok {
		return n
	}
	if _, ok := r.SubScores[area]; ok {
		return 1
	}
	return 0
}

// Clone returns a deep copy.
func (r *ProgressRecord) Clone() *ProgressRecord {
	out := *r
	if r.AverageScore != nil {
		v := *r.AverageScore
		out.AverageScore = &v
	}
	if r.SubScores != nil {
		out.SubScores = make(map[FocusArea]float64, len(r.SubScores))
		for k, v := range r.SubScores {
			out.SubScores[k] = v
		}
	}
	if r.SubScoreSamples != nil {
		out.SubScoreSamples = make(map[FocusArea]int, len(r.SubScoreSamples))
		for k, v := range r.SubScoreSamples {
			out.SubScoreSamples[k] = v
		}
	}
	return &out
}

func inBandRange(v float64) bool {
	return v >= 0 && v <= 9
}
