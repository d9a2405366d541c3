package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewProgressRecord(t *testing.T) {
	t.Parallel()
	pathID := uuid.New()
	day := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		rec, err := NewProgressRecord(pathID, day, ProgressStats{
			EssaysCompleted: 1,
			MinutesSpent:    40,
			AverageScore:    floatPtr(6.25),
			SubScores:       map[FocusArea]float64{FocusLexicalResource: 6},
		})
		require.NoError(t, err)
		assert.Equal(t, Day(day), rec.Date)
		assert.True(t, rec.HasData())
		assert.Equal(t, 1, rec.ScoredSamples)
	})

	t.Run("no data", func(t *testing.T) {
		t.Parallel()
		rec, err := NewProgressRecord(pathID, day, ProgressStats{LessonsCompleted: 2})
		require.NoError(t, err)
		assert.False(t, rec.HasData())
		assert.Zero(t, rec.ScoredSamples)
	})

	invalid := []struct {
		name  string
		stats ProgressStats
	}{
		{name: "negative minutes", stats: ProgressStats{MinutesSpent: -1}},
		{name: "score out of range", stats: ProgressStats{AverageScore: floatPtr(9.5)}},
		{name: "overall sub-score", stats: ProgressStats{SubScores: map[FocusArea]float64{FocusOverall: 6}}},
		{name: "unknown area", stats: ProgressStats{SubScores: map[FocusArea]float64{"pronunciation": 6}}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProgressRecord(pathID, day, tc.stats)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRecord)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestProgressRecordAddScoredSample(t *testing.T) {
	t.Parallel()

	rec := &ProgressRecord{PathID: uuid.New(), Date: Day(time.Now())}
	rec.AddScoredSample(MustScore(6.0), map[FocusArea]Score{
		FocusLexicalResource: MustScore(5.0),
	})
	rec.AddScoredSample(MustScore(7.0), map[FocusArea]Score{
		FocusLexicalResource: MustScore(6.0),
		FocusTaskAchievement: MustScore(7.0),
	})

	require.NotNil(t, rec.AverageScore)
	assert.InDelta(t, 6.5, *rec.AverageScore, 1e-9)
	assert.InDelta(t, 5.5, rec.SubScores[FocusLexicalResource], 1e-9)
	assert.InDelta(t, 7.0, rec.SubScores[FocusTaskAchievement], 1e-9)
	assert.Equal(t, 2, rec.ScoredSamples)
	assert.Equal(t, 2, rec.EssaysCompleted)
}

func TestProgressRecordSubScoresWeightedPerArea(t *testing.T) {
	t.Parallel()

	manual := 6.0
	tests := []struct {
		name    string
		record  func() *ProgressRecord
		samples []Score
		want    float64
		count   int
	}{
		{
			name: "manual overall without the area",
			record: func() *ProgressRecord {
				return &ProgressRecord{PathID: uuid.New(), Date: Day(time.Now()), AverageScore: &manual, ScoredSamples: 1}
			},
			samples: []Score{MustScore(5.0), MustScore(7.0)},
			want:    6.0,
			count:   2,
		},
		{
			name: "record without per-area counts",
			record: func() *ProgressRecord {
				return &ProgressRecord{
					PathID: uuid.New(), Date: Day(time.Now()), AverageScore: &manual, ScoredSamples: 3,
					SubScores: map[FocusArea]float64{FocusLexicalResource: 5.0},
				}
			},
			samples: []Score{MustScore(7.0)},
			want:    6.0,
			count:   2,
		},
		{
			name: "fresh record",
			record: func() *ProgressRecord {
				return &ProgressRecord{PathID: uuid.New(), Date: Day(time.Now())}
			},
			samples: []Score{MustScore(5.0), MustScore(6.0), MustScore(7.0)},
			want:    6.0,
			count:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := tt.record()
			for _, s := range tt.samples {
				rec.AddScoredSample(MustScore(6.0), map[FocusArea]Score{FocusLexicalResource: s})
			}
			assert.InDelta(t, tt.want, rec.SubScores[FocusLexicalResource], 1e-9)
			assert.Equal(t, tt.count, rec.SubScoreSamples[FocusLexicalResource])
			assert.Equal(t, tt.count, rec.SampleCount(FocusLexicalResource))
		})
	}
}

func TestNewProgressRecordCountsSubScores(t *testing.T) {
	t.Parallel()

	avg := 6.0
	rec, err := NewProgressRecord(uuid.New(), time.Now(), ProgressStats{
		AverageScore: &avg,
		SubScores:    map[FocusArea]float64{FocusCoherenceCohesion: 6.5},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.SubScoreSamples[FocusCoherenceCohesion])

	clone := rec.Clone()
	clone.SubScoreSamples[FocusCoherenceCohesion] = 9
	assert.Equal(t, 1, rec.SubScoreSamples[FocusCoherenceCohesion])
}
