package grading

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sub     Submission
		wantErr error
	}{
		{"valid task2", Submission{Text: "Some argue...", Format: domain.FormatTask2}, nil},
		{"format optional", Submission{Text: "The chart shows..."}, nil},
		{"blank text", Submission{Text: "   ", Format: domain.FormatTask1}, ErrEmptySubmission},
		{"lesson cannot be graded", Submission{Text: "x", Format: domain.FormatLesson}, ErrGradingFailed},
		{"negative minutes", Submission{Text: "x", MinutesSpent: -1}, domain.ErrInvalidRecord},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.sub.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestResultValidate(t *testing.T) {
	t.Parallel()

	ok := &Result{
		Overall: domain.MustScore(6.5),
		SubScores: map[domain.FocusArea]domain.Score{
			domain.FocusLexicalResource: domain.MustScore(6.0),
		},
	}
	assert.NoError(t, ok.Validate())

	var nilResult *Result
	assert.ErrorIs(t, nilResult.Validate(), ErrInvalidResponse)

	overall := &Result{
		Overall:   domain.MustScore(6.5),
		SubScores: map[domain.FocusArea]domain.Score{domain.FocusOverall: domain.MustScore(6.5)},
	}
	assert.ErrorIs(t, overall.Validate(), ErrInvalidResponse)

	outOfRange := &Result{Overall: domain.Score(19)}
	assert.ErrorIs(t, outOfRange.Validate(), ErrInvalidResponse)
}

func TestApplyRunningMeans(t *testing.T) {
	t.Parallel()
	pathID := uuid.New()
	day := time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC)

	first, err := Apply(nil, pathID, day, &Result{
		Overall: domain.MustScore(6.0),
		SubScores: map[domain.FocusArea]domain.Score{
			domain.FocusLexicalResource:     domain.MustScore(5.0),
			domain.FocusGrammaticalAccuracy: domain.MustScore(6.5),
		},
	}, 40)
	require.NoError(t, err)
	assert.Equal(t, domain.Day(day), first.Date)
	assert.Equal(t, 1, first.ScoredSamples)
	assert.Equal(t, 1, first.EssaysCompleted)
	assert.Equal(t, 40, first.MinutesSpent)
	require.NotNil(t, first.AverageScore)
	assert.InDelta(t, 6.0, *first.AverageScore, 1e-9)

	second, err := Apply(first, pathID, day, &Result{
		Overall: domain.MustScore(7.0),
		SubScores: map[domain.FocusArea]domain.Score{
			domain.FocusLexicalResource: domain.MustScore(6.0),
		},
	}, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, second.ScoredSamples)
	assert.Equal(t, 2, second.EssaysCompleted)
	assert.Equal(t, 70, second.MinutesSpent)
	assert.InDelta(t, 6.5, *second.AverageScore, 1e-9)
	assert.InDelta(t, 5.5, second.SubScores[domain.FocusLexicalResource], 1e-9)
	assert.InDelta(t, 6.5, second.SubScores[domain.FocusGrammaticalAccuracy], 1e-9)

	third, err := Apply(second, pathID, day, &Result{
		Overall: domain.MustScore(7.0),
		SubScores: map[domain.FocusArea]domain.Score{
			domain.FocusGrammaticalAccuracy: domain.MustScore(7.5),
		},
	}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, third.SubScores[domain.FocusGrammaticalAccuracy], 1e-9, "area mean uses the area's own samples")
	assert.Equal(t, 2, third.SubScoreSamples[domain.FocusGrammaticalAccuracy])
	assert.Equal(t, 2, third.SubScoreSamples[domain.FocusLexicalResource])

	assert.Equal(t, 1, first.ScoredSamples, "input record is not mutated")

	_, err = Apply(first, pathID, day, &Result{Overall: domain.Score(-1)}, 0)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
