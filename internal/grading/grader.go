package grading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
)

// Submission is one piece of writing sent for grading.
type Submission struct {
	// Prompt is the task question the learner answered. Optional.
	Prompt string `json:"prompt,omitempty"`

	// Text is the learner's answer.
	Text string `json:"text" validate:"required"`

	// Format is the task format, usually task1 or task2.
	Format domain.TopicFormat `json:"format"`

	// MinutesSpent is added to the day's practice time.
	MinutesSpent int `json:"minutes_spent,omitempty" validate:"gte=0"`
}

// Validate checks that the submission can be graded.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptySubmission
	}
	switch s.Format {
	case "", domain.FormatTask1, domain.FormatTask2, domain.FormatMock:
	default:
		return fmt.Errorf("%w: format %q cannot be graded", ErrGradingFailed, s.Format)
	}
	if s.MinutesSpent < 0 {
		return domain.NewValidationError("submission.minutes_spent", "cannot be negative", domain.ErrInvalidRecord)
	}
	return nil
}

// Result is a grader's verdict for one submission.
type Result struct {
	Overall   domain.Score                      `json:"overall"`
	SubScores map[domain.FocusArea]domain.Score `json:"sub_scores"`
	Feedback  string                            `json:"feedback,omitempty"`
}

// Validate checks that every score is a band value and that sub-scores only
// name foundational areas.
func (r *Result) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidResponse)
	}
	if !r.Overall.Valid() {
		return fmt.Errorf("%w: overall score %s out of range", ErrInvalidResponse, r.Overall)
	}
	for area, s := range r.SubScores {
		if area == domain.FocusOverall || !area.Valid() {
			return fmt.Errorf("%w: unknown focus area %q", ErrInvalidResponse, area)
		}
		if !s.Valid() {
			return fmt.Errorf("%w: %s score %s out of range", ErrInvalidResponse, area, s)
		}
	}
	return nil
}

// Grader scores written work against the band descriptors.
type Grader interface {
	// Grade returns band scores for the submission. Implementations return
	// ErrEmptySubmission for blank text and wrap provider failures in one of
	// the package errors.
	Grade(ctx context.Context, sub Submission) (*Result, error)
}

// Apply folds a graded result into a day's record. A nil record starts a
// new one for pathID on day. The record's average stays a running mean over
// ScoredSamples and each sub-score a mean over that area's own samples.
func Apply(record *domain.ProgressRecord, pathID uuid.UUID, day time.Time, res *Result, minutes int) (*domain.ProgressRecord, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if record == nil {
		record = &domain.ProgressRecord{PathID: pathID, Date: domain.Day(day)}
	} else {
		record = record.Clone()
	}
	record.AddScoredSample(res.Overall, res.SubScores)
	if minutes > 0 {
		record.MinutesSpent += minutes
	}
	record.UpdatedAt = time.Now().UTC()
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}
