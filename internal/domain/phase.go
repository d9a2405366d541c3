package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhaseStatus is a phase's position in its lifecycle.
type PhaseStatus string

// Phase statuses. Transitions only move forward.
const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
)

// PhaseTopic is a topic reference assigned to a phase.
type PhaseTopic struct {
	TopicID     string `json:"topic_id"`
	Recommended bool   `json:"recommended"`
	Completed   bool   `json:"completed"`
}

// Phase is a contiguous, focus-tagged segment of a learning path.
// It covers the calendar days [StartDate, EndDate).
type Phase struct {
	ID            uuid.UUID    `json:"id"`
	PathID        uuid.UUID    `json:"path_id"`
	Sequence      int          `json:"sequence"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	DurationWeeks int          `json:"duration_weeks"`
	StartDate     time.Time    `json:"start_date"`
	EndDate       time.Time    `json:"end_date"`
	PrimaryFocus  FocusArea    `json:"primary_focus"`
	ExpectedScore Score        `json:"expected_score"`
	ActualScore   *Score       `json:"actual_score,omitempty"`
	Status        PhaseStatus  `json:"status"`
	Remediation   bool         `json:"remediation"`
	Topics        []PhaseTopic `json:"topics"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

// Contains reports whether day falls inside the phase's date range.
func (p *Phase) Contains(day time.Time) bool {
	day = Day(day)
	return !day.Before(p.StartDate) && day.Before(p.EndDate)
}

// Ended reports whether the phase's range is entirely before day.
func (p *Phase) Ended(day time.Time) bool {
	return !Day(day).Before(p.EndDate)
}

// UnfinishedTopics returns topics not yet completed, in phase order.
func (p *Phase) UnfinishedTopics() []PhaseTopic {
	var out []PhaseTopic
	for _, t := range p.Topics {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// AllTopicsCompleted reports whether every assigned topic is done.
// A phase without topics never reports true.
func (p *Phase) AllTopicsCompleted() bool {
	if len(p.Topics) == 0 {
		return false
	}
	for _, t := range p.Topics {
		if !t.Completed {
			return false
		}
	}
	return true
}

// Validate checks field-level constraints of a single phase.
func (p *Phase) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("phase.id", "cannot be empty", nil)
	}
	if p.Sequence < 1 {
		return NewValidationError("phase.sequence", "must be 1-based", nil)
	}
	if p.DurationWeeks < 1 {
		return NewValidationError("phase.duration_weeks", "must be at least 1", nil)
	}
	if !p.EndDate.After(p.StartDate) {
		return NewValidationError("phase.end_date", "must be after start_date", nil)
	}
	if !p.PrimaryFocus.Valid() {
		return NewValidationError("phase.primary_focus", "unknown focus area", nil)
	}
	if !p.ExpectedScore.Valid() {
		return NewValidationError("phase.expected_score", "out of range", ErrInvalidScore)
	}
	switch p.Status {
	case PhaseStatusPending, PhaseStatusInProgress, PhaseStatusCompleted:
	default:
		return NewValidationError("phase.status", "unknown status", nil)
	}
	return nil
}

// Clone returns a deep copy.
func (p Phase) Clone() Phase {
	out := p
	if p.ActualScore != nil {
		s := *p.ActualScore
		out.ActualScore = &s
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		out.CompletedAt = &t
	}
	if p.Topics != nil {
		out.Topics = make([]PhaseTopic, len(p.Topics))
		copy(out.Topics, p.Topics)
	}
	return out
}
