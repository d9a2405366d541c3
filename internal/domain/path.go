package domain

import (
	"time"

	"github.com/google/uuid"
)

// PathStatus is the lifecycle state of a learning path.
type PathStatus string

// Path statuses. Completed is terminal.
const (
	PathStatusActive    PathStatus = "active"
	PathStatusPaused    PathStatus = "paused"
	PathStatusCompleted PathStatus = "completed"
)

// MaxScoreGap is the largest target gap a single plan may cover, in bands.
const MaxScoreGap = 6.0

// LearningPath is a user's plan from their current score to a target score by a target date.
type LearningPath struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// StartingScore is the score the path was created with; CurrentScore moves with replans.
	StartingScore          Score            `json:"starting_score"`
	CurrentScore           Score            `json:"current_score"`
	TargetScore            Score            `json:"target_score"`
	StartDate              time.Time        `json:"start_date"`
	TargetDate             time.Time        `json:"target_date"`
	EstimatedDurationWeeks int              `json:"estimated_duration_weeks"`
	Status                 PathStatus       `json:"status"`
	Version                int              `json:"version"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
	Phases                 []Phase          `json:"phases"`
	Adjustments            []PathAdjustment `json:"adjustments"`
}

// NewLearningPath assembles a path from planned phases.
// The phases must already carry sequence numbers and dates.
func NewLearningPath(
	userID uuid.UUID,
	currentScore, targetScore Score,
	startDate, targetDate time.Time,
	phases []Phase,
	now time.Time,
) (*LearningPath, error) {
	path := &LearningPath{
		ID:            uuid.New(),
		UserID:        userID,
		StartingScore: currentScore,
		CurrentScore:  currentScore,
		TargetScore:   targetScore,
		StartDate:     Day(startDate),
		TargetDate:    Day(targetDate),
		Status:        PathStatusActive,
		Version:       1,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
		Adjustments:   []PathAdjustment{},
	}
	path.SetPhases(phases)

	if err := path.Validate(); err != nil {
		return nil, err
	}
	return path, nil
}

// SetPhases replaces the phase list, stamping path ownership and recomputing duration.
func (p *LearningPath) SetPhases(phases []Phase) {
	p.Phases = phases
	total := 0
	for i := range p.Phases {
		p.Phases[i].PathID = p.ID
		total += p.Phases[i].DurationWeeks
	}
	p.EstimatedDurationWeeks = total
}

// Validate checks field-level constraints. Structural invariants across
// phases are checked by the lifecycle package.
func (p *LearningPath) Validate() error {
	if p.ID == uuid.Nil {
		return NewValidationError("path.id", "cannot be empty", nil)
	}
	if p.UserID == uuid.Nil {
		return NewValidationError("path.user_id", "cannot be empty", nil)
	}
	if !p.CurrentScore.Valid() || !p.TargetScore.Valid() {
		return NewValidationError("path.score", "out of range", ErrInvalidScore)
	}
	if !p.TargetDate.After(p.StartDate) {
		return NewValidationError("path.target_date", "must be after start_date", ErrInvalidTarget)
	}
	switch p.Status {
	case PathStatusActive, PathStatusPaused, PathStatusCompleted:
	default:
		return NewValidationError("path.status", "unknown status", nil)
	}
	if len(p.Phases) == 0 {
		return NewValidationError("path.phases", "at least one phase is required", nil)
	}
	for i := range p.Phases {
		if err := p.Phases[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PhaseByID returns the index of the phase with id, or -1.
func (p *LearningPath) PhaseByID(id uuid.UUID) int {
	for i := range p.Phases {
		if p.Phases[i].ID == id {
			return i
		}
	}
	return -1
}

// IsCompleted reports whether the path is in its terminal state.
func (p *LearningPath) IsCompleted() bool {
	return p.Status == PathStatusCompleted
}

// LastAdjustment returns the most recent adjustment with reason, or nil.
func (p *LearningPath) LastAdjustment(reasons ...AdjustmentReason) *PathAdjustment {
	for i := len(p.Adjustments) - 1; i >= 0; i-- {
		if len(reasons) == 0 {
			return &p.Adjustments[i]
		}
		for _, r := range reasons {
			if p.Adjustments[i].Reason == r {
				return &p.Adjustments[i]
			}
		}
	}
	return nil
}

// Clone returns a deep copy so callers can build a revision without touching the original.
func (p *LearningPath) Clone() *LearningPath {
	out := *p
	out.Phases = make([]Phase, len(p.Phases))
	for i := range p.Phases {
		out.Phases[i] = p.Phases[i].Clone()
	}
	if p.Adjustments != nil {
		out.Adjustments = make([]PathAdjustment, len(p.Adjustments))
		copy(out.Adjustments, p.Adjustments)
	}
	return &out
}
