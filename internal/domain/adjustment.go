package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdjustmentReason explains why a plan was revised.
type AdjustmentReason string

// Adjustment reasons.
const (
	ReasonFasterProgress     AdjustmentReason = "faster_progress"
	ReasonSlowerProgress     AdjustmentReason = "slower_progress"
	ReasonWeakAreaIdentified AdjustmentReason = "weak_area_identified"
	ReasonScheduleChange     AdjustmentReason = "schedule_change"
	ReasonTargetChange       AdjustmentReason = "target_change"
)

// Automatic reports whether the reason comes from trend evaluation rather than a caller request.
func (r AdjustmentReason) Automatic() bool {
	switch r {
	case ReasonFasterProgress, ReasonSlowerProgress, ReasonWeakAreaIdentified:
		return true
	default:
		return false
	}
}

// PathAdjustment is an immutable audit record of one replan.
type PathAdjustment struct {
	ID     uuid.UUID        `json:"id"`
	PathID uuid.UUID        `json:"path_id"`
	Reason AdjustmentReason `json:"reason"`
	// Summary is shown to the learner as the rationale for the change.
	Summary        string    `json:"summary"`
	FocusArea      FocusArea `json:"focus_area,omitempty"`
	OldTargetDate  time.Time `json:"old_target_date"`
	NewTargetDate  time.Time `json:"new_target_date"`
	OldTargetScore Score     `json:"old_target_score"`
	NewTargetScore Score     `json:"new_target_score"`
	EffectiveOn    time.Time `json:"effective_on"`
	CreatedAt      time.Time `json:"created_at"`
}

// TargetScoreChanged reports whether the adjustment moved the target score.
func (a *PathAdjustment) TargetScoreChanged() bool {
	return a.OldTargetScore != a.NewTargetScore
}
