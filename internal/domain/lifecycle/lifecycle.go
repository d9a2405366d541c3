// Package lifecycle is the single authority for phase status transitions.
// Phases move Pending -> InProgress -> Completed and never backward; all
// other packages read status, only this one writes it.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
)

// ErrInvariantViolation is returned by CheckInvariants.
var ErrInvariantViolation = errors.New("learning path invariant violated")

// Activate applies the passage of time up to asOf. Phases whose range has
// ended are completed without an actual score, then the first pending phase
// whose range contains asOf starts if nothing else is in progress. When every
// phase is completed the path completes. It reports whether anything changed;
// a second call for the same date is a no-op. Paused and completed paths are
// left untouched.
func Activate(path *domain.LearningPath, asOf time.Time) bool {
	if path.Status != domain.PathStatusActive {
		return false
	}
	day := domain.Day(asOf)
	changed := false

	for i := range path.Phases {
		ph := &path.Phases[i]
		if ph.Status != domain.PhaseStatusCompleted && ph.Ended(day) {
			end := ph.EndDate
			ph.Status = domain.PhaseStatusCompleted
			ph.CompletedAt = &end
			changed = true
		}
	}

	if next := firstOpen(path); next >= 0 {
		ph := &path.Phases[next]
		if ph.Status == domain.PhaseStatusPending && ph.Contains(day) {
			ph.Status = domain.PhaseStatusInProgress
			changed = true
		}
	} else if completeIfDone(path) {
		changed = true
	}
	return changed
}

// Complete finishes the in-progress phase phaseID with an actual score.
// Completing the final phase completes the path.
func Complete(path *domain.LearningPath, phaseID uuid.UUID, actual domain.Score, at time.Time) error {
	if path.IsCompleted() {
		return domain.ErrPathCompleted
	}
	idx := path.PhaseByID(phaseID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrPhaseNotFound, phaseID)
	}
	ph := &path.Phases[idx]
	if ph.Status != domain.PhaseStatusInProgress {
		return &domain.InvalidTransitionError{
			PhaseID: ph.ID,
			From:    ph.Status,
			To:      domain.PhaseStatusCompleted,
		}
	}
	if !actual.Valid() {
		return fmt.Errorf("%w: actual score %d", domain.ErrInvalidScore, actual)
	}

	score := actual
	completedAt := at.UTC()
	ph.ActualScore = &score
	ph.CompletedAt = &completedAt
	ph.Status = domain.PhaseStatusCompleted

	if idx == len(path.Phases)-1 {
		completeIfDone(path)
	}
	return nil
}

// StartNext starts the phase after one that was completed early, ahead of
// its scheduled start date. It does nothing while a phase is in progress,
// or when the previous phase was skipped through rather than completed.
func StartNext(path *domain.LearningPath) bool {
	if path.Status != domain.PathStatusActive {
		return false
	}
	next := firstOpen(path)
	if next < 0 || path.Phases[next].Status != domain.PhaseStatusPending {
		return false
	}
	if next == 0 {
		return false
	}
	prev := path.Phases[next-1]
	if prev.Status != domain.PhaseStatusCompleted || prev.ActualScore == nil {
		return false
	}
	path.Phases[next].Status = domain.PhaseStatusInProgress
	return true
}

// CurrentPhase returns a copy of the in-progress phase, or nil when the plan
// has not started, is between phases, or has finished.
func CurrentPhase(path *domain.LearningPath) *domain.Phase {
	for i := range path.Phases {
		if path.Phases[i].Status == domain.PhaseStatusInProgress {
			ph := path.Phases[i].Clone()
			return &ph
		}
	}
	return nil
}

// CurrentIndex returns the index of the in-progress phase, or -1.
func CurrentIndex(path *domain.LearningPath) int {
	for i := range path.Phases {
		if path.Phases[i].Status == domain.PhaseStatusInProgress {
			return i
		}
	}
	return -1
}

// firstOpen returns the index of the first phase not yet completed, or -1.
func firstOpen(path *domain.LearningPath) int {
	for i := range path.Phases {
		if path.Phases[i].Status != domain.PhaseStatusCompleted {
			return i
		}
	}
	return -1
}

func completeIfDone(path *domain.LearningPath) bool {
	if path.Status == domain.PathStatusCompleted || firstOpen(path) >= 0 {
		return false
	}
	path.Status = domain.PathStatusCompleted
	return true
}
