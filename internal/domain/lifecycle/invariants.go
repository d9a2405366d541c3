package lifecycle

import (
	"fmt"

	"github.com/phrazzld/bandpath/internal/domain"
)

// CheckInvariants verifies the structural rules every stored path satisfies:
// 1-based consecutive sequences, contiguous date ranges spanning
// [StartDate, TargetDate], durations matching dates, non-decreasing
// expected scores, and statuses of the form Completed* InProgress? Pending*.
func CheckInvariants(path *domain.LearningPath) error {
	if len(path.Phases) == 0 {
		return fmt.Errorf("%w: path has no phases", ErrInvariantViolation)
	}

	first, last := path.Phases[0], path.Phases[len(path.Phases)-1]
	if !first.StartDate.Equal(path.StartDate) {
		return fmt.Errorf("%w: first phase starts %s, path starts %s", ErrInvariantViolation,
			first.StartDate.Format(domain.DateLayout), path.StartDate.Format(domain.DateLayout))
	}
	if !last.EndDate.Equal(path.TargetDate) {
		return fmt.Errorf("%w: last phase ends %s, target date is %s", ErrInvariantViolation,
			last.EndDate.Format(domain.DateLayout), path.TargetDate.Format(domain.DateLayout))
	}

	inProgress := 0
	stage := 0 // 0 completed, 1 in progress seen, 2 pending seen
	for i := range path.Phases {
		ph := &path.Phases[i]
		if ph.Sequence != i+1 {
			return fmt.Errorf("%w: phase %d has sequence %d", ErrInvariantViolation, i+1, ph.Sequence)
		}
		if i > 0 {
			prev := &path.Phases[i-1]
			if !prev.EndDate.Equal(ph.StartDate) {
				return fmt.Errorf("%w: gap or overlap between phases %d and %d",
					ErrInvariantViolation, prev.Sequence, ph.Sequence)
			}
			if ph.ExpectedScore < prev.ExpectedScore {
				return fmt.Errorf("%w: expected score drops at phase %d", ErrInvariantViolation, ph.Sequence)
			}
		}

		days := domain.DaysBetween(ph.StartDate, ph.EndDate)
		want := ph.DurationWeeks * 7
		if i < len(path.Phases)-1 && days != want {
			return fmt.Errorf("%w: phase %d spans %d days for %d weeks",
				ErrInvariantViolation, ph.Sequence, days, ph.DurationWeeks)
		}
		if i == len(path.Phases)-1 && (days <= 0 || days-want >= 7 || want-days >= 7) {
			return fmt.Errorf("%w: final phase spans %d days for %d weeks",
				ErrInvariantViolation, days, ph.DurationWeeks)
		}

		switch ph.Status {
		case domain.PhaseStatusCompleted:
			if stage > 0 {
				return fmt.Errorf("%w: completed phase %d follows an open phase",
					ErrInvariantViolation, ph.Sequence)
			}
		case domain.PhaseStatusInProgress:
			inProgress++
			if inProgress > 1 || stage > 1 {
				return fmt.Errorf("%w: phase %d cannot be in progress", ErrInvariantViolation, ph.Sequence)
			}
			stage = 1
		case domain.PhaseStatusPending:
			stage = 2
		}
	}

	if path.Status == domain.PathStatusCompleted && stage != 0 {
		return fmt.Errorf("%w: completed path has open phases", ErrInvariantViolation)
	}
	return nil
}
