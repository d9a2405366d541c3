package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/planner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

// newPath builds the 5.5 -> 7.0 ten-week plan: phases of 5, 3 and 2 weeks.
func newPath(t *testing.T) *domain.LearningPath {
	t.Helper()
	target := domain.AddWeeks(start, 10)
	specs, err := planner.New().GeneratePlan(domain.MustScore(5.5), domain.MustScore(7.0), target, start)
	require.NoError(t, err)
	phases := planner.Materialize(specs, start, target, 1, nil)
	path, err := domain.NewLearningPath(uuid.New(), domain.MustScore(5.5), domain.MustScore(7.0),
		start, target, phases, start)
	require.NoError(t, err)
	require.Len(t, path.Phases, 3)
	return path
}

func statuses(path *domain.LearningPath) []domain.PhaseStatus {
	out := make([]domain.PhaseStatus, len(path.Phases))
	for i := range path.Phases {
		out[i] = path.Phases[i].Status
	}
	return out
}

func TestActivateStartsFirstPhase(t *testing.T) {
	t.Parallel()
	path := newPath(t)

	assert.Nil(t, CurrentPhase(path), "plan not started")
	assert.True(t, Activate(path, start))

	current := CurrentPhase(path)
	require.NotNil(t, current)
	assert.Equal(t, 1, current.Sequence)
	assert.Equal(t, []domain.PhaseStatus{
		domain.PhaseStatusInProgress, domain.PhaseStatusPending, domain.PhaseStatusPending,
	}, statuses(path))
	require.NoError(t, CheckInvariants(path))
}

func TestActivateIsIdempotent(t *testing.T) {
	t.Parallel()
	for _, offset := range []int{0, 20, 36, 60, 70, 90} {
		path := newPath(t)
		asOf := start.AddDate(0, 0, offset)

		Activate(path, asOf)
		snapshot := path.Clone()

		assert.False(t, Activate(path, asOf), "offset %d", offset)
		assert.Equal(t, snapshot, path, "offset %d", offset)
	}
}

func TestActivateSkipsThroughEndedPhases(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, start)

	// Week 6 is inside phase 2 (weeks 5-8).
	Activate(path, domain.AddWeeks(start, 6))

	assert.Equal(t, []domain.PhaseStatus{
		domain.PhaseStatusCompleted, domain.PhaseStatusInProgress, domain.PhaseStatusPending,
	}, statuses(path))
	assert.Nil(t, path.Phases[0].ActualScore, "time-passed completion carries no score")
	require.NotNil(t, path.Phases[0].CompletedAt)
	assert.Equal(t, path.Phases[0].EndDate, *path.Phases[0].CompletedAt)
	require.NoError(t, CheckInvariants(path))
}

func TestActivatePhaseBoundary(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, start)

	// EndDate is exclusive: on the boundary day the next phase takes over.
	Activate(path, path.Phases[0].EndDate)
	assert.Equal(t, domain.PhaseStatusCompleted, path.Phases[0].Status)
	assert.Equal(t, domain.PhaseStatusInProgress, path.Phases[1].Status)
}

func TestActivatePastTargetCompletesPath(t *testing.T) {
	t.Parallel()
	path := newPath(t)

	assert.True(t, Activate(path, path.TargetDate))
	assert.Equal(t, domain.PathStatusCompleted, path.Status)
	assert.Nil(t, CurrentPhase(path))
	require.NoError(t, CheckInvariants(path))

	snapshot := path.Clone()
	assert.False(t, Activate(path, path.TargetDate.AddDate(0, 0, 30)))
	assert.Equal(t, snapshot, path, "completed path is immutable")
}

func TestActivateIgnoresPausedPath(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	path.Status = domain.PathStatusPaused
	assert.False(t, Activate(path, start))
	assert.Nil(t, CurrentPhase(path))
}

func TestCompletePendingPhaseScenarioD(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, start)

	err := Complete(path, path.Phases[1].ID, domain.MustScore(6.5), start)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var transition *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, domain.PhaseStatusPending, transition.From)
	assert.Equal(t, domain.PhaseStatusPending, path.Phases[1].Status, "no partial mutation")
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, domain.AddWeeks(start, 6))

	err := Complete(path, path.Phases[0].ID, domain.MustScore(6.0), start)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "completed phases cannot complete again")

	err = Complete(path, uuid.New(), domain.MustScore(6.0), start)
	assert.ErrorIs(t, err, domain.ErrPhaseNotFound)

	Activate(path, path.TargetDate)
	err = Complete(path, path.Phases[2].ID, domain.MustScore(7.0), start)
	assert.ErrorIs(t, err, domain.ErrPathCompleted)
}

func TestCompleteEarlyAndStartNext(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, start)
	now := domain.AddWeeks(start, 2)

	require.NoError(t, Complete(path, path.Phases[0].ID, domain.MustScore(6.0), now))
	require.NotNil(t, path.Phases[0].ActualScore)
	assert.Equal(t, domain.MustScore(6.0), *path.Phases[0].ActualScore)
	assert.Nil(t, CurrentPhase(path))
	assert.Equal(t, domain.PathStatusActive, path.Status)

	// Activate alone waits for phase 2's start date.
	assert.False(t, Activate(path, now))

	assert.True(t, StartNext(path))
	assert.Equal(t, 2, CurrentPhase(path).Sequence)
	assert.False(t, StartNext(path), "already in progress")
	require.NoError(t, CheckInvariants(path))

	// Once phase 2's range arrives nothing changes, and it ends on schedule.
	assert.False(t, Activate(path, path.Phases[1].StartDate))
	Activate(path, path.Phases[1].EndDate)
	assert.Equal(t, 3, CurrentPhase(path).Sequence)
}

func TestStartNextRequiresExplicitCompletion(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	assert.False(t, StartNext(path), "first phase starts by date only")
	assert.Equal(t, domain.PhaseStatusPending, path.Phases[0].Status)
}

func TestCompleteLastPhaseCompletesPath(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	Activate(path, path.Phases[2].StartDate)

	require.NoError(t, Complete(path, path.Phases[2].ID, domain.MustScore(7.0), path.Phases[2].StartDate))
	assert.Equal(t, domain.PathStatusCompleted, path.Status)
	require.NoError(t, CheckInvariants(path))
}

func TestNeverMoreThanOneInProgress(t *testing.T) {
	t.Parallel()
	path := newPath(t)
	for day := 0; day <= 75; day++ {
		Activate(path, start.AddDate(0, 0, day))
		if day%9 == 0 {
			if current := CurrentPhase(path); current != nil {
				require.NoError(t, Complete(path, current.ID, current.ExpectedScore, start.AddDate(0, 0, day)))
				StartNext(path)
			}
		}
		require.NoError(t, CheckInvariants(path), "day %d", day)

		count := 0
		for _, ph := range path.Phases {
			if ph.Status == domain.PhaseStatusInProgress {
				count++
			}
		}
		assert.LessOrEqual(t, count, 1)
	}
}

func TestCheckInvariantsDetectsViolations(t *testing.T) {
	t.Parallel()

	path := newPath(t)
	path.Phases[0].Status = domain.PhaseStatusInProgress
	path.Phases[1].Status = domain.PhaseStatusInProgress
	assert.ErrorIs(t, CheckInvariants(path), ErrInvariantViolation)

	path = newPath(t)
	path.Phases[1].StartDate = path.Phases[1].StartDate.AddDate(0, 0, 1)
	assert.ErrorIs(t, CheckInvariants(path), ErrInvariantViolation)

	path = newPath(t)
	path.Phases[2].ExpectedScore = domain.MustScore(5.0)
	assert.ErrorIs(t, CheckInvariants(path), ErrInvariantViolation)

	path = newPath(t)
	path.Phases[1].Status = domain.PhaseStatusCompleted
	assert.ErrorIs(t, CheckInvariants(path), ErrInvariantViolation)
}
