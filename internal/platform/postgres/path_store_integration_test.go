//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/planner"
	"github.com/phrazzld/bandpath/internal/platform/postgres"
	"github.com/phrazzld/bandpath/internal/store"
	"github.com/phrazzld/bandpath/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plannedPath(t *testing.T, userID uuid.UUID) *domain.LearningPath {
	t.Helper()
	start := domain.Day(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	target := start.AddDate(0, 0, 70)
	specs, err := planner.New().GeneratePlan(domain.MustScore(5.5), domain.MustScore(7.0), target, start)
	require.NoError(t, err)
	phases := planner.Materialize(specs, start, target, 1, nil)
	path, err := domain.NewLearningPath(userID, domain.MustScore(5.5), domain.MustScore(7.0), start, target, phases, time.Now())
	require.NoError(t, err)
	return path
}

func TestPostgresPathStoreRoundTrip(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresPathStore(tx, nil)
		path := plannedPath(t, uuid.New())

		require.NoError(t, s.Create(ctx, path))

		loaded, err := s.GetByID(ctx, path.ID)
		require.NoError(t, err)
		assert.Equal(t, path.TargetDate, loaded.TargetDate)
		assert.Equal(t, path.TargetScore, loaded.TargetScore)
		require.Len(t, loaded.Phases, len(path.Phases))
		for i := range path.Phases {
			assert.Equal(t, path.Phases[i].ID, loaded.Phases[i].ID)
			assert.Equal(t, path.Phases[i].StartDate, loaded.Phases[i].StartDate)
			assert.Equal(t, path.Phases[i].ExpectedScore, loaded.Phases[i].ExpectedScore)
		}

		active, err := s.GetActiveByUser(ctx, path.UserID)
		require.NoError(t, err)
		assert.Equal(t, path.ID, active.ID)

		ids, err := s.ListActiveIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, path.ID)

		// Update with a progress record, then a stale write.
		avg := 6.0
		rec := &domain.ProgressRecord{
			PathID:        path.ID,
			Date:          path.StartDate,
			AverageScore:  &avg,
			SubScores:     map[domain.FocusArea]float64{domain.FocusLexicalResource: 5.5},
			ScoredSamples: 1,
		}
		loaded.Phases[0].Status = domain.PhaseStatusInProgress
		require.NoError(t, s.Update(ctx, loaded, rec))
		assert.Equal(t, 2, loaded.Version)

		stale := path.Clone()
		assert.ErrorIs(t, s.Update(ctx, stale, nil), domain.ErrConflict)

		got, err := s.GetProgress(ctx, path.ID, path.StartDate)
		require.NoError(t, err)
		require.NotNil(t, got.AverageScore)
		assert.InDelta(t, 6.0, *got.AverageScore, 1e-9)
		assert.InDelta(t, 5.5, got.SubScores[domain.FocusLexicalResource], 1e-9)

		records, err := s.ListProgress(ctx, path.ID)
		require.NoError(t, err)
		assert.Len(t, records, 1)

		_, err = s.GetProgress(ctx, path.ID, path.StartDate.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, store.ErrProgressNotFound)
	})
}

func TestPostgresPathStoreOneActivePerUser(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresPathStore(tx, nil)
		userID := uuid.New()

		require.NoError(t, s.Create(ctx, plannedPath(t, userID)))
		err := s.Create(ctx, plannedPath(t, userID))
		assert.ErrorIs(t, err, store.ErrActivePathExists)
	})
}

func TestPostgresPathStoreAdjustmentsAreAppendOnly(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		s := postgres.NewPostgresPathStore(tx, nil)
		path := plannedPath(t, uuid.New())
		require.NoError(t, s.Create(ctx, path))

		adj := domain.PathAdjustment{
			ID:             uuid.New(),
			PathID:         path.ID,
			Reason:         domain.ReasonScheduleChange,
			Summary:        "moved",
			OldTargetDate:  path.TargetDate,
			NewTargetDate:  path.TargetDate.AddDate(0, 0, 7),
			OldTargetScore: path.TargetScore,
			NewTargetScore: path.TargetScore,
			EffectiveOn:    path.StartDate,
			CreatedAt:      time.Now().UTC(),
		}
		path.Adjustments = append(path.Adjustments, adj)
		require.NoError(t, s.Update(ctx, path, nil))

		path.Adjustments[0].Summary = "rewritten"
		require.NoError(t, s.Update(ctx, path, nil))

		loaded, err := s.GetByID(ctx, path.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Adjustments, 1)
		assert.Equal(t, "moved", loaded.Adjustments[0].Summary)
	})
}
