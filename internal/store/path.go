package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
)

// PathStore persists learning paths together with their phases, adjustment
// history and daily progress records.
//
// A path is the unit of optimistic concurrency. Update succeeds only when the
// stored version equals path.Version; it then stores path.Version+1 and
// increments path.Version in place. A stale write returns a
// *domain.ConflictError and changes nothing.
type PathStore interface {
	// Create inserts a new path with its phases.
	// Returns ErrActivePathExists if the user already has an active path.
	Create(ctx context.Context, path *domain.LearningPath) error

	// GetByID loads a path with phases ordered by sequence and adjustments
	// ordered by creation. Returns ErrPathNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error)

	// GetActiveByUser loads the user's active path.
	// Returns ErrPathNotFound if the user has none.
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.LearningPath, error)

	// ListActiveIDs returns the IDs of every active path.
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	// Update writes the path's mutable fields, replaces its phases, appends any
	// adjustments not yet stored and, when record is non-nil, upserts that
	// day's progress record. All of it happens atomically.
	// Returns ErrPathNotFound if the path does not exist.
	Update(ctx context.Context, path *domain.LearningPath, record *domain.ProgressRecord) error

	// ListProgress returns the path's progress records ordered by date.
	ListProgress(ctx context.Context, pathID uuid.UUID) ([]*domain.ProgressRecord, error)

	// GetProgress returns the record for one day.
	// Returns ErrProgressNotFound if there is none.
	GetProgress(ctx context.Context, pathID uuid.UUID, day time.Time) (*domain.ProgressRecord, error)
}
