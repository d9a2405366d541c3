// Package memory provides an in-process store.PathStore. It backs the service
// tests and lets the server run without a database.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/store"
)

type progressKey struct {
	pathID uuid.UUID
	day    string
}

// PathStore keeps deep copies of every path and record behind a single lock,
// so callers never share memory with the store.
type PathStore struct {
	mu       sync.RWMutex
	paths    map[uuid.UUID]*domain.LearningPath
	progress map[progressKey]*domain.ProgressRecord
	logger   *slog.Logger
}

var _ store.PathStore = (*PathStore)(nil)

// NewPathStore creates an empty store.
func NewPathStore(log *slog.Logger) *PathStore {
	if log == nil {
		log = slog.Default()
	}
	return &PathStore{
		paths:    make(map[uuid.UUID]*domain.LearningPath),
		progress: make(map[progressKey]*domain.ProgressRecord),
		logger:   log.With(slog.String("component", "memory_path_store")),
	}
}

func keyFor(pathID uuid.UUID, day time.Time) progressKey {
	return progressKey{pathID: pathID, day: domain.Day(day).Format(domain.DateLayout)}
}

// activeFor returns the user's active path other than exclude. Caller holds mu.
func (s *PathStore) activeFor(userID, exclude uuid.UUID) *domain.LearningPath {
	for id, p := range s.paths {
		if id != exclude && p.UserID == userID && p.Status == domain.PathStatusActive {
			return p
		}
	}
	return nil
}

// Create implements store.PathStore.
func (s *PathStore) Create(ctx context.Context, path *domain.LearningPath) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.paths[path.ID]; exists {
		return store.NewStoreError("learning_path", "create", "path already exists", store.ErrDuplicate)
	}
	if path.Status == domain.PathStatusActive && s.activeFor(path.UserID, path.ID) != nil {
		return store.ErrActivePathExists
	}

	s.paths[path.ID] = path.Clone()
	log.Debug("path created",
		slog.String("path_id", path.ID.String()),
		slog.Int("phase_count", len(path.Phases)))
	return nil
}

// GetByID implements store.PathStore.
func (s *PathStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.paths[id]
	if !ok {
		return nil, store.ErrPathNotFound
	}
	return p.Clone(), nil
}

// GetActiveByUser implements store.PathStore.
func (s *PathStore) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.LearningPath, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := s.activeFor(userID, uuid.Nil)
	if p == nil {
		return nil, store.ErrPathNotFound
	}
	return p.Clone(), nil
}

// ListActiveIDs implements store.PathStore. IDs are sorted for stable output.
func (s *PathStore) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []uuid.UUID{}
	for id, p := range s.paths {
		if p.Status == domain.PathStatusActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// Update implements store.PathStore.
func (s *PathStore) Update(ctx context.Context, path *domain.LearningPath, record *domain.ProgressRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if record != nil {
		if record.PathID != path.ID {
			return store.NewStoreError("learning_path", "update", "record belongs to another path", store.ErrInvalidEntity)
		}
		if err := record.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.paths[path.ID]
	if !ok {
		return store.ErrPathNotFound
	}
	if current.Version != path.Version {
		log.Debug("stale path version",
			slog.String("path_id", path.ID.String()),
			slog.Int("expected", path.Version),
			slog.Int("stored", current.Version))
		return &domain.ConflictError{PathID: path.ID, ExpectedVersion: path.Version}
	}
	if path.Status == domain.PathStatusActive && s.activeFor(path.UserID, path.ID) != nil {
		return store.ErrActivePathExists
	}

	next := path.Clone()
	// Stored adjustments are append-only.
	next.Adjustments = mergeAdjustments(current.Adjustments, path.Adjustments)
	next.Version = path.Version + 1
	s.paths[path.ID] = next

	if record != nil {
		s.progress[keyFor(record.PathID, record.Date)] = record.Clone()
	}

	path.Version++
	return nil
}

func mergeAdjustments(stored, incoming []domain.PathAdjustment) []domain.PathAdjustment {
	out := make([]domain.PathAdjustment, 0, len(incoming))
	seen := make(map[uuid.UUID]bool, len(stored))
	for _, a := range stored {
		seen[a.ID] = true
		out = append(out, a)
	}
	for _, a := range incoming {
		if !seen[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// ListProgress implements store.PathStore.
func (s *PathStore) ListProgress(ctx context.Context, pathID uuid.UUID) ([]*domain.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*domain.ProgressRecord{}
	for k, r := range s.progress {
		if k.pathID == pathID {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetProgress implements store.PathStore.
func (s *PathStore) GetProgress(ctx context.Context, pathID uuid.UUID, day time.Time) (*domain.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.progress[keyFor(pathID, day)]
	if !ok {
		return nil, store.ErrProgressNotFound
	}
	return r.Clone(), nil
}
