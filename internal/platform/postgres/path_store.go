package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/store"
)

// PostgresPathStore implements store.PathStore on PostgreSQL.
type PostgresPathStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.PathStore = (*PostgresPathStore)(nil)

// NewPostgresPathStore creates a path store. When db is a *sql.DB, multi-table
// writes run in their own transaction; when it is a *sql.Tx they join it.
func NewPostgresPathStore(db store.DBTX, logger *slog.Logger) *PostgresPathStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPathStore{
		db:     db,
		logger: logger.With(slog.String("component", "path_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *PostgresPathStore) WithTx(tx *sql.Tx) *PostgresPathStore {
	return &PostgresPathStore{db: tx, logger: s.logger}
}

func (s *PostgresPathStore) inTx(ctx context.Context, fn func(q store.DBTX) error) error {
	if b, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransaction(ctx, b, func(ctx context.Context, tx *sql.Tx) error {
			return fn(tx)
		})
	}
	return fn(s.db)
}

// Create implements store.PathStore.
func (s *PostgresPathStore) Create(ctx context.Context, path *domain.LearningPath) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		log.WarnContext(ctx, "path validation failed during create",
			slog.String("error", err.Error()),
			slog.String("path_id", path.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := s.inTx(ctx, func(q store.DBTX) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO learning_paths (
				id, user_id, starting_score, current_score, target_score,
				start_date, target_date, estimated_duration_weeks, status, version,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			path.ID,
			path.UserID,
			path.StartingScore.Halves(),
			path.CurrentScore.Halves(),
			path.TargetScore.Halves(),
			dateArg(path.StartDate),
			dateArg(path.TargetDate),
			path.EstimatedDurationWeeks,
			string(path.Status),
			path.Version,
			path.CreatedAt,
			path.UpdatedAt,
		)
		if err != nil {
			return store.NewStoreError("learning_path", "create", "failed to insert path", MapError(err))
		}
		if err := insertPhases(ctx, q, path.Phases); err != nil {
			return err
		}
		return insertAdjustments(ctx, q, path.Adjustments)
	})
	if err != nil {
		log.ErrorContext(ctx, "failed to create learning path",
			slog.String("error", err.Error()),
			slog.String("path_id", path.ID.String()),
			slog.String("user_id", path.UserID.String()))
		return err
	}

	log.InfoContext(ctx, "learning path created",
		slog.String("path_id", path.ID.String()),
		slog.Int("phases", len(path.Phases)))
	return nil
}

const selectPath = `
	SELECT id, user_id, starting_score, current_score, target_score,
		start_date, target_date, estimated_duration_weeks, status, version,
		created_at, updated_at
	FROM learning_paths`

// GetByID implements store.PathStore.
func (s *PostgresPathStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	path, err := s.loadPath(ctx, selectPath+` WHERE id = $1`, id)
	if err != nil {
		if !errors.Is(err, store.ErrPathNotFound) {
			log.ErrorContext(ctx, "failed to load learning path",
				slog.String("error", err.Error()),
				slog.String("path_id", id.String()))
		}
		return nil, err
	}
	return path, nil
}

// GetActiveByUser implements store.PathStore.
func (s *PostgresPathStore) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	path, err := s.loadPath(ctx, selectPath+` WHERE user_id = $1 AND status = 'active'`, userID)
	if err != nil {
		if !errors.Is(err, store.ErrPathNotFound) {
			log.ErrorContext(ctx, "failed to load active learning path",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, err
	}
	return path, nil
}

func (s *PostgresPathStore) loadPath(ctx context.Context, query string, arg any) (*domain.LearningPath, error) {
	var (
		p                         domain.LearningPath
		starting, current, target int
		status                    string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID,
		&p.UserID,
		&starting,
		&current,
		&target,
		&p.StartDate,
		&p.TargetDate,
		&p.EstimatedDurationWeeks,
		&status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPathNotFound
		}
		return nil, store.NewStoreError("learning_path", "get", "failed to scan path", MapError(err))
	}
	p.StartingScore = domain.Score(starting)
	p.CurrentScore = domain.Score(current)
	p.TargetScore = domain.Score(target)
	p.StartDate = domain.Day(p.StartDate)
	p.TargetDate = domain.Day(p.TargetDate)
	p.Status = domain.PathStatus(status)

	if p.Phases, err = s.loadPhases(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.Adjustments, err = s.loadAdjustments(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresPathStore) loadPhases(ctx context.Context, pathID uuid.UUID) ([]domain.Phase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path_id, sequence, title, description, duration_weeks,
			start_date, end_date, primary_focus, expected_score, actual_score,
			status, remediation, topics, completed_at
		FROM phases
		WHERE path_id = $1
		ORDER BY sequence`, pathID)
	if err != nil {
		return nil, store.NewStoreError("phase", "list", "failed to query phases", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	phases := []domain.Phase{}
	for rows.Next() {
		var (
			ph          domain.Phase
			focus       string
			status      string
			expected    int
			actual      sql.NullInt32
			topics      []byte
			completedAt sql.NullTime
		)
		if err := rows.Scan(
			&ph.ID,
			&ph.PathID,
			&ph.Sequence,
			&ph.Title,
			&ph.Description,
			&ph.DurationWeeks,
			&ph.StartDate,
			&ph.EndDate,
			&focus,
			&expected,
			&actual,
			&status,
			&ph.Remediation,
			&topics,
			&completedAt,
		); err != nil {
			return nil, store.NewStoreError("phase", "list", "failed to scan phase", MapError(err))
		}
		ph.StartDate = domain.Day(ph.StartDate)
		ph.EndDate = domain.Day(ph.EndDate)
		ph.PrimaryFocus = domain.FocusArea(focus)
		ph.ExpectedScore = domain.Score(expected)
		ph.Status = domain.PhaseStatus(status)
		if actual.Valid {
			score := domain.Score(actual.Int32)
			ph.ActualScore = &score
		}
		if completedAt.Valid {
			at := completedAt.Time.UTC()
			ph.CompletedAt = &at
		}
		ph.Topics = []domain.PhaseTopic{}
		if len(topics) > 0 {
			if err := json.Unmarshal(topics, &ph.Topics); err != nil {
				return nil, store.NewStoreError("phase", "list", "failed to decode topics", err)
			}
		}
		phases = append(phases, ph)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("phase", "list", "failed to iterate phases", MapError(err))
	}
	return phases, nil
}

func (s *PostgresPathStore) loadAdjustments(ctx context.Context, pathID uuid.UUID) ([]domain.PathAdjustment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path_id, reason, summary, focus_area,
			old_target_date, new_target_date, old_target_score, new_target_score,
			effective_on, created_at
		FROM path_adjustments
		WHERE path_id = $1
		ORDER BY created_at, id`, pathID)
	if err != nil {
		return nil, store.NewStoreError("path_adjustment", "list", "failed to query adjustments", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	adjustments := []domain.PathAdjustment{}
	for rows.Next() {
		var (
			a                  domain.PathAdjustment
			reason             string
			focus              sql.NullString
			oldScore, newScore int
		)
		if err := rows.Scan(
			&a.ID,
			&a.PathID,
			&reason,
			&a.Summary,
			&focus,
			&a.OldTargetDate,
			&a.NewTargetDate,
			&oldScore,
			&newScore,
			&a.EffectiveOn,
			&a.CreatedAt,
		); err != nil {
			return nil, store.NewStoreError("path_adjustment", "list", "failed to scan adjustment", MapError(err))
		}
		a.Reason = domain.AdjustmentReason(reason)
		a.FocusArea = domain.FocusArea(focus.String)
		a.OldTargetDate = domain.Day(a.OldTargetDate)
		a.NewTargetDate = domain.Day(a.NewTargetDate)
		a.EffectiveOn = domain.Day(a.EffectiveOn)
		a.OldTargetScore = domain.Score(oldScore)
		a.NewTargetScore = domain.Score(newScore)
		a.CreatedAt = a.CreatedAt.UTC()
		adjustments = append(adjustments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("path_adjustment", "list", "failed to iterate adjustments", MapError(err))
	}
	return adjustments, nil
}

// ListActiveIDs implements store.PathStore.
func (s *PostgresPathStore) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM learning_paths WHERE status = 'active' ORDER BY created_at, id`)
	if err != nil {
		log.ErrorContext(ctx, "failed to list active paths", slog.String("error", err.Error()))
		return nil, store.NewStoreError("learning_path", "list", "failed to query active paths", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, store.NewStoreError("learning_path", "list", "failed to scan id", MapError(err))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("learning_path", "list", "failed to iterate ids", MapError(err))
	}
	return ids, nil
}

// Update implements store.PathStore.
func (s *PostgresPathStore) Update(ctx context.Context, path *domain.LearningPath, record *domain.ProgressRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := path.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if record != nil {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	now := time.Now().UTC()
	err := s.inTx(ctx, func(q store.DBTX) error {
		result, err := q.ExecContext(ctx, `
			UPDATE learning_paths
			SET current_score = $2,
				target_score = $3,
				target_date = $4,
				estimated_duration_weeks = $5,
				status = $6,
				version = version + 1,
				updated_at = $7
			WHERE id = $1 AND version = $8`,
			path.ID,
			path.CurrentScore.Halves(),
			path.TargetScore.Halves(),
			dateArg(path.TargetDate),
			path.EstimatedDurationWeeks,
			string(path.Status),
			now,
			path.Version,
		)
		if err != nil {
			return store.NewStoreError("learning_path", "update", "failed to update path", MapError(err))
		}
		if err := CheckRowsAffected(result, nil); err != nil {
			return s.versionMiss(ctx, q, path)
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM phases WHERE path_id = $1`, path.ID); err != nil {
			return store.NewStoreError("phase", "update", "failed to clear phases", MapError(err))
		}
		if err := insertPhases(ctx, q, path.Phases); err != nil {
			return err
		}
		if err := insertAdjustments(ctx, q, path.Adjustments); err != nil {
			return err
		}
		if record != nil {
			return upsertProgress(ctx, q, record)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			log.ErrorContext(ctx, "failed to update learning path",
				slog.String("error", err.Error()),
				slog.String("path_id", path.ID.String()))
		}
		return err
	}

	path.Version++
	path.UpdatedAt = now
	log.DebugContext(ctx, "learning path updated",
		slog.String("path_id", path.ID.String()),
		slog.Int("version", path.Version))
	return nil
}

// versionMiss distinguishes a missing path from a stale version.
func (s *PostgresPathStore) versionMiss(ctx context.Context, q store.DBTX, path *domain.LearningPath) error {
	var exists bool
	if err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM learning_paths WHERE id = $1)`, path.ID).Scan(&exists); err != nil {
		return store.NewStoreError("learning_path", "update", "failed to check path", MapError(err))
	}
	if !exists {
		return store.ErrPathNotFound
	}
	return &domain.ConflictError{PathID: path.ID, ExpectedVersion: path.Version}
}

func insertPhases(ctx context.Context, q store.DBTX, phases []domain.Phase) error {
	for _, ph := range phases {
		topics := ph.Topics
		if topics == nil {
			topics = []domain.PhaseTopic{}
		}
		topicsJSON, err := json.Marshal(topics)
		if err != nil {
			return store.NewStoreError("phase", "create", "failed to encode topics", err)
		}

		var actual sql.NullInt32
		if ph.ActualScore != nil {
			actual = sql.NullInt32{Int32: int32(ph.ActualScore.Halves()), Valid: true}
		}
		var completedAt sql.NullTime
		if ph.CompletedAt != nil {
			completedAt = sql.NullTime{Time: *ph.CompletedAt, Valid: true}
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO phases (
				id, path_id, sequence, title, description, duration_weeks,
				start_date, end_date, primary_focus, expected_score, actual_score,
				status, remediation, topics, completed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			ph.ID,
			ph.PathID,
			ph.Sequence,
			ph.Title,
			ph.Description,
			ph.DurationWeeks,
			dateArg(ph.StartDate),
			dateArg(ph.EndDate),
			string(ph.PrimaryFocus),
			ph.ExpectedScore.Halves(),
			actual,
			string(ph.Status),
			ph.Remediation,
			string(topicsJSON),
			completedAt,
		)
		if err != nil {
			return store.NewStoreError("phase", "create", "failed to insert phase", MapError(err))
		}
	}
	return nil
}

// insertAdjustments appends adjustments; rows already stored are left as
// they are, so history is never rewritten.
func insertAdjustments(ctx context.Context, q store.DBTX, adjustments []domain.PathAdjustment) error {
	for _, a := range adjustments {
		var focus sql.NullString
		if a.FocusArea != "" {
			focus = sql.NullString{String: string(a.FocusArea), Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO path_adjustments (
				id, path_id, reason, summary, focus_area,
				old_target_date, new_target_date, old_target_score, new_target_score,
				effective_on, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			a.ID,
			a.PathID,
			string(a.Reason),
			a.Summary,
			focus,
			dateArg(a.OldTargetDate),
			dateArg(a.NewTargetDate),
			a.OldTargetScore.Halves(),
			a.NewTargetScore.Halves(),
			dateArg(a.EffectiveOn),
			a.CreatedAt,
		)
		if err != nil {
			return store.NewStoreError("path_adjustment", "create", "failed to insert adjustment", MapError(err))
		}
	}
	return nil
}

func upsertProgress(ctx context.Context, q store.DBTX, rec *domain.ProgressRecord) error {
	var avg sql.NullFloat64
	if rec.AverageScore != nil {
		avg = sql.NullFloat64{Float64: *rec.AverageScore, Valid: true}
	}
	var sub sql.NullString
	if len(rec.SubScores) > 0 {
		b, err := json.Marshal(rec.SubScores)
		if err != nil {
			return store.NewStoreError("progress_record", "upsert", "failed to encode sub-scores", err)
		}
		sub = sql.NullString{String: string(b), Valid: true}
	}
	var subSamples sql.NullString
	if len(rec.SubScoreSamples) > 0 {
		b, err := json.Marshal(rec.SubScoreSamples)
		if err != nil {
			return store.NewStoreError("progress_record", "upsert", "failed to encode sub-score samples", err)
		}
		subSamples = sql.NullString{String: string(b), Valid: true}
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO progress_records (
			path_id, date, essays_completed, lessons_completed, drills_completed,
			minutes_spent, average_score, sub_scores, scored_samples, sub_score_samples,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (path_id, date) DO UPDATE SET
			essays_completed = EXCLUDED.essays_completed,
			lessons_completed = EXCLUDED.lessons_completed,
			drills_completed = EXCLUDED.drills_completed,
			minutes_spent = EXCLUDED.minutes_spent,
			average_score = EXCLUDED.average_score,
			sub_scores = EXCLUDED.sub_scores,
			scored_samples = EXCLUDED.scored_samples,
			sub_score_samples = EXCLUDED.sub_score_samples,
			updated_at = EXCLUDED.updated_at`,
		rec.PathID,
		dateArg(rec.Date),
		rec.EssaysCompleted,
		rec.LessonsCompleted,
		rec.DrillsCompleted,
		rec.MinutesSpent,
		avg,
		sub,
		rec.ScoredSamples,
		subSamples,
		updatedAt,
	)
	if err != nil {
		return store.NewStoreError("progress_record", "upsert", "failed to write progress", MapError(err))
	}
	return nil
}

const selectProgress = `
	SELECT path_id, date, essays_completed, lessons_completed, drills_completed,
		minutes_spent, average_score, sub_scores, scored_samples, sub_score_samples,
		updated_at
	FROM progress_records`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*domain.ProgressRecord, error) {
	var (
		rec        domain.ProgressRecord
		avg        sql.NullFloat64
		sub        []byte
		subSamples []byte
	)
	if err := row.Scan(
		&rec.PathID,
		&rec.Date,
		&rec.EssaysCompleted,
		&rec.LessonsCompleted,
		&rec.DrillsCompleted,
		&rec.MinutesSpent,
		&avg,
		&sub,
		&rec.ScoredSamples,
		&subSamples,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Date = domain.Day(rec.Date)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if avg.Valid {
		v := avg.Float64
		rec.AverageScore = &v
	}
	if len(sub) > 0 {
		if err := json.Unmarshal(sub, &rec.SubScores); err != nil {
			return nil, fmt.Errorf("failed to decode sub-scores: %w", err)
		}
	}
	if len(subSamples) > 0 {
		if err := json.Unmarshal(subSamples, &rec.SubScoreSamples); err != nil {
			return nil, fmt.Errorf("failed to decode sub-score samples: %w", err)
		}
	}
	return &rec, nil
}

// ListProgress implements store.PathStore.
func (s *PostgresPathStore) ListProgress(ctx context.Context, pathID uuid.UUID) ([]*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, selectProgress+` WHERE path_id = $1 ORDER BY date`, pathID)
	if err != nil {
		log.ErrorContext(ctx, "failed to list progress",
			slog.String("error", err.Error()),
			slog.String("path_id", pathID.String()))
		return nil, store.NewStoreError("progress_record", "list", "failed to query progress", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	records := []*domain.ProgressRecord{}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, store.NewStoreError("progress_record", "list", "failed to scan progress", MapError(err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("progress_record", "list", "failed to iterate progress", MapError(err))
	}
	return records, nil
}

// GetProgress implements store.PathStore.
func (s *PostgresPathStore) GetProgress(ctx context.Context, pathID uuid.UUID, day time.Time) (*domain.ProgressRecord, error) {
	rec, err := scanProgress(s.db.QueryRowContext(ctx,
		selectProgress+` WHERE path_id = $1 AND date = $2`, pathID, dateArg(day)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, store.NewStoreError("progress_record", "get", "failed to load progress", MapError(err))
	}
	return rec, nil
}

// dateArg formats a calendar day for a DATE column so the session time zone
// cannot shift it.
func dateArg(t time.Time) string {
	return domain.Day(t).Format(domain.DateLayout)
}
