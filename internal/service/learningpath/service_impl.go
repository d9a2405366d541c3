package learningpath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/catalog"
	"github.com/phrazzld/bandpath/internal/config"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/adjust"
	"github.com/phrazzld/bandpath/internal/domain/ledger"
	"github.com/phrazzld/bandpath/internal/domain/lifecycle"
	"github.com/phrazzld/bandpath/internal/domain/planner"
	"github.com/phrazzld/bandpath/internal/domain/tasks"
	"github.com/phrazzld/bandpath/internal/grading"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/store"
)

const defaultConflictRetries = 3

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// Option configures the service.
type Option func(*serviceImpl)

// WithClock overrides the clock that defines "today".
func WithClock(clock func() time.Time) Option {
	return func(s *serviceImpl) {
		s.clock = clock
	}
}

// WithPlanner overrides the phase planner.
func WithPlanner(p *planner.Planner) Option {
	return func(s *serviceImpl) {
		s.planner = p
	}
}

type serviceImpl struct {
	store        store.PathStore
	topics       catalog.Catalog
	grader       grading.Grader
	planner      *planner.Planner
	engine       *adjust.Engine
	selector     *tasks.Selector
	ledgerParams *ledger.Params
	cfg          config.EngineConfig
	retries      int
	clock        func() time.Time
	logger       *slog.Logger
}

// NewService creates the learning path service. grader may be nil, in which
// case RecordEssay returns ErrGradingUnavailable.
func NewService(
	pathStore store.PathStore,
	topics catalog.Catalog,
	grader grading.Grader,
	cfg config.EngineConfig,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if pathStore == nil {
		panic("pathStore cannot be nil")
	}
	if topics == nil {
		panic("topics cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		store:   pathStore,
		topics:  topics,
		grader:  grader,
		planner: planner.New(),
		cfg:     cfg,
		retries: cfg.ConflictRetries,
		clock:   time.Now,
		logger:  logger.With(slog.String("component", "learning_path_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retries <= 0 {
		s.retries = defaultConflictRetries
	}

	s.ledgerParams = ledger.NewDefaultParams()
	adjustParams := adjust.NewDefaultParams()
	if cfg.TrendWindowDays > 0 {
		s.ledgerParams.TrendWindowDays = cfg.TrendWindowDays
		adjustParams.TrendWindowDays = cfg.TrendWindowDays
		adjustParams.TrendCooldownDays = cfg.TrendWindowDays
	}
	if cfg.WeakAreaWindowDays > 0 {
		s.ledgerParams.WeakAreaWindowDays = cfg.WeakAreaWindowDays
		adjustParams.WeakAreaWindowDays = cfg.WeakAreaWindowDays
	}
	if cfg.MinTrendConfidence > 0 {
		adjustParams.MinTrendConfidence = cfg.MinTrendConfidence
	}

	s.engine = adjust.NewEngine(s.planner, topics, adjustParams, adjust.WithClock(s.clock))
	s.selector = tasks.NewSelector(topics, s.ledgerParams.WeakAreaWindowDays)
	return s
}

func (s *serviceImpl) today() time.Time {
	return domain.Day(s.clock())
}

func dayOr(day, today time.Time) time.Time {
	if day.IsZero() {
		return today
	}
	return domain.Day(day)
}

func (s *serviceImpl) newLedger(pathID uuid.UUID, records []*domain.ProgressRecord) *ledger.Ledger {
	return ledger.NewWithParams(pathID, records, s.ledgerParams)
}

func recordsUpTo(records []*domain.ProgressRecord, day time.Time) []*domain.ProgressRecord {
	out := make([]*domain.ProgressRecord, 0, len(records))
	for _, r := range records {
		if !domain.Day(r.Date).After(day) {
			out = append(out, r)
		}
	}
	return out
}

// load reads a path. A non-nil owner must match the path's user.
func (s *serviceImpl) load(ctx context.Context, op string, owner *uuid.UUID, pathID uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := s.store.GetByID(ctx, pathID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPathNotFound
		}
		log.Error("failed to load path",
			slog.String("error", err.Error()),
			slog.String("path_id", pathID.String()))
		return nil, NewServiceError(op, "failed to load path", err)
	}
	if owner != nil && path.UserID != *owner {
		log.Warn("user does not own path",
			slog.String("user_id", owner.String()),
			slog.String("path_id", pathID.String()))
		return nil, ErrNotOwned
	}
	return path, nil
}

func (s *serviceImpl) loadWithRecords(
	ctx context.Context,
	op string,
	owner *uuid.UUID,
	pathID uuid.UUID,
) (*domain.LearningPath, []*domain.ProgressRecord, error) {
	path, err := s.load(ctx, op, owner, pathID)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.store.ListProgress(ctx, pathID)
	if err != nil {
		return nil, nil, NewServiceError(op, "failed to load progress", err)
	}
	return path, records, nil
}

// outcome is the result of applying a mutation to a freshly read path.
type outcome struct {
	// path is the revision to write; nil writes the loaded path.
	path       *domain.LearningPath
	record     *domain.ProgressRecord
	adjustment *domain.PathAdjustment
	// skip means nothing changed and nothing is written.
	skip bool
}

type mutation func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error)

// mutate runs read, apply, versioned write, retrying the whole cycle on a
// version conflict.
func (s *serviceImpl) mutate(
	ctx context.Context,
	op string,
	owner *uuid.UUID,
	pathID uuid.UUID,
	fn mutation,
) (*domain.LearningPath, *outcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		path, records, err := s.loadWithRecords(ctx, op, owner, pathID)
		if err != nil {
			return nil, nil, err
		}

		out, err := fn(path, records, s.today())
		if err != nil {
			return nil, nil, err
		}
		if out.path == nil {
			out.path = path
		}
		if out.skip {
			return out.path, out, nil
		}

		if err := lifecycle.CheckInvariants(out.path); err != nil {
			log.Error("revised path violates invariants",
				slog.String("error", err.Error()),
				slog.String("operation", op),
				slog.String("path_id", pathID.String()))
			return nil, nil, NewServiceError(op, "revised path is inconsistent", err)
		}
		out.path.UpdatedAt = s.clock().UTC()

		err = s.store.Update(ctx, out.path, out.record)
		switch {
		case err == nil:
			return out.path, out, nil
		case errors.Is(err, domain.ErrConflict):
			lastErr = err
			log.Debug("path version conflict, retrying",
				slog.String("operation", op),
				slog.String("path_id", pathID.String()),
				slog.Int("attempt", attempt))
			continue
		case errors.Is(err, store.ErrActivePathExists):
			return nil, nil, ErrActivePathExists
		case errors.Is(err, store.ErrNotFound):
			return nil, nil, ErrPathNotFound
		default:
			log.Error("failed to save path",
				slog.String("error", err.Error()),
				slog.String("operation", op),
				slog.String("path_id", pathID.String()))
			return nil, nil, NewServiceError(op, "failed to save path", err)
		}
	}

	log.Warn("giving up after repeated version conflicts",
		slog.String("operation", op),
		slog.String("path_id", pathID.String()),
		slog.Int("attempts", s.retries))
	return nil, nil, lastErr
}

// evaluate advances phases to asOf and asks the engine for an adjustment,
// using only the records up to asOf.
func (s *serviceImpl) evaluate(path *domain.LearningPath, records []*domain.ProgressRecord, asOf time.Time) (*outcome, error) {
	day := domain.Day(asOf)
	changed := lifecycle.Activate(path, day)

	decision, err := s.engine.Evaluate(path, s.newLedger(path.ID, recordsUpTo(records, day)), day)
	if err != nil {
		return nil, err
	}
	if decision != nil {
		adj := decision.Adjustment
		return &outcome{path: decision.Path, adjustment: &adj}, nil
	}
	return &outcome{skip: !changed}, nil
}

// appendRecord adds rec to the ledger and, for today's record, runs the
// on-demand evaluation. An evaluation failure never loses the record.
func (s *serviceImpl) appendRecord(
	ctx context.Context,
	path *domain.LearningPath,
	records []*domain.ProgressRecord,
	rec *domain.ProgressRecord,
	today time.Time,
) (*outcome, error) {
	l := s.newLedger(path.ID, records)
	if err := l.Append(rec, today); err != nil {
		return nil, err
	}

	out := &outcome{record: rec}
	if !s.cfg.EvaluateOnRecord || !rec.Date.Equal(today) || path.Status != domain.PathStatusActive {
		return out, nil
	}

	ev, err := s.evaluate(path, l.Records(), today)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("evaluation after progress failed",
			slog.String("error", err.Error()),
			slog.String("path_id", path.ID.String()))
		return out, nil
	}
	out.path = ev.path
	out.adjustment = ev.adjustment
	return out, nil
}

// CreatePlan implements Service.
func (s *serviceImpl) CreatePlan(ctx context.Context, userID uuid.UUID, req CreatePlanRequest) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	today := s.today()
	log.Debug("creating learning path",
		slog.String("user_id", userID.String()),
		slog.String("current_score", req.CurrentScore.String()),
		slog.String("target_score", req.TargetScore.String()),
		slog.String("target_date", domain.Day(req.TargetDate).Format(domain.DateLayout)))

	specs, err := s.planner.GeneratePlan(req.CurrentScore, req.TargetScore, req.TargetDate, today)
	if err != nil {
		log.Warn("plan rejected",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	phases := planner.Materialize(specs, today, req.TargetDate, 1, s.topics)
	path, err := domain.NewLearningPath(userID, req.CurrentScore, req.TargetScore, today, req.TargetDate, phases, s.clock())
	if err != nil {
		return nil, err
	}
	lifecycle.Activate(path, today)
	if err := lifecycle.CheckInvariants(path); err != nil {
		log.Error("generated plan violates invariants",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("create_plan", "generated plan is inconsistent", err)
	}

	if err := s.store.Create(ctx, path); err != nil {
		if errors.Is(err, store.ErrActivePathExists) {
			log.Warn("user already has an active path", slog.String("user_id", userID.String()))
			return nil, ErrActivePathExists
		}
		log.Error("failed to store learning path",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("create_plan", "failed to save path", err)
	}

	log.Info("learning path created",
		slog.String("user_id", userID.String()),
		slog.String("path_id", path.ID.String()),
		slog.Int("phase_count", len(path.Phases)),
		slog.Int("estimated_weeks", path.EstimatedDurationWeeks))
	return path, nil
}

// GetPath implements Service.
func (s *serviceImpl) GetPath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error) {
	path, err := s.load(ctx, "get_path", &userID, pathID)
	if err != nil {
		return nil, err
	}
	lifecycle.Activate(path, s.today())
	return path, nil
}

// GetActivePath implements Service.
func (s *serviceImpl) GetActivePath(ctx context.Context, userID uuid.UUID) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, err := s.store.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPathNotFound
		}
		log.Error("failed to load active path",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("get_active_path", "failed to load path", err)
	}
	lifecycle.Activate(path, s.today())
	return path, nil
}

// RecordProgress implements Service.
func (s *serviceImpl) RecordProgress(
	ctx context.Context,
	userID, pathID uuid.UUID,
	day time.Time,
	stats domain.ProgressStats,
) (*domain.ProgressRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, out, err := s.mutate(ctx, "record_progress", &userID, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			if path.IsCompleted() {
				return nil, domain.ErrPathCompleted
			}
			rec, err := domain.NewProgressRecord(path.ID, dayOr(day, today), stats)
			if err != nil {
				return nil, err
			}
			return s.appendRecord(ctx, path, records, rec, today)
		})
	if err != nil {
		log.Debug("progress not recorded",
			slog.String("error", err.Error()),
			slog.String("path_id", pathID.String()))
		return nil, err
	}

	s.logAdjustment(log, pathID, out.adjustment)
	return out.record, nil
}

// RecordEssay implements Service.
func (s *serviceImpl) RecordEssay(
	ctx context.Context,
	userID, pathID uuid.UUID,
	day time.Time,
	submission grading.Submission,
) (*EssayResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.grader == nil {
		return nil, ErrGradingUnavailable
	}
	if err := submission.Validate(); err != nil {
		return nil, err
	}
	// Check access before spending a grading call.
	path, err := s.load(ctx, "record_essay", &userID, pathID)
	if err != nil {
		return nil, err
	}
	if path.IsCompleted() {
		return nil, domain.ErrPathCompleted
	}

	grade, err := s.grader.Grade(ctx, submission)
	if err != nil {
		log.Warn("essay grading failed",
			slog.String("error", err.Error()),
			slog.String("path_id", pathID.String()))
		return nil, gradingError(err)
	}

	_, out, err := s.mutate(ctx, "record_essay", &userID, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			if path.IsCompleted() {
				return nil, domain.ErrPathCompleted
			}
			d := dayOr(day, today)
			existing, _ := s.newLedger(path.ID, records).Get(d)
			rec, err := grading.Apply(existing, path.ID, d, grade, submission.MinutesSpent)
			if err != nil {
				return nil, err
			}
			return s.appendRecord(ctx, path, records, rec, today)
		})
	if err != nil {
		return nil, err
	}

	log.Info("essay graded",
		slog.String("path_id", pathID.String()),
		slog.String("overall", grade.Overall.String()),
		slog.Int("scored_samples", out.record.ScoredSamples))
	s.logAdjustment(log, pathID, out.adjustment)
	return &EssayResult{Grade: grade, Record: out.record}, nil
}

func gradingError(err error) error {
	switch {
	case errors.Is(err, grading.ErrEmptySubmission),
		errors.Is(err, grading.ErrContentBlocked),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, context.Canceled):
		return err
	default:
		return NewServiceError("record_essay", "grading failed", fmt.Errorf("%w: %w", ErrGradingUnavailable, err))
	}
}

// GetActivePhase implements Service. The phase is computed for today even
// when the daily job has not yet advanced the stored path.
func (s *serviceImpl) GetActivePhase(ctx context.Context, userID, pathID uuid.UUID) (*domain.Phase, error) {
	path, err := s.load(ctx, "get_active_phase", &userID, pathID)
	if err != nil {
		return nil, err
	}
	lifecycle.Activate(path, s.today())
	return lifecycle.CurrentPhase(path), nil
}

// GetTodayTasks implements Service.
func (s *serviceImpl) GetTodayTasks(ctx context.Context, userID, pathID uuid.UUID) ([]domain.TodayTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, records, err := s.loadWithRecords(ctx, "get_today_tasks", &userID, pathID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	lifecycle.Activate(path, today)

	list := s.selector.SelectTasks(path, s.newLedger(path.ID, recordsUpTo(records, today)), s.cfg.MaxTasks)
	log.Debug("selected today's tasks",
		slog.String("path_id", pathID.String()),
		slog.Int("task_count", len(list)))
	return list, nil
}

// RunDailyEvaluation implements Service.
func (s *serviceImpl) RunDailyEvaluation(
	ctx context.Context,
	userID, pathID uuid.UUID,
	asOf time.Time,
) (*domain.PathAdjustment, error) {
	return s.runEvaluation(ctx, &userID, pathID, asOf)
}

// EvaluatePath implements Service.
func (s *serviceImpl) EvaluatePath(ctx context.Context, pathID uuid.UUID, asOf time.Time) (*domain.PathAdjustment, error) {
	return s.runEvaluation(ctx, nil, pathID, asOf)
}

func (s *serviceImpl) runEvaluation(
	ctx context.Context,
	owner *uuid.UUID,
	pathID uuid.UUID,
	asOf time.Time,
) (*domain.PathAdjustment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, out, err := s.mutate(ctx, "run_daily_evaluation", owner, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			day := dayOr(asOf, today)
			if day.After(today) {
				return nil, domain.NewValidationError("as_of", "cannot be in the future", nil)
			}
			// The daily job reports paths it did not evaluate.
			if owner == nil {
				switch path.Status {
				case domain.PathStatusPaused:
					return nil, ErrPathNotActive
				case domain.PathStatusCompleted:
					return nil, domain.ErrPathCompleted
				}
			}
			return s.evaluate(path, records, day)
		})
	if err != nil {
		return nil, err
	}

	s.logAdjustment(log, pathID, out.adjustment)
	return out.adjustment, nil
}

// GetAdjustmentHistory implements Service.
func (s *serviceImpl) GetAdjustmentHistory(ctx context.Context, userID, pathID uuid.UUID) ([]domain.PathAdjustment, error) {
	path, err := s.load(ctx, "get_adjustment_history", &userID, pathID)
	if err != nil {
		return nil, err
	}
	if path.Adjustments == nil {
		return []domain.PathAdjustment{}, nil
	}
	return path.Adjustments, nil
}

// ChangeTarget implements Service.
func (s *serviceImpl) ChangeTarget(
	ctx context.Context,
	userID, pathID uuid.UUID,
	req ChangeTargetRequest,
) (*domain.PathAdjustment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.TargetScore == nil && req.TargetDate == nil {
		return nil, domain.NewValidationError("target", "target_score or target_date is required", nil)
	}

	_, out, err := s.mutate(ctx, "change_target", &userID, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			if path.IsCompleted() {
				return nil, domain.ErrPathCompleted
			}
			lifecycle.Activate(path, today)

			decision, err := s.engine.Retarget(path, req.TargetScore, req.TargetDate, today)
			if errors.Is(err, adjust.ErrNothingToReplan) {
				return nil, domain.NewInvalidTargetError("pending_phases", "no pending phases remain to replan")
			}
			if err != nil {
				return nil, err
			}
			adj := decision.Adjustment
			return &outcome{path: decision.Path, adjustment: &adj}, nil
		})
	if err != nil {
		log.Debug("target change rejected",
			slog.String("error", err.Error()),
			slog.String("path_id", pathID.String()))
		return nil, err
	}

	s.logAdjustment(log, pathID, out.adjustment)
	return out.adjustment, nil
}

// CompleteTopic implements Service.
func (s *serviceImpl) CompleteTopic(ctx context.Context, userID, pathID uuid.UUID, topicID string) (*domain.Phase, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var phaseID uuid.UUID
	path, _, err := s.mutate(ctx, "complete_topic", &userID, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			switch path.Status {
			case domain.PathStatusCompleted:
				return nil, domain.ErrPathCompleted
			case domain.PathStatusPaused:
				return nil, ErrPathNotActive
			}
			lifecycle.Activate(path, today)

			idx := lifecycle.CurrentIndex(path)
			if idx < 0 {
				return nil, fmt.Errorf("%w: no phase is in progress", domain.ErrTopicNotFound)
			}
			ph := &path.Phases[idx]
			phaseID = ph.ID

			ti := -1
			for i := range ph.Topics {
				if ph.Topics[i].TopicID == topicID {
					ti = i
					break
				}
			}
			if ti < 0 {
				return nil, fmt.Errorf("%w: %s", domain.ErrTopicNotFound, topicID)
			}
			if ph.Topics[ti].Completed {
				return &outcome{skip: true}, nil
			}
			ph.Topics[ti].Completed = true

			if ph.AllTopicsCompleted() {
				actual := ph.ExpectedScore
				trend := s.newLedger(path.ID, recordsUpTo(records, today)).Trend(0)
				if trend.HasRecentMean() {
					actual = domain.QuantizeScore(trend.RecentMean)
				}
				if err := lifecycle.Complete(path, ph.ID, actual, s.clock()); err != nil {
					return nil, err
				}
				lifecycle.StartNext(path)
			}
			return &outcome{}, nil
		})
	if err != nil {
		return nil, err
	}

	idx := path.PhaseByID(phaseID)
	phase := path.Phases[idx].Clone()
	log.Debug("topic completed",
		slog.String("path_id", pathID.String()),
		slog.String("topic_id", topicID),
		slog.String("phase_status", string(phase.Status)))
	return &phase, nil
}

// PausePath implements Service.
func (s *serviceImpl) PausePath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error) {
	return s.setStatus(ctx, "pause_path", userID, pathID,
		domain.PathStatusActive, domain.PathStatusPaused, ErrPathNotActive)
}

// ResumePath implements Service.
func (s *serviceImpl) ResumePath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error) {
	return s.setStatus(ctx, "resume_path", userID, pathID,
		domain.PathStatusPaused, domain.PathStatusActive, ErrPathNotPaused)
}

// setStatus moves a path from one status to another. Repeating a pause or a
// resume is rejected with notFrom rather than treated as a no-op.
func (s *serviceImpl) setStatus(
	ctx context.Context,
	op string,
	userID, pathID uuid.UUID,
	from, to domain.PathStatus,
	notFrom error,
) (*domain.LearningPath, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	path, _, err := s.mutate(ctx, op, &userID, pathID,
		func(path *domain.LearningPath, records []*domain.ProgressRecord, today time.Time) (*outcome, error) {
			switch path.Status {
			case domain.PathStatusCompleted:
				return nil, domain.ErrPathCompleted
			case from:
				path.Status = to
				return &outcome{}, nil
			default:
				return nil, notFrom
			}
		})
	if err != nil {
		return nil, err
	}

	log.Info("path status changed",
		slog.String("path_id", pathID.String()),
		slog.String("status", string(path.Status)))
	return path, nil
}

// GetProgressSummary implements Service.
func (s *serviceImpl) GetProgressSummary(ctx context.Context, userID, pathID uuid.UUID) (*ProgressSummary, error) {
	_, records, err := s.loadWithRecords(ctx, "get_progress_summary", &userID, pathID)
	if err != nil {
		return nil, err
	}

	l := s.newLedger(pathID, records)
	weak := l.WeakAreas(0)
	if weak == nil {
		weak = []ledger.WeakArea{}
	}
	return &ProgressSummary{
		Records:   l.Records(),
		Trend:     l.Trend(0),
		WeakAreas: weak,
	}, nil
}

// ListActivePathIDs implements Service.
func (s *serviceImpl) ListActivePathIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.store.ListActiveIDs(ctx)
	if err != nil {
		return nil, NewServiceError("list_active_paths", "failed to list active paths", err)
	}
	return ids, nil
}

func (s *serviceImpl) logAdjustment(log *slog.Logger, pathID uuid.UUID, adj *domain.PathAdjustment) {
	if adj == nil {
		return
	}
	log.Info("learning path adjusted",
		slog.String("path_id", pathID.String()),
		slog.String("reason", string(adj.Reason)),
		slog.String("summary", adj.Summary),
		slog.String("new_target_date", adj.NewTargetDate.Format(domain.DateLayout)))
}
