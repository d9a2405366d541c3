package learningpath

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/ledger"
	"github.com/phrazzld/bandpath/internal/grading"
)

// CreatePlanRequest holds the inputs of a new plan. The plan starts today.
type CreatePlanRequest struct {
	CurrentScore domain.Score
	TargetScore  domain.Score
	TargetDate   time.Time
}

// ChangeTargetRequest moves the target score, the target date, or both.
type ChangeTargetRequest struct {
	TargetScore *domain.Score
	TargetDate  *time.Time
}

// EssayResult is a graded essay and the day's record after folding it in.
type EssayResult struct {
	Grade  *grading.Result        `json:"grade"`
	Record *domain.ProgressRecord `json:"record"`
}

// ProgressSummary is a path's ledger together with its current signals.
type ProgressSummary struct {
	Records   []*domain.ProgressRecord `json:"records"`
	Trend     ledger.TrendResult       `json:"trend"`
	WeakAreas []ledger.WeakArea        `json:"weak_areas"`
}

// Service is the learning path application service.
//
// Every path-scoped method takes the caller's userID and returns ErrNotOwned
// when the path belongs to somebody else and ErrPathNotFound when it does
// not exist. Dates are calendar days in UTC; a zero date means today.
type Service interface {
	// CreatePlan generates a plan from today to req.TargetDate, starts its
	// first phase and stores it. Returns a *domain.InvalidTargetError for
	// unreachable targets and ErrActivePathExists when the user already has
	// an active path.
	CreatePlan(ctx context.Context, userID uuid.UUID, req CreatePlanRequest) (*domain.LearningPath, error)

	// GetPath returns the path with its phases and adjustment history.
	GetPath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)

	// GetActivePath returns the user's active path.
	GetActivePath(ctx context.Context, userID uuid.UUID) (*domain.LearningPath, error)

	// RecordProgress stores the practice summary for day. A record for today
	// is replaced; a record for an earlier day fails with
	// *domain.DuplicateRecordError. Recording today's progress also evaluates
	// the path when evaluation on record is enabled.
	RecordProgress(
		ctx context.Context,
		userID, pathID uuid.UUID,
		day time.Time,
		stats domain.ProgressStats,
	) (*domain.ProgressRecord, error)

	// RecordEssay grades a submission and folds the grade into day's record.
	// Returns ErrGradingUnavailable when no grader is configured or grading fails.
	RecordEssay(
		ctx context.Context,
		userID, pathID uuid.UUID,
		day time.Time,
		submission grading.Submission,
	) (*EssayResult, error)

	// GetActivePhase returns the phase in progress today, or nil.
	GetActivePhase(ctx context.Context, userID, pathID uuid.UUID) (*domain.Phase, error)

	// GetTodayTasks ranks today's recommended tasks for the active phase.
	GetTodayTasks(ctx context.Context, userID, pathID uuid.UUID) ([]domain.TodayTask, error)

	// RunDailyEvaluation advances phases to asOf and applies at most one
	// automatic adjustment. It returns the adjustment made, or nil. Repeated
	// calls for the same day are no-ops.
	RunDailyEvaluation(ctx context.Context, userID, pathID uuid.UUID, asOf time.Time) (*domain.PathAdjustment, error)

	// EvaluatePath is RunDailyEvaluation for the scheduler, without the
	// ownership check.
	EvaluatePath(ctx context.Context, pathID uuid.UUID, asOf time.Time) (*domain.PathAdjustment, error)

	// GetAdjustmentHistory returns the path's adjustments, oldest first.
	GetAdjustmentHistory(ctx context.Context, userID, pathID uuid.UUID) ([]domain.PathAdjustment, error)

	// ChangeTarget replans pending phases for a new target score and/or date.
	ChangeTarget(ctx context.Context, userID, pathID uuid.UUID, req ChangeTargetRequest) (*domain.PathAdjustment, error)

	// CompleteTopic marks a topic of the current phase as done. Finishing
	// the last topic completes the phase and starts the next one early.
	// It returns the phase the topic belongs to.
	CompleteTopic(ctx context.Context, userID, pathID uuid.UUID, topicID string) (*domain.Phase, error)

	// PausePath suspends an active path. Paused paths are not evaluated.
	PausePath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)

	// ResumePath reactivates a paused path. Returns ErrActivePathExists when
	// the user started another path in the meantime.
	ResumePath(ctx context.Context, userID, pathID uuid.UUID) (*domain.LearningPath, error)

	// GetProgressSummary returns the path's records, trend and weak areas.
	GetProgressSummary(ctx context.Context, userID, pathID uuid.UUID) (*ProgressSummary, error)

	// ListActivePathIDs returns every active path, for the daily job.
	ListActivePathIDs(ctx context.Context) ([]uuid.UUID, error)
}
