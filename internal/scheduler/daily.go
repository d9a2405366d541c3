// Package scheduler runs the daily evaluation of every active learning path.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/service/learningpath"
	"golang.org/x/sync/errgroup"
)

// ErrEvaluationFailed is returned by RunOnce when at least one path could
// not be evaluated. The other paths are still processed.
var ErrEvaluationFailed = errors.New("daily evaluation failed for some paths")

// Evaluator is the part of learningpath.Service the daily job needs.
type Evaluator interface {
	ListActivePathIDs(ctx context.Context) ([]uuid.UUID, error)
	EvaluatePath(ctx context.Context, pathID uuid.UUID, asOf time.Time) (*domain.PathAdjustment, error)
}

// Summary counts the outcome of one run.
type Summary struct {
	AsOf      time.Time
	Evaluated int
	Adjusted  int
	Skipped   int
	Failed    int
}

// DailyEvaluator fans evaluation out over active paths with bounded
// concurrency.
type DailyEvaluator struct {
	evaluator   Evaluator
	concurrency int
	logger      *slog.Logger
}

// NewDailyEvaluator creates a DailyEvaluator. concurrency < 1 means 1.
func NewDailyEvaluator(evaluator Evaluator, concurrency int, log *slog.Logger) *DailyEvaluator {
	if evaluator == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("evaluator cannot be nil for DailyEvaluator")
	}
	if log == nil {
		log = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &DailyEvaluator{
		evaluator:   evaluator,
		concurrency: concurrency,
		logger:      log.With(slog.String("component", "daily_evaluator")),
	}
}

// RunOnce evaluates every active path as of asOf. Paths paused or removed
// since they were listed are skipped. A failing path never stops the run;
// the returned error wraps ErrEvaluationFailed when any path failed, or the
// context error when the run was cancelled.
func (d *DailyEvaluator) RunOnce(ctx context.Context, asOf time.Time) (Summary, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)
	summary := Summary{AsOf: domain.Day(asOf)}

	ids, err := d.evaluator.ListActivePathIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list active paths: %w", err)
	}
	log.Info("daily evaluation started",
		slog.String("as_of", summary.AsOf.Format(domain.DateLayout)),
		slog.Int("paths", len(ids)),
		slog.Int("concurrency", d.concurrency))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(d.concurrency)

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		id := id
		g.Go(func() error {
			adj, err := d.evaluator.EvaluatePath(ctx, id, summary.AsOf)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Evaluated++
				if adj != nil {
					summary.Adjusted++
					log.Info("path adjusted",
						slog.String("path_id", id.String()),
						slog.String("reason", string(adj.Reason)))
				}
			case errors.Is(err, learningpath.ErrPathNotActive),
				errors.Is(err, learningpath.ErrPathNotFound),
				errors.Is(err, domain.ErrPathCompleted):
				summary.Skipped++
			default:
				summary.Failed++
				log.Error("path evaluation failed",
					slog.String("path_id", id.String()),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("daily evaluation finished",
		slog.Int("evaluated", summary.Evaluated),
		slog.Int("adjusted", summary.Adjusted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrEvaluationFailed, summary.Failed, len(ids))
	}
	return summary, nil
}
