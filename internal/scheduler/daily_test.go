package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/platform/logger"
	"github.com/phrazzld/bandpath/internal/service/learningpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	ids     []uuid.UUID
	listErr error
	results map[uuid.UUID]error
	adjust  map[uuid.UUID]bool
	delay   time.Duration

	mu       sync.Mutex
	asOf     []time.Time
	inFlight int32
	peak     int32
}

func (f *fakeEvaluator) ListActivePathIDs(context.Context) ([]uuid.UUID, error) {
	return f.ids, f.listErr
}

func (f *fakeEvaluator) EvaluatePath(_ context.Context, pathID uuid.UUID, asOf time.Time) (*domain.PathAdjustment, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	f.asOf = append(f.asOf, asOf)
	f.mu.Unlock()

	if err := f.results[pathID]; err != nil {
		return nil, err
	}
	if f.adjust[pathID] {
		return &domain.PathAdjustment{ID: uuid.New(), PathID: pathID, Reason: domain.ReasonSlowerProgress}, nil
	}
	return nil, nil
}

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRunOnceCountsOutcomes(t *testing.T) {
	t.Parallel()

	paths := ids(5)
	ev := &fakeEvaluator{
		ids: paths,
		results: map[uuid.UUID]error{
			paths[3]: learningpath.ErrPathNotActive,
			paths[4]: errors.New("store unavailable"),
		},
		adjust: map[uuid.UUID]bool{paths[0]: true},
	}
	log, _ := logger.NewTestLogger()

	asOf := time.Date(2026, 3, 9, 2, 0, 0, 0, time.UTC)
	summary, err := NewDailyEvaluator(ev, 2, log).RunOnce(context.Background(), asOf)

	require.ErrorIs(t, err, ErrEvaluationFailed)
	assert.Equal(t, Summary{AsOf: domain.Day(asOf), Evaluated: 3, Adjusted: 1, Skipped: 1, Failed: 1}, summary)
	for _, day := range ev.asOf {
		assert.Equal(t, domain.Day(asOf), day)
	}
}

func TestRunOnceBoundsConcurrency(t *testing.T) {
	t.Parallel()

	ev := &fakeEvaluator{ids: ids(12), delay: 5 * time.Millisecond}
	summary, err := NewDailyEvaluator(ev, 3, nil).RunOnce(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, 12, summary.Evaluated)
	assert.LessOrEqual(t, atomic.LoadInt32(&ev.peak), int32(3))
}

func TestRunOnceListFailure(t *testing.T) {
	t.Parallel()

	ev := &fakeEvaluator{listErr: errors.New("connection refused")}
	_, err := NewDailyEvaluator(ev, 1, nil).RunOnce(context.Background(), time.Now())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEvaluationFailed)
}

func TestRunOnceCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ev := &fakeEvaluator{ids: ids(3)}
	summary, err := NewDailyEvaluator(ev, 1, nil).RunOnce(ctx, time.Now())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Evaluated)
}

func TestRunOnceNoPaths(t *testing.T) {
	t.Parallel()

	summary, err := NewDailyEvaluator(&fakeEvaluator{}, 0, nil).RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, summary.Evaluated)
}
