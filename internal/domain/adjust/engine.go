// Package adjust decides when a learning path needs replanning and builds
// the revised plan. Decisions are pure: the input path is never modified,
// and every decision carries a complete revised copy plus exactly one
// adjustment record.
package adjust

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/ledger"
	"github.com/phrazzld/bandpath/internal/domain/lifecycle"
	"github.com/phrazzld/bandpath/internal/domain/planner"
)

const epsilon = 1e-9

// ErrNothingToReplan is returned by Retarget when no open phase remains to
// take the change.
var ErrNothingToReplan = errors.New("no pending phases to replan")

// Decision is a revised path together with the adjustment that explains it.
// Path already contains Adjustment as its newest history entry.
type Decision struct {
	Path       *domain.LearningPath
	Adjustment domain.PathAdjustment
}

// Engine evaluates paths against their progress ledgers.
type Engine struct {
	planner *planner.Planner
	topics  planner.TopicSource
	params  *Params
	clock   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to timestamp adjustments.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates an Engine. A nil planner or params uses defaults; a nil
// topic source leaves new phases without topics.
func NewEngine(p *planner.Planner, topics planner.TopicSource, params *Params, opts ...Option) *Engine {
	if p == nil {
		p = planner.New()
	}
	if params == nil {
		params = NewDefaultParams()
	}
	e := &Engine{
		planner: p,
		topics:  topics,
		params:  params,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate applies the replanning rules in priority order and returns the
// first decision that fires, or nil when the plan stands. At most one
// automatic adjustment is made per path per day.
//
//  1. A weak area outside its cooldown inserts a remediation phase.
//  2. A confident slower trend pushes the target date back.
//  3. A confident faster trend pulls the target date forward.
func (e *Engine) Evaluate(path *domain.LearningPath, l *ledger.Ledger, asOf time.Time) (*Decision, error) {
	if path.Status != domain.PathStatusActive {
		return nil, nil
	}
	day := domain.Day(asOf)
	if e.adjustedOn(path, day) {
		return nil, nil
	}

	weak := l.WeakAreas(e.params.WeakAreaWindowDays)
	if len(weak) > 0 && !e.within(path, day, e.params.WeakAreaCooldownDays, domain.ReasonWeakAreaIdentified) {
		if d := e.remediate(path, weak[0], day); d != nil {
			return d, nil
		}
	}

	trend := l.Trend(e.params.TrendWindowDays)
	if trend.Confidence < e.params.MinTrendConfidence-epsilon {
		return nil, nil
	}
	if e.within(path, day, e.params.TrendCooldownDays,
		domain.ReasonSlowerProgress, domain.ReasonFasterProgress) {
		return nil, nil
	}

	switch trend.Direction {
	case ledger.DirectionSlower:
		return e.slowDown(path, trend, day)
	case ledger.DirectionFaster:
		return e.speedUp(path, trend, day)
	default:
		return nil, nil
	}
}

// Retarget honors a caller-requested change of target score and/or date,
// bypassing the evaluation rules. Pending phases are replanned from the
// path's current score. The reason is TargetChange when the score moves and
// ScheduleChange when only the date does.
func (e *Engine) Retarget(
	path *domain.LearningPath,
	newScore *domain.Score,
	newDate *time.Time,
	asOf time.Time,
) (*Decision, error) {
	if path.IsCompleted() {
		return nil, domain.ErrPathCompleted
	}

	score, date := path.TargetScore, path.TargetDate
	if newScore != nil {
		score = *newScore
	}
	if newDate != nil {
		date = domain.Day(*newDate)
	}
	if score == path.TargetScore && date.Equal(path.TargetDate) {
		return nil, domain.NewInvalidTargetError("target_changed", "new target equals the current target")
	}

	var phases []domain.Phase
	prefix, replanStart, ok := retained(path)
	if ok {
		if len(prefix) > 0 && score < prefix[len(prefix)-1].ExpectedScore {
			return nil, domain.NewInvalidTargetError("target_above_checkpoint",
				"target score "+score.String()+" is below the checkpoint already under way")
		}
		var err error
		if phases, err = e.replan(prefix, replanStart, path.CurrentScore, score, date); err != nil {
			return nil, err
		}
	} else {
		var err error
		if phases, err = stretchFinal(path, score, date, domain.Day(asOf)); err != nil {
			return nil, err
		}
	}

	reason := domain.ReasonScheduleChange
	if score != path.TargetScore {
		reason = domain.ReasonTargetChange
	}
	rev := path.Clone()
	rev.SetPhases(phases)
	rev.TargetScore = score
	rev.TargetDate = date

	adj := e.newAdjustment(path, rev, reason, domain.Day(asOf))
	adj.Summary = retargetSummary(path, rev)
	return e.decide(rev, adj), nil
}

// stretchFinal retargets a path whose final phase is under way. The running
// phase takes the new target score and ends on the new date, which must
// still leave it at least one more day.
func stretchFinal(path *domain.LearningPath, score domain.Score, date, day time.Time) ([]domain.Phase, error) {
	phases := path.Clone().Phases
	idx := len(phases) - 1
	last := &phases[idx]
	if last.Status != domain.PhaseStatusInProgress {
		return nil, ErrNothingToReplan
	}
	if !date.After(day) {
		return nil, domain.NewInvalidTargetError("target_after_current_phase",
			"target date "+date.Format(domain.DateLayout)+" would end the final phase before it has run")
	}
	if idx > 0 && score < phases[idx-1].ExpectedScore {
		return nil, domain.NewInvalidTargetError("target_above_checkpoint",
			"target score "+score.String()+" is below the last completed checkpoint")
	}

	last.EndDate = date
	last.DurationWeeks = max(1, domain.WholeWeeksBetween(last.StartDate, date))
	last.ExpectedScore = score
	return phases, nil
}

// remediate inserts a remediation phase for weak right after the current
// phase and shifts everything after it.
func (e *Engine) remediate(path *domain.LearningPath, weak ledger.WeakArea, day time.Time) *Decision {
	insertAt := lifecycle.CurrentIndex(path) + 1
	if insertAt == 0 {
		insertAt = firstOpen(path)
		if insertAt < 0 {
			return nil
		}
	}

	weeks := 1
	if weak.Deficit > e.params.SevereDeficit+epsilon {
		weeks = 2
	}

	rev := path.Clone()
	var start time.Time
	expected := path.CurrentScore
	switch {
	case insertAt == 0:
		start = rev.Phases[0].StartDate
	case insertAt == len(rev.Phases):
		// The final phase carries the plan's leftover days; hand them to the
		// new final phase so every earlier phase stays a whole number of weeks.
		last := &rev.Phases[len(rev.Phases)-1]
		trimmed := domain.AddWeeks(last.StartDate, last.DurationWeeks)
		if !day.Before(trimmed) {
			return nil
		}
		last.EndDate = trimmed
		start = trimmed
		expected = last.ExpectedScore
	default:
		start = rev.Phases[insertAt-1].EndDate
		expected = rev.Phases[insertAt-1].ExpectedScore
	}

	end := domain.AddWeeks(start, weeks)
	newTarget := domain.AddWeeks(path.TargetDate, weeks)
	if insertAt == len(rev.Phases) {
		end = newTarget
	}

	remediation := domain.Phase{
		ID:            uuid.New(),
		PathID:        path.ID,
		Title:         "Remediation: " + weak.Focus.Label(),
		Description:   remediationDescription(weak, weeks),
		DurationWeeks: weeks,
		StartDate:     start,
		EndDate:       end,
		PrimaryFocus:  weak.Focus,
		ExpectedScore: expected,
		Status:        domain.PhaseStatusPending,
		Remediation:   true,
		Topics:        planner.AssignTopics(weak.Focus, e.topics),
	}

	phases := make([]domain.Phase, 0, len(rev.Phases)+1)
	phases = append(phases, rev.Phases[:insertAt]...)
	phases = append(phases, remediation)
	for _, ph := range rev.Phases[insertAt:] {
		ph.StartDate = domain.AddWeeks(ph.StartDate, weeks)
		ph.EndDate = domain.AddWeeks(ph.EndDate, weeks)
		phases = append(phases, ph)
	}
	renumber(phases)

	rev.SetPhases(phases)
	rev.TargetDate = newTarget

	adj := e.newAdjustment(path, rev, domain.ReasonWeakAreaIdentified, day)
	adj.FocusArea = weak.Focus
	adj.Summary = weakAreaSummary(weak, weeks, rev.TargetDate)
	return e.decide(rev, adj)
}

// slowDown extends the target date by a slip proportional to the observed
// deficit and replans the pending phases over the longer window.
func (e *Engine) slowDown(path *domain.LearningPath, trend ledger.TrendResult, day time.Time) (*Decision, error) {
	prefix, replanStart, ok := retained(path)
	if !ok {
		return nil, nil
	}
	remaining := domain.WholeWeeksBetween(replanStart, path.TargetDate)
	if remaining < 1 {
		return nil, nil
	}

	anchor := e.anchor(path, trend)
	gap := path.TargetScore.Sub(anchor)
	slip := int(math.Ceil(float64(remaining)*math.Abs(trend.Delta)/gap - epsilon))
	slip = clamp(slip, 1, remaining)

	newTarget := domain.AddWeeks(path.TargetDate, slip)
	phases, err := e.replan(prefix, replanStart, anchor, path.TargetScore, newTarget)
	if err != nil {
		return nil, err
	}

	rev := path.Clone()
	rev.SetPhases(phases)
	rev.TargetDate = newTarget
	rev.CurrentScore = anchor

	adj := e.newAdjustment(path, rev, domain.ReasonSlowerProgress, day)
	adj.Summary = slowerSummary(trend, slip, newTarget)
	return e.decide(rev, adj), nil
}

// speedUp pulls the target date forward by the surplus implied by the
// observed gain, as long as the current phase still has time to run.
func (e *Engine) speedUp(path *domain.LearningPath, trend ledger.TrendResult, day time.Time) (*Decision, error) {
	current := lifecycle.CurrentPhase(path)
	if current == nil || domain.DaysBetween(day, current.EndDate) <= e.params.MinDaysLeftForPullForward {
		return nil, nil
	}
	prefix, replanStart, ok := retained(path)
	if !ok {
		return nil, nil
	}
	remaining := domain.WholeWeeksBetween(replanStart, path.TargetDate)
	if remaining < 2 {
		return nil, nil
	}

	anchor := e.anchor(path, trend)
	gap := path.TargetScore.Sub(anchor)
	surplus := int(math.Floor(float64(remaining)*trend.Delta/gap + epsilon))
	if surplus > remaining-1 {
		surplus = remaining - 1
	}
	if surplus < 1 {
		return nil, nil
	}

	newTarget := domain.AddWeeks(path.TargetDate, -surplus)
	phases, err := e.replan(prefix, replanStart, anchor, path.TargetScore, newTarget)
	if err != nil {
		return nil, err
	}

	rev := path.Clone()
	rev.SetPhases(phases)
	rev.TargetDate = newTarget
	rev.CurrentScore = anchor

	adj := e.newAdjustment(path, rev, domain.ReasonFasterProgress, day)
	adj.Summary = fasterSummary(trend, surplus, newTarget)
	return e.decide(rev, adj), nil
}

// replan keeps prefix unchanged and plans new phases from replanStart to
// target. Expected scores never drop below the last retained checkpoint.
func (e *Engine) replan(
	prefix []domain.Phase,
	replanStart time.Time,
	anchor, target domain.Score,
	targetDate time.Time,
) ([]domain.Phase, error) {
	specs, err := e.planner.GeneratePlan(anchor, target, targetDate, replanStart)
	if err != nil {
		return nil, err
	}
	if len(prefix) > 0 {
		floor := prefix[len(prefix)-1].ExpectedScore
		for i := range specs {
			specs[i].ExpectedScore = domain.MaxOf(specs[i].ExpectedScore, floor)
		}
	}

	planned := planner.Materialize(specs, replanStart, targetDate, len(prefix)+1, e.topics)
	phases := make([]domain.Phase, 0, len(prefix)+len(planned))
	phases = append(phases, prefix...)
	return append(phases, planned...), nil
}

// anchor is the measured level to replan from: the recent mean when there
// is one, kept strictly below target and within the plannable gap.
func (e *Engine) anchor(path *domain.LearningPath, trend ledger.TrendResult) domain.Score {
	anchor := path.CurrentScore
	if trend.HasRecentMean() {
		anchor = domain.QuantizeScore(trend.RecentMean)
	}
	if ceiling := path.TargetScore.Add(-0.5); anchor > ceiling {
		anchor = ceiling
	}
	if floor := path.TargetScore.Add(-e.planner.Params().MaxGap); anchor < floor {
		anchor = floor
	}
	return anchor
}

func (e *Engine) newAdjustment(
	before, after *domain.LearningPath,
	reason domain.AdjustmentReason,
	day time.Time,
) domain.PathAdjustment {
	return domain.PathAdjustment{
		ID:             uuid.New(),
		PathID:         before.ID,
		Reason:         reason,
		OldTargetDate:  before.TargetDate,
		NewTargetDate:  after.TargetDate,
		OldTargetScore: before.TargetScore,
		NewTargetScore: after.TargetScore,
		EffectiveOn:    day,
		CreatedAt:      e.clock().UTC(),
	}
}

func (e *Engine) decide(rev *domain.LearningPath, adj domain.PathAdjustment) *Decision {
	rev.Adjustments = append(rev.Adjustments, adj)
	return &Decision{Path: rev, Adjustment: adj}
}

// adjustedOn reports whether an automatic adjustment already took effect on day.
func (e *Engine) adjustedOn(path *domain.LearningPath, day time.Time) bool {
	for _, a := range path.Adjustments {
		if a.Reason.Automatic() && a.EffectiveOn.Equal(day) {
			return true
		}
	}
	return false
}

// within reports whether an adjustment with one of reasons took effect in
// the days before day.
func (e *Engine) within(path *domain.LearningPath, day time.Time, days int, reasons ...domain.AdjustmentReason) bool {
	for _, a := range path.Adjustments {
		for _, r := range reasons {
			if a.Reason == r && domain.DaysBetween(a.EffectiveOn, day) < days {
				return true
			}
		}
	}
	return false
}

// retained returns the phases a replan must keep (completed ones and the one
// in progress), the date new phases start, and whether any pending phase is
// left to replace.
func retained(path *domain.LearningPath) ([]domain.Phase, time.Time, bool) {
	keep := 0
	for i := range path.Phases {
		if path.Phases[i].Status == domain.PhaseStatusPending {
			break
		}
		keep = i + 1
	}
	if keep == len(path.Phases) {
		return nil, time.Time{}, false
	}

	prefix := make([]domain.Phase, keep)
	for i := 0; i < keep; i++ {
		prefix[i] = path.Phases[i].Clone()
	}
	start := path.Phases[0].StartDate
	if keep > 0 {
		start = path.Phases[keep-1].EndDate
	}
	return prefix, start, true
}

func firstOpen(path *domain.LearningPath) int {
	for i := range path.Phases {
		if path.Phases[i].Status != domain.PhaseStatusCompleted {
			return i
		}
	}
	return -1
}

func renumber(phases []domain.Phase) {
	for i := range phases {
		phases[i].Sequence = i + 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
