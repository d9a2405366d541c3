// Package planner turns a score gap and a date window into an ordered
// sequence of focus-tagged phases.
package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/phrazzld/bandpath/internal/domain"
)

// Invariant names reported in InvalidTargetError.
const (
	InvariantTargetAboveCurrent = "target_above_current"
	InvariantGapWithinLimit     = "gap_within_limit"
	InvariantDateAfterStart     = "target_date_after_start"
)

// PhaseSpec is one planned phase before dates and topics are assigned.
type PhaseSpec struct {
	Focus         domain.FocusArea
	Weeks         int
	ExpectedScore domain.Score
}

// Planner generates phase plans.
type Planner struct {
	params *Params
}

// New creates a Planner with default parameters.
func New() *Planner {
	return &Planner{params: NewDefaultParams()}
}

// NewWithParams creates a Planner with custom parameters.
func NewWithParams(params *Params) *Planner {
	if params == nil {
		params = NewDefaultParams()
	}
	return &Planner{params: params}
}

// Params returns the planner's parameters.
func (p *Planner) Params() *Params {
	return p.params
}

// slot is a checkpoint during week distribution.
type slot struct {
	focus  domain.FocusArea
	weight int
}

// GeneratePlan splits the gap from current to target into checkpoints and
// distributes the whole weeks between startDate and targetDate across them.
// The returned specs are in order; expected scores are non-decreasing and
// the last one equals target.
func (p *Planner) GeneratePlan(
	current, target domain.Score,
	targetDate, startDate time.Time,
) ([]PhaseSpec, error) {
	gap := target.Sub(current)
	if gap <= 0 {
		return nil, domain.NewInvalidTargetError(InvariantTargetAboveCurrent,
			fmt.Sprintf("target score %s must be above current score %s", target, current))
	}
	if gap > p.params.MaxGap {
		return nil, domain.NewInvalidTargetError(InvariantGapWithinLimit,
			fmt.Sprintf("gap of %.1f bands exceeds the %.1f band limit", gap, p.params.MaxGap))
	}

	start, end := domain.Day(startDate), domain.Day(targetDate)
	if !end.After(start) {
		return nil, domain.NewInvalidTargetError(InvariantDateAfterStart,
			fmt.Sprintf("target date %s must be after start date %s",
				end.Format(domain.DateLayout), start.Format(domain.DateLayout)))
	}

	weeks := domain.WholeWeeksBetween(start, end)
	if weeks < 1 {
		weeks = 1
	}

	n := int(math.Ceil(gap/p.params.MaxStepPerPhase - 1e-9))
	distinct := n
	if distinct > len(domain.FocusOrder) {
		distinct = len(domain.FocusOrder)
	}
	if weeks < p.params.MinPhaseWeeks*distinct {
		return []PhaseSpec{{Focus: domain.FocusOverall, Weeks: weeks, ExpectedScore: target}}, nil
	}

	slots := p.defaultSlots(n)
	var alloc []int
	for {
		var ok bool
		alloc, ok = p.distribute(weeks, slots)
		if ok || len(slots) == 1 {
			break
		}
		slots = mergeLightest(slots)
	}

	specs := make([]PhaseSpec, len(slots))
	for i, s := range slots {
		specs[i] = PhaseSpec{
			Focus:         s.focus,
			Weeks:         alloc[i],
			ExpectedScore: interpolate(current, gap, i+1, len(slots)),
		}
	}
	specs[len(specs)-1].ExpectedScore = target
	return specs, nil
}

// defaultSlots assigns foundational areas in order to every checkpoint
// but the last, which is always Overall.
func (p *Planner) defaultSlots(n int) []slot {
	if n <= 1 {
		return []slot{{focus: domain.FocusOverall, weight: p.params.weight(domain.FocusOverall)}}
	}
	slots := make([]slot, n)
	for i := 0; i < n-1; i++ {
		focus := domain.FoundationalAreas[i%len(domain.FoundationalAreas)]
		slots[i] = slot{focus: focus, weight: p.params.weight(focus)}
	}
	slots[n-1] = slot{focus: domain.FocusOverall, weight: p.params.weight(domain.FocusOverall)}
	return slots
}

// distribute splits weeks proportionally to slot weights using largest
// remainders, lower index first on ties. ok is false if any phase falls
// below the minimum length.
func (p *Planner) distribute(weeks int, slots []slot) ([]int, bool) {
	total := 0
	for _, s := range slots {
		total += s.weight
	}

	alloc := make([]int, len(slots))
	rem := make([]int, len(slots))
	assigned := 0
	for i, s := range slots {
		alloc[i] = weeks * s.weight / total
		rem[i] = weeks * s.weight % total
		assigned += alloc[i]
	}

	order := make([]int, len(slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rem[order[a]] > rem[order[b]]
	})
	for i := 0; assigned < weeks; i++ {
		alloc[order[i%len(order)]]++
		assigned++
	}

	for _, w := range alloc {
		if w < p.params.MinPhaseWeeks {
			return alloc, false
		}
	}
	return alloc, true
}

// mergeLightest merges the adjacent pair with the smallest combined weight.
// The merged slot keeps the heavier member's focus, the earlier on ties.
func mergeLightest(slots []slot) []slot {
	best := 0
	for i := 1; i < len(slots)-1; i++ {
		if slots[i].weight+slots[i+1].weight < slots[best].weight+slots[best+1].weight {
			best = i
		}
	}
	a, b := slots[best], slots[best+1]
	merged := slot{focus: a.focus, weight: a.weight + b.weight}
	if b.weight > a.weight {
		merged.focus = b.focus
	}

	out := make([]slot, 0, len(slots)-1)
	out = append(out, slots[:best]...)
	out = append(out, merged)
	out = append(out, slots[best+2:]...)
	return out
}

// interpolate returns the checkpoint score after step of count phases.
func interpolate(current domain.Score, gap float64, step, count int) domain.Score {
	return domain.QuantizeScore(current.Float() + gap*float64(step)/float64(count))
}
