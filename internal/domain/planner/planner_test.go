package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

type stubTopics map[domain.FocusArea][]domain.Topic

func (s stubTopics) TopicsFor(focus domain.FocusArea) []domain.Topic {
	return s[focus]
}

func TestGeneratePlanScenarioA(t *testing.T) {
	t.Parallel()
	p := New()

	specs, err := p.GeneratePlan(domain.MustScore(5.5), domain.MustScore(7.0), domain.AddWeeks(start, 10), start)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(specs), 3)
	assert.Equal(t, domain.MustScore(7.0), specs[len(specs)-1].ExpectedScore)

	assert.Equal(t, []PhaseSpec{
		{Focus: domain.FocusGrammaticalAccuracy, Weeks: 5, ExpectedScore: domain.MustScore(6.0)},
		{Focus: domain.FocusCoherenceCohesion, Weeks: 3, ExpectedScore: domain.MustScore(6.5)},
		{Focus: domain.FocusOverall, Weeks: 2, ExpectedScore: domain.MustScore(7.0)},
	}, specs)
}

func TestGeneratePlanInvalidTarget(t *testing.T) {
	t.Parallel()
	p := New()

	testCases := []struct {
		name      string
		current   float64
		target    float64
		end       time.Time
		invariant string
	}{
		{"target equals current", 6.0, 6.0, domain.AddWeeks(start, 4), InvariantTargetAboveCurrent},
		{"target below current", 6.5, 6.0, domain.AddWeeks(start, 4), InvariantTargetAboveCurrent},
		{"gap too large", 2.0, 8.5, domain.AddWeeks(start, 40), InvariantGapWithinLimit},
		{"date equals start", 5.0, 6.0, start, InvariantDateAfterStart},
		{"date before start", 5.0, 6.0, start.AddDate(0, 0, -1), InvariantDateAfterStart},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := p.GeneratePlan(domain.MustScore(tc.current), domain.MustScore(tc.target), tc.end, start)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidTarget)

			var target *domain.InvalidTargetError
			require.True(t, errors.As(err, &target))
			assert.Equal(t, tc.invariant, target.Invariant)
		})
	}
}

func TestGeneratePlanMaxGapAllowed(t *testing.T) {
	t.Parallel()
	specs, err := New().GeneratePlan(domain.MustScore(3.0), domain.MustScore(9.0), domain.AddWeeks(start, 12), start)
	require.NoError(t, err)

	total := 0
	for _, s := range specs {
		assert.GreaterOrEqual(t, s.Weeks, 2)
		total += s.Weeks
	}
	assert.Equal(t, 12, total)
	assert.Less(t, len(specs), 12, "phases were merged to respect the minimum length")
	assert.Equal(t, domain.MustScore(9.0), specs[len(specs)-1].ExpectedScore)
}

func TestGeneratePlanCollapsesShortWindow(t *testing.T) {
	t.Parallel()
	specs, err := New().GeneratePlan(domain.MustScore(5.5), domain.MustScore(7.0), domain.AddWeeks(start, 5), start)
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, domain.FocusOverall, specs[0].Focus)
	assert.Equal(t, 5, specs[0].Weeks)
	assert.Equal(t, domain.MustScore(7.0), specs[0].ExpectedScore)
}

func TestGeneratePlanTinyWindowUsesOneWeek(t *testing.T) {
	t.Parallel()
	specs, err := New().GeneratePlan(domain.MustScore(6.0), domain.MustScore(6.5), start.AddDate(0, 0, 3), start)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 1, specs[0].Weeks)
}

func TestGeneratePlanMergesWhenSplitViolatesMinimum(t *testing.T) {
	t.Parallel()
	// Two checkpoints over four weeks split 3/1, so they merge into one.
	specs, err := New().GeneratePlan(domain.MustScore(6.0), domain.MustScore(7.0), domain.AddWeeks(start, 4), start)
	require.NoError(t, err)

	require.Len(t, specs, 1)
	assert.Equal(t, domain.FocusGrammaticalAccuracy, specs[0].Focus)
	assert.Equal(t, 4, specs[0].Weeks)
	assert.Equal(t, domain.MustScore(7.0), specs[0].ExpectedScore)
}

func TestGeneratePlanProperties(t *testing.T) {
	t.Parallel()
	p := New()

	for current := 0; current <= 17; current++ {
		for gapHalves := 1; gapHalves <= 12 && current+gapHalves <= 18; gapHalves++ {
			for _, days := range []int{1, 6, 7, 13, 20, 35, 71, 100, 183, 365} {
				cur := domain.Score(current)
				tgt := domain.Score(current + gapHalves)
				end := start.AddDate(0, 0, days)

				specs, err := p.GeneratePlan(cur, tgt, end, start)
				require.NoError(t, err)
				phases := Materialize(specs, start, end, 1, nil)

				require.NotEmpty(t, phases)
				assert.Equal(t, start, phases[0].StartDate)
				assert.Equal(t, end, phases[len(phases)-1].EndDate)
				assert.Equal(t, tgt, phases[len(phases)-1].ExpectedScore)

				for i := range phases {
					assert.Equal(t, i+1, phases[i].Sequence)
					assert.True(t, phases[i].EndDate.After(phases[i].StartDate))
					if i == 0 {
						continue
					}
					assert.Equal(t, phases[i-1].EndDate, phases[i].StartDate, "contiguous")
					assert.GreaterOrEqual(t, phases[i].ExpectedScore, phases[i-1].ExpectedScore)
				}
			}
		}
	}
}

func TestMaterialize(t *testing.T) {
	t.Parallel()
	topics := stubTopics{
		domain.FocusGrammaticalAccuracy: {
			{ID: "gra-tenses", Focus: domain.FocusGrammaticalAccuracy, Core: true},
			{ID: "gra-clauses", Focus: domain.FocusGrammaticalAccuracy},
		},
		domain.FocusLexicalResource: {
			{ID: "lex-collocations", Focus: domain.FocusLexicalResource, Core: true},
		},
		domain.FocusOverall: {
			{ID: "mock-full", Focus: domain.FocusOverall, Core: true},
		},
	}
	specs := []PhaseSpec{
		{Focus: domain.FocusGrammaticalAccuracy, Weeks: 2, ExpectedScore: domain.MustScore(6.0)},
		{Focus: domain.FocusOverall, Weeks: 2, ExpectedScore: domain.MustScore(6.5)},
	}
	end := start.AddDate(0, 0, 31)

	phases := Materialize(specs, start, end, 3, topics)
	require.Len(t, phases, 2)

	first := phases[0]
	assert.Equal(t, 3, first.Sequence)
	assert.Equal(t, domain.AddWeeks(start, 2), first.EndDate)
	assert.Equal(t, domain.PhaseStatusPending, first.Status)
	assert.Equal(t, []domain.PhaseTopic{
		{TopicID: "gra-tenses", Recommended: true},
		{TopicID: "gra-clauses", Recommended: false},
		{TopicID: "lex-collocations", Recommended: false},
	}, first.Topics)

	last := phases[1]
	assert.Equal(t, end, last.EndDate, "final phase absorbs leftover days")
	assert.Equal(t, 2, last.DurationWeeks)
	assert.Equal(t, []domain.PhaseTopic{
		{TopicID: "mock-full", Recommended: true},
		{TopicID: "gra-tenses", Recommended: false},
		{TopicID: "lex-collocations", Recommended: false},
	}, last.Topics)
}
