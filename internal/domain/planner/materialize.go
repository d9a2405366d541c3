package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
)

// TopicSource provides catalog topics for a focus area in a stable order.
type TopicSource interface {
	TopicsFor(focus domain.FocusArea) []domain.Topic
}

// Materialize walks specs with a date cursor starting at start, assigning
// sequence numbers from firstSequence, dates and topics. The final phase
// ends on targetDate so the phases span the whole window.
func Materialize(
	specs []PhaseSpec,
	start, targetDate time.Time,
	firstSequence int,
	topics TopicSource,
) []domain.Phase {
	phases := make([]domain.Phase, 0, len(specs))
	cursor := domain.Day(start)
	for i, spec := range specs {
		end := domain.AddWeeks(cursor, spec.Weeks)
		if i == len(specs)-1 && domain.Day(targetDate).After(cursor) {
			end = domain.Day(targetDate)
		}
		seq := firstSequence + i
		phases = append(phases, domain.Phase{
			ID:            uuid.New(),
			Sequence:      seq,
			Title:         Title(spec.Focus),
			Description:   describe(spec),
			DurationWeeks: spec.Weeks,
			StartDate:     cursor,
			EndDate:       end,
			PrimaryFocus:  spec.Focus,
			ExpectedScore: spec.ExpectedScore,
			Status:        domain.PhaseStatusPending,
			Topics:        AssignTopics(spec.Focus, topics),
		})
		cursor = end
	}
	return phases
}

// AssignTopics picks the topics for a phase of the given focus: every topic
// of that focus, plus one review topic from each other foundational area.
// Core topics of the phase's own focus are recommended.
func AssignTopics(focus domain.FocusArea, topics TopicSource) []domain.PhaseTopic {
	if topics == nil {
		return []domain.PhaseTopic{}
	}

	seen := make(map[string]bool)
	out := []domain.PhaseTopic{}
	add := func(t domain.Topic, recommended bool) {
		if seen[t.ID] {
			return
		}
		seen[t.ID] = true
		out = append(out, domain.PhaseTopic{TopicID: t.ID, Recommended: recommended})
	}

	for _, t := range topics.TopicsFor(focus) {
		add(t, t.Core)
	}
	for _, area := range domain.FoundationalAreas {
		if area == focus {
			continue
		}
		if review, ok := firstCore(topics.TopicsFor(area)); ok {
			add(review, false)
		}
	}
	return out
}

func firstCore(list []domain.Topic) (domain.Topic, bool) {
	for _, t := range list {
		if t.Core {
			return t, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return domain.Topic{}, false
}

// Title names a planned phase by its focus. It never includes the sequence number.
func Title(focus domain.FocusArea) string {
	if focus == domain.FocusOverall {
		return "Overall Band Consolidation"
	}
	return focus.Label()
}

func describe(spec PhaseSpec) string {
	weeks := "weeks"
	if spec.Weeks == 1 {
		weeks = "week"
	}
	if spec.Focus == domain.FocusOverall {
		return fmt.Sprintf("Consolidate all criteria with full practice tests to reach %s over %d %s.",
			spec.ExpectedScore, spec.Weeks, weeks)
	}
	return fmt.Sprintf("Build %s toward a %s checkpoint over %d %s.",
		spec.Focus.Label(), spec.ExpectedScore, spec.Weeks, weeks)
}
