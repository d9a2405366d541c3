// Package tasks ranks the active phase's unfinished topics into today's
// recommended actions.
package tasks

import (
	"sort"

	"github.com/phrazzld/bandpath/internal/domain"
	"github.com/phrazzld/bandpath/internal/domain/ledger"
	"github.com/phrazzld/bandpath/internal/domain/lifecycle"
)

// DefaultMaxTasks bounds the list when the caller passes no limit.
const DefaultMaxTasks = 4

// TopicLookup resolves topic IDs against the catalog.
type TopicLookup interface {
	Topic(id string) (domain.Topic, bool)
}

// Selector produces today's task list. Output is fully determined by its
// inputs; there is no randomness.
type Selector struct {
	topics         TopicLookup
	weakAreaWindow int
}

// NewSelector creates a Selector. weakAreaWindow <= 0 uses the ledger default.
func NewSelector(topics TopicLookup, weakAreaWindow int) *Selector {
	return &Selector{topics: topics, weakAreaWindow: weakAreaWindow}
}

type candidate struct {
	task     domain.TodayTask
	tier     int
	weakRank int
	order    int
}

// SelectTasks ranks unfinished topics of the current phase: topics in a weak
// area first (High, weakest area first), then recommended topics (Medium),
// then the rest (Low), each tier in phase order. Topics missing from the
// catalog are skipped. maxTasks <= 0 uses DefaultMaxTasks.
func (s *Selector) SelectTasks(path *domain.LearningPath, l *ledger.Ledger, maxTasks int) []domain.TodayTask {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	out := []domain.TodayTask{}

	phase := lifecycle.CurrentPhase(path)
	if phase == nil {
		return out
	}

	weakRank := map[domain.FocusArea]int{}
	if l != nil {
		for i, w := range l.WeakAreas(s.weakAreaWindow) {
			weakRank[w.Focus] = i
		}
	}

	var candidates []candidate
	for i, pt := range phase.Topics {
		if pt.Completed {
			continue
		}
		topic, ok := s.topics.Topic(pt.TopicID)
		if !ok {
			continue
		}

		c := candidate{order: i, tier: 2}
		priority := domain.PriorityLow
		if rank, weak := weakRank[topic.Focus]; weak {
			c.tier, c.weakRank = 0, rank
			priority = domain.PriorityHigh
		} else if pt.Recommended {
			c.tier = 1
			priority = domain.PriorityMedium
		}

		c.task = domain.TodayTask{
			Type:             topic.Format.TaskType(),
			Title:            topic.Title,
			Description:      topic.Description,
			EstimatedMinutes: topic.Minutes(),
			Priority:         priority,
			PhaseID:          phase.ID,
			TopicID:          topic.ID,
			Focus:            topic.Focus,
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.weakRank != b.weakRank {
			return a.weakRank < b.weakRank
		}
		return a.order < b.order
	})

	for i := 0; i < len(candidates) && i < maxTasks; i++ {
		out = append(out, candidates[i].task)
	}
	return out
}
