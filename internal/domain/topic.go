package domain

// TopicFormat is the practice format of a catalog topic.
type TopicFormat string

// Topic formats.
const (
	FormatTask1  TopicFormat = "task1"
	FormatTask2  TopicFormat = "task2"
	FormatLesson TopicFormat = "lesson"
	FormatDrill  TopicFormat = "drill"
	FormatMock   TopicFormat = "mock"
)

// DefaultMinutes is the canonical practice time for a format.
func (f TopicFormat) DefaultMinutes() int {
	switch f {
	case FormatTask1:
		return 20
	case FormatTask2:
		return 40
	case FormatLesson:
		return 20
	case FormatDrill:
		return 15
	case FormatMock:
		return 60
	default:
		return 20
	}
}

// TaskType maps the format onto the kind of task shown to the learner.
func (f TopicFormat) TaskType() TaskType {
	switch f {
	case FormatTask1, FormatTask2, FormatMock:
		return TaskTypeEssay
	case FormatDrill:
		return TaskTypeDrill
	default:
		return TaskTypeLesson
	}
}

// Topic is a catalog entry. Plans reference topics by ID only.
type Topic struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Focus            FocusArea   `json:"focus"`
	Format           TopicFormat `json:"format"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	// Core topics are recommended when they appear in a phase of their own focus.
	Core bool `json:"core"`
}

// Minutes returns the topic's estimate, falling back to the format default.
func (t Topic) Minutes() int {
	if t.EstimatedMinutes > 0 {
		return t.EstimatedMinutes
	}
	return t.Format.DefaultMinutes()
}
