package domain

import "github.com/google/uuid"

// TaskType is the kind of action a TodayTask asks for.
type TaskType string

// Task types.
const (
	TaskTypeEssay  TaskType = "essay"
	TaskTypeLesson TaskType = "lesson"
	TaskTypeDrill  TaskType = "drill"
)

// TaskPriority orders today's tasks.
type TaskPriority string

// Task priorities, highest first.
const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TodayTask is a recommended next action. It is recomputed on every request and never stored.
type TodayTask struct {
	Type             TaskType     `json:"type"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	EstimatedMinutes int          `json:"estimated_minutes"`
	Priority         TaskPriority `json:"priority"`
	PhaseID          uuid.UUID    `json:"phase_id"`
	TopicID          string       `json:"topic_id"`
	Focus            FocusArea    `json:"focus"`
}
