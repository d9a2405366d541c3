package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/bandpath/internal/grading"
)

// MockGrader implements grading.Grader for testing
type MockGrader struct {
	// GradeFn allows test cases to mock the Grade behavior
	GradeFn func(ctx context.Context, sub grading.Submission) (*grading.Result, error)

	// Default response values
	Result *grading.Result
	Err    error

	// Call tracking for verification
	GradeCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Grade was called
		Count int

		// Submissions contains every submission passed to Grade
		Submissions []grading.Submission
	}
}

var _ grading.Grader = (*MockGrader)(nil)

// Grade implements grading.Grader
func (m *MockGrader) Grade(ctx context.Context, sub grading.Submission) (*grading.Result, error) {
	m.GradeCalls.mu.Lock()
	m.GradeCalls.Count++
	m.GradeCalls.Submissions = append(m.GradeCalls.Submissions, sub)
	m.GradeCalls.mu.Unlock()

	if m.GradeFn != nil {
		return m.GradeFn(ctx, sub)
	}
	return m.Result, m.Err
}

// CallCount returns how many times Grade was called
func (m *MockGrader) CallCount() int {
	m.GradeCalls.mu.Lock()
	defer m.GradeCalls.mu.Unlock()
	return m.GradeCalls.Count
}
