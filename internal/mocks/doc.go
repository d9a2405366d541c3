// Package mocks provides shared test doubles for interfaces that several
// packages consume.
//
// Each mock exposes a function field per method, default return values, and
// call tracking:
//
//	grader := &mocks.MockGrader{
//	    GradeFn: func(ctx context.Context, sub grading.Submission) (*grading.Result, error) {
//	        return &grading.Result{Overall: domain.MustScore(6.5)}, nil
//	    },
//	}
package mocks
