// Package grading defines the boundary between the learning path engine and
// the external service that scores written submissions.
//
// A Grader returns an overall band and per-area sub-scores for one essay.
// Apply folds a Result into that day's ProgressRecord so the ledger can
// compute trends and weak areas from graded work.
package grading
