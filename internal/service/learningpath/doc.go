// Package learningpath orchestrates the planning engine into the operations
// callers need: creating a plan, recording progress, listing today's tasks,
// evaluating a path and reading its adjustment history.
//
// Every mutation is a read, a pure domain transition and a versioned write.
// A write against a stale version is retried from a fresh read a bounded
// number of times before the conflict is returned to the caller.
package learningpath
