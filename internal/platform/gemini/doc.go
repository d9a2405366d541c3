// Package gemini provides a grading.Grader backed by Google's Gemini API.
//
// The grader renders a prompt from an embedded template, asks the model for a
// JSON object constrained by a response schema, and converts the band values
// it returns into domain scores. Transient API failures are retried with
// exponential backoff and jitter; blocked content and malformed responses are
// returned immediately.
package gemini
