// Package domain contains the learning path entities and value types:
// band scores, focus areas, paths, phases, progress records, adjustments
// and today's tasks. The planning and evaluation algorithms that operate
// on these types live in the subpackages planner, ledger, lifecycle,
// adjust and tasks; this package holds no behavior beyond validation,
// copying and small helpers.
package domain
