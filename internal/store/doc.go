// Package store defines the persistence ports for learning paths and the
// helpers shared by every SQL-backed implementation.
package store
