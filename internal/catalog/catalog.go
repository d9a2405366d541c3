// Package catalog provides the topic and lesson catalog that plans reference
// by ID. Content itself is never embedded in a plan.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/phrazzld/bandpath/internal/domain"
)

//go:embed topics.json
var defaultTopics []byte

// Errors returned while loading a catalog.
var (
	ErrDuplicateTopic = errors.New("duplicate topic id")
	ErrInvalidTopic   = errors.New("invalid topic")
)

// Catalog resolves topics by ID and lists them per focus area.
type Catalog interface {
	Topic(id string) (domain.Topic, bool)
	TopicsFor(focus domain.FocusArea) []domain.Topic
	All() []domain.Topic
}

// Static is an immutable in-memory catalog.
type Static struct {
	byID    map[string]domain.Topic
	byFocus map[domain.FocusArea][]domain.Topic
	ordered []domain.Topic
}

var _ Catalog = (*Static)(nil)

// NewStatic validates topics and indexes them. Topics keep their input order
// within a focus area.
func NewStatic(topics []domain.Topic) (*Static, error) {
	s := &Static{
		byID:    make(map[string]domain.Topic, len(topics)),
		byFocus: make(map[domain.FocusArea][]domain.Topic),
	}
	for _, t := range topics {
		if t.ID == "" || t.Title == "" {
			return nil, fmt.Errorf("%w: id and title are required", ErrInvalidTopic)
		}
		if !t.Focus.Valid() {
			return nil, fmt.Errorf("%w: %s has unknown focus %q", ErrInvalidTopic, t.ID, t.Focus)
		}
		if t.EstimatedMinutes < 0 {
			return nil, fmt.Errorf("%w: %s has negative minutes", ErrInvalidTopic, t.ID)
		}
		if _, dup := s.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTopic, t.ID)
		}
		s.byID[t.ID] = t
		s.byFocus[t.Focus] = append(s.byFocus[t.Focus], t)
		s.ordered = append(s.ordered, t)
	}
	sort.SliceStable(s.ordered, func(i, j int) bool {
		return s.ordered[i].Focus.Rank() < s.ordered[j].Focus.Rank()
	})
	return s, nil
}

// Default returns the built-in writing catalog.
func Default() (*Static, error) {
	return Parse(defaultTopics)
}

// Parse builds a catalog from a JSON array of topics.
func Parse(data []byte) (*Static, error) {
	var topics []domain.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("failed to parse topic catalog: %w", err)
	}
	return NewStatic(topics)
}

// LoadFile reads a JSON topic catalog from disk.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Topic implements Catalog.
func (s *Static) Topic(id string) (domain.Topic, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// TopicsFor implements Catalog.
func (s *Static) TopicsFor(focus domain.FocusArea) []domain.Topic {
	return append([]domain.Topic(nil), s.byFocus[focus]...)
}

// All implements Catalog, ordered by focus area.
func (s *Static) All() []domain.Topic {
	return append([]domain.Topic(nil), s.ordered...)
}
