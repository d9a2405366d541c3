// Package ledger holds a path's daily progress records and derives trend
// and weak-area signals from them.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/bandpath/internal/domain"
)

const epsilon = 1e-9

// Params defines the windows and thresholds used for signals.
type Params struct {
	TrendWindowDays    int
	TrendThreshold     float64
	WeakAreaWindowDays int
	WeakAreaThreshold  float64
	// MinWeakAreaSamples is how many sub-scores an area needs inside the window to be judged.
	MinWeakAreaSamples int
}

// NewDefaultParams returns the default signal parameters.
func NewDefaultParams() *Params {
	return &Params{
		TrendWindowDays:    7,
		TrendThreshold:     0.2,
		WeakAreaWindowDays: 14,
		WeakAreaThreshold:  0.5,
		MinWeakAreaSamples: 3,
	}
}

// Ledger is the set of progress records for one path, at most one per day.
// It is not safe for concurrent mutation; the service serializes writers per path.
type Ledger struct {
	pathID  uuid.UUID
	params  *Params
	records map[time.Time]*domain.ProgressRecord
}

// New builds a ledger from stored records using default parameters.
func New(pathID uuid.UUID, records []*domain.ProgressRecord) *Ledger {
	return NewWithParams(pathID, records, nil)
}

// NewWithParams builds a ledger from stored records. Later duplicates of a
// day replace earlier ones.
func NewWithParams(pathID uuid.UUID, records []*domain.ProgressRecord, params *Params) *Ledger {
	if params == nil {
		params = NewDefaultParams()
	}
	l := &Ledger{
		pathID:  pathID,
		params:  params,
		records: make(map[time.Time]*domain.ProgressRecord, len(records)),
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		c := r.Clone()
		c.Date = domain.Day(c.Date)
		l.records[c.Date] = c
	}
	return l
}

// Params returns the ledger's parameters.
func (l *Ledger) Params() *Params {
	return l.params
}

// Len returns the number of days recorded.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Get returns the record for day, if any.
func (l *Ledger) Get(day time.Time) (*domain.ProgressRecord, bool) {
	r, ok := l.records[domain.Day(day)]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// Append stores rec. A record for today may be overwritten; a record for an
// earlier day is immutable and re-appending it fails with DuplicateRecordError.
func (l *Ledger) Append(rec *domain.ProgressRecord, today time.Time) error {
	if rec == nil {
		return domain.NewValidationError("progress", "record is required", domain.ErrInvalidRecord)
	}
	if rec.PathID != l.pathID {
		return domain.NewValidationError("progress.path_id",
			fmt.Sprintf("record belongs to path %s, not %s", rec.PathID, l.pathID), domain.ErrInvalidRecord)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	day := domain.Day(rec.Date)
	today = domain.Day(today)
	if day.After(today) {
		return domain.NewValidationError("progress.date",
			fmt.Sprintf("%s is in the future", day.Format(domain.DateLayout)), domain.ErrInvalidRecord)
	}
	if _, exists := l.records[day]; exists && !day.Equal(today) {
		return &domain.DuplicateRecordError{PathID: l.pathID, Date: day}
	}

	c := rec.Clone()
	c.Date = day
	l.records[day] = c
	return nil
}

// Records returns all records in ascending date order.
func (l *Ledger) Records() []*domain.ProgressRecord {
	out := make([]*domain.ProgressRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// withData returns records carrying a measured score, newest first.
func (l *Ledger) withData() []*domain.ProgressRecord {
	out := make([]*domain.ProgressRecord, 0, len(l.records))
	for _, r := range l.records {
		if r.HasData() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func meanScore(records []*domain.ProgressRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += *r.AverageScore
	}
	return sum / float64(len(records))
}
