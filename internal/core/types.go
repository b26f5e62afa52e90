package core

import (
	"context"
	"fmt"
	"time"
)

// Row is one record's values, aligned positionally with the table columns.
type Row []any

// Response is the body returned by the data endpoint.
type Response struct {
	Data  []Record `json:"data"`
	Count int      `json:"count"`
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection converts "asc"/"desc" to a Direction.
// Anything else yields Desc, the table's default.
func ParseDirection(s string) Direction {
	if Direction(s) == Asc {
		return Asc
	}
	return Desc
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// NoSort marks a SortState without an active column.
const NoSort = -1

// SortState represents the current sorting configuration.
type SortState struct {
	// Column is the index of the sorted column (NoSort if unsorted).
	Column    int
	Direction Direction
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Column >= 0
}

// Filter is a single field/value pair passed through to the data endpoint.
type Filter struct {
	Field string
	Value string
}

// FilterState is the filter collaborator's current selection.
type FilterState struct {
	Filters   []Filter
	StartDate *time.Time
	EndDate   *time.Time
}

// Equal reports whether two filter states would produce the same query.
func (f FilterState) Equal(other FilterState) bool {
	if len(f.Filters) != len(other.Filters) {
		return false
	}
	for i := range f.Filters {
		if f.Filters[i] != other.Filters[i] {
			return false
		}
	}
	return timeEqual(f.StartDate, other.StartDate) && timeEqual(f.EndDate, other.EndDate)
}

// Clone returns a deep copy so callers cannot mutate a stored snapshot.
func (f FilterState) Clone() FilterState {
	out := FilterState{}
	if len(f.Filters) > 0 {
		out.Filters = make([]Filter, len(f.Filters))
		copy(out.Filters, f.Filters)
	}
	if f.StartDate != nil {
		t := *f.StartDate
		out.StartDate = &t
	}
	if f.EndDate != nil {
		t := *f.EndDate
		out.EndDate = &t
	}
	return out
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Fetcher retrieves one page of records from the data endpoint.
// A nil Response with a nil error means the body was JSON null.
type Fetcher interface {
	Fetch(ctx context.Context, dataPath string, q Query) (*Response, error)
}

// Notifier surfaces errors to the user.
type Notifier interface {
	SendError(title, detail string)
}

// FilterSource exposes the shared filter selection.
type FilterSource interface {
	FilterState() FilterState
}

// HTTPStatusError is returned by fetchers when the endpoint answers with a
// non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.StatusText)
}
