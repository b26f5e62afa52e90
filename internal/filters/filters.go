// Package filters holds the global filter selection shared by every table.
package filters

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/changelog/internal/core"
)

// DateLayout is the day format accepted for start and end dates in addition
// to RFC 3339.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidFilter is returned for a filter that is not "field=value".
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrInvalidDate is returned for an unparseable start or end date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDateRange is returned when the start date is after the end date.
	ErrDateRange = errors.New("start date is after end date")
)

// Store is the filter collaborator read by every core.Table.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     core.FilterState
	listeners []func(core.FilterState)
}

var _ core.FilterSource = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// FilterState returns a copy of the current selection.
func (s *Store) FilterState() core.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// OnChange registers fn to run after every change that alters the selection.
func (s *Store) OnChange(fn func(core.FilterState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Replace swaps in a whole selection.
func (s *Store) Replace(fs core.FilterState) error {
	if err := validateRange(fs.StartDate, fs.EndDate); err != nil {
		return err
	}
	s.update(func(cur *core.FilterState) {
		*cur = fs.Clone()
	})
	return nil
}

// Set adds a filter on field, or replaces its value if already present.
// The field keeps its original position in the selection.
func (s *Store) Set(field, value string) error {
	if strings.TrimSpace(field) == "" {
		return fmt.Errorf("%w: empty field", ErrInvalidFilter)
	}
	s.update(func(cur *core.FilterState) {
		for i, f := range cur.Filters {
			if f.Field == field {
				cur.Filters[i].Value = value
				return
			}
		}
		cur.Filters = append(cur.Filters, core.Filter{Field: field, Value: value})
	})
	return nil
}

// Remove drops the filter on field.
func (s *Store) Remove(field string) {
	s.update(func(cur *core.FilterState) {
		out := cur.Filters[:0]
		for _, f := range cur.Filters {
			if f.Field != field {
				out = append(out, f)
			}
		}
		if len(out) == 0 {
			out = nil
		}
		cur.Filters = out
	})
}

// SetDateRange sets the start and end dates. Either may be nil.
func (s *Store) SetDateRange(start, end *time.Time) error {
	if err := validateRange(start, end); err != nil {
		return err
	}
	s.update(func(cur *core.FilterState) {
		tmp := core.FilterState{StartDate: start, EndDate: end}.Clone()
		cur.StartDate, cur.EndDate = tmp.StartDate, tmp.EndDate
	})
	return nil
}

// Clear removes every filter and both dates.
func (s *Store) Clear() {
	s.update(func(cur *core.FilterState) {
		*cur = core.FilterState{}
	})
}

func (s *Store) update(fn func(*core.FilterState)) {
	s.mu.Lock()
	before := s.state.Clone()
	fn(&s.state)
	changed := !before.Equal(s.state)
	after := s.state.Clone()
	listeners := append([]func(core.FilterState){}, s.listeners...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(after)
	}
}

// ParseFilter parses "field=value".
func ParseFilter(s string) (core.Filter, error) {
	field, value, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return core.Filter{}, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return core.Filter{Field: field, Value: strings.TrimSpace(value)}, nil
}

// ParseDate parses a YYYY-MM-DD day in loc or an RFC 3339 timestamp.
// An empty string returns nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return &t, nil
}

// ParseValues builds a selection from form or query values. Filters come from
// repeated "filter" values ("field=value"), or from paired "field" and "value"
// lists. Blank values are skipped.
func ParseValues(v url.Values, loc *time.Location) (core.FilterState, error) {
	var fs core.FilterState

	for _, raw := range v["filter"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		f, err := ParseFilter(raw)
		if err != nil {
			return core.FilterState{}, err
		}
		fs.Filters = append(fs.Filters, f)
	}

	fields, values := v["field"], v["value"]
	for i, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" || i >= len(values) || strings.TrimSpace(values[i]) == "" {
			continue
		}
		fs.Filters = append(fs.Filters, core.Filter{Field: field, Value: strings.TrimSpace(values[i])})
	}

	var err error
	if fs.StartDate, err = ParseDate(v.Get("start_date"), loc); err != nil {
		return core.FilterState{}, err
	}
	if fs.EndDate, err = ParseDate(v.Get("end_date"), loc); err != nil {
		return core.FilterState{}, err
	}
	if err := validateRange(fs.StartDate, fs.EndDate); err != nil {
		return core.FilterState{}, err
	}
	return fs, nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return ErrDateRange
	}
	return nil
}
