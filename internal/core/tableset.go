package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TableSet is the set of tables mounted on one screen. All tables share the
// same fetcher, notifier and filter source.
type TableSet struct {
	keys   []string
	defs   map[string]TableDefinition
	tables map[string]*Table
}

// NewTableSet creates one Table per definition. base supplies the options
// shared by every table; a definition's own page size wins over base.
func NewTableSet(defs []TableDefinition, fetcher Fetcher, notifier Notifier, filters FilterSource, base TableOptions) *TableSet {
	s := &TableSet{
		defs:   make(map[string]TableDefinition, len(defs)),
		tables: make(map[string]*Table, len(defs)),
	}
	for _, def := range defs {
		opts := base
		opts.DataPath = def.DataPath
		opts.Hooks = def.Hooks()
		if def.PageSize > 0 {
			opts.PageSize = def.PageSize
		}
		if base.Logger != nil {
			opts.Logger = base.Logger.With("table", def.Key)
		}

		s.keys = append(s.keys, def.Key)
		s.defs[def.Key] = def
		s.tables[def.Key] = NewTable(fetcher, notifier, filters, opts)
	}
	return s
}

// Keys returns the table keys in mount order.
func (s *TableSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Definitions returns the table definitions in mount order.
func (s *TableSet) Definitions() []TableDefinition {
	out := make([]TableDefinition, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.defs[k]
	}
	return out
}

// Table returns the table mounted under key.
func (s *TableSet) Table(key string) (*Table, TableDefinition, bool) {
	t, ok := s.tables[key]
	if !ok {
		return nil, TableDefinition{}, false
	}
	return t, s.defs[key], true
}

// Len returns the number of mounted tables.
func (s *TableSet) Len() int {
	return len(s.keys)
}

// SyncFilters brings every table up to date with the filter source,
// fetching concurrently. A failing table does not stop the others; the
// first error is returned after all have finished.
func (s *TableSet) SyncFilters(ctx context.Context) error {
	var g errgroup.Group
	for _, k := range s.keys {
		t := s.tables[k]
		g.Go(func() error {
			return t.SyncFilters(ctx)
		})
	}
	return g.Wait()
}

// RefreshAll refetches every table concurrently.
func (s *TableSet) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	for _, k := range s.keys {
		t := s.tables[k]
		g.Go(func() error {
			return t.Refresh(ctx)
		})
	}
	return g.Wait()
}
