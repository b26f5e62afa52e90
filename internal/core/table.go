package core

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// DefaultPageSize is the number of rows shown before the user picks another
// page size.
const DefaultPageSize = 10

// PageSizeOptions are the page sizes offered by the pagination controls.
var PageSizeOptions = []int{10, 20, 50, 100}

// FetchErrorTitle is the notification title for a non-OK response.
const FetchErrorTitle = "Failed to fetch data."

// CellFunc renders one body cell. The default is CellString.
type CellFunc func(cell any, row Row, columns []string, rowIndex, cellIndex int) string

// ColumnFunc renders one header. Returning ok=false omits the header.
type ColumnFunc func(column string) (label string, ok bool)

// RenderHooks customizes how a table view is built.
type RenderHooks struct {
	Cell   CellFunc
	Column ColumnFunc
}

// TableOptions configures a Table.
type TableOptions struct {
	// DataPath is appended to the fetcher's base URL, e.g. "/services".
	DataPath string
	// PageSize is the initial page size (default DefaultPageSize).
	PageSize int
	// Locale drives string collation when sorting (default English).
	Locale language.Tag
	// Formatters are applied by CSV(); nil means DefaultFormatters.
	Formatters Formatters
	Hooks      RenderHooks
	Logger     *slog.Logger
}

// Table owns the columns, rows, count, sort and expansion state of one
// mounted table and refetches whenever page, page size or filters change.
// A Table is safe for concurrent use.
type Table struct {
	fetcher  Fetcher
	notifier Notifier
	filters  FilterSource

	dataPath   string
	locale     language.Tag
	formatters Formatters
	hooks      RenderHooks
	logger     *slog.Logger

	mu       sync.Mutex
	columns  []string
	rows     []Row
	count    int
	sort     SortState
	expanded Expansion
	page     int
	pageSize int

	loaded      bool
	lastFilters FilterState

	// issued is the sequence number of the most recent request; applied is
	// the sequence of the response currently shown.
	issued  uint64
	applied uint64
}

// NewTable creates a Table. notifier and filters may be nil.
func NewTable(fetcher Fetcher, notifier Notifier, filters FilterSource, opts TableOptions) *Table {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	if opts.Formatters == nil {
		opts.Formatters = DefaultFormatters()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Table{
		fetcher:    fetcher,
		notifier:   notifier,
		filters:    filters,
		dataPath:   opts.DataPath,
		locale:     opts.Locale,
		formatters: opts.Formatters,
		hooks:      opts.Hooks,
		logger:     opts.Logger.With("data_path", opts.DataPath),
		columns:    []string{},
		rows:       []Row{},
		sort:       SortState{Column: NoSort, Direction: Desc},
		page:       1,
		pageSize:   opts.PageSize,
	}
}

// Load performs the initial fetch.
func (t *Table) Load(ctx context.Context) error {
	return t.fetch(ctx)
}

// Refresh refetches the current page unconditionally.
func (t *Table) Refresh(ctx context.Context) error {
	return t.fetch(ctx)
}

// Loaded reports whether a request has been issued.
func (t *Table) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// SetPage moves to page, collapsing all expanded cells.
// It fetches only if the page actually changed.
func (t *Table) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return ErrInvalidPage
	}

	t.mu.Lock()
	t.expanded.Clear()
	changed := page != t.page
	t.page = page
	t.mu.Unlock()

	if !changed {
		return nil
	}
	return t.fetch(ctx)
}

// SetPageSize changes the page size, collapsing all expanded cells.
// If the new size exceeds the current total count the table returns to
// page 1 so it cannot land past the last page.
func (t *Table) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return ErrInvalidPage
	}

	t.mu.Lock()
	changed := size != t.pageSize
	if size > t.count && t.page != 1 {
		t.page = 1
		changed = true
	}
	t.pageSize = size
	t.expanded.Clear()
	t.mu.Unlock()

	if !changed {
		return nil
	}
	return t.fetch(ctx)
}

// SyncFilters fetches if the filter selection differs from the one used by
// the last request, or if nothing was fetched yet.
func (t *Table) SyncFilters(ctx context.Context) error {
	t.mu.Lock()
	current := t.currentFilters()
	changed := !t.loaded || !current.Equal(t.lastFilters)
	t.mu.Unlock()

	if !changed {
		return nil
	}
	return t.fetch(ctx)
}

// Sort orders the rows of the current page in place and records the sort
// state. It does not refetch, and the order is not reapplied to pages
// fetched later.
func (t *Table) Sort(column int, dir Direction) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if column < 0 || column >= len(t.columns) {
		return ErrInvalidSortColumn
	}

	t.sort = SortState{Column: column, Direction: dir}
	return SortRows(t.rows, column, dir, t.locale)
}

// ToggleExpanded expands (row, col), or collapses it if already expanded.
func (t *Table) ToggleExpanded(row, col int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if row < 0 || row >= len(t.rows) {
		return ErrInvalidRow
	}
	if col < 0 || col >= len(t.columns) {
		return ErrInvalidColumn
	}

	t.expanded.Toggle(row, col)
	return nil
}

// CSV returns the export matrix for the current rows and columns.
// It is computed on every call.
func (t *Table) CSV() [][]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ConvertToCSV(t.rows, t.columns, t.formatters)
}

// Columns returns a copy of the current columns.
func (t *Table) Columns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Rows returns a shallow copy of the current rows.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Count returns the total row count reported by the last applied response.
func (t *Table) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Page returns the current page number.
func (t *Table) Page() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page
}

// PageSize returns the current page size.
func (t *Table) PageSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pageSize
}

// SortState returns the last requested sort.
func (t *Table) SortState() SortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sort
}

// Expanded returns a copy of the row -> expanded column mapping.
func (t *Table) Expanded() map[int]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded.Snapshot()
}

// fetch issues a request for the current state and applies the response.
// The lock is not held while the request is in flight.
func (t *Table) fetch(ctx context.Context) error {
	t.mu.Lock()
	t.issued++
	seq := t.issued
	filters := t.currentFilters()
	q := Query{Page: t.page, PerPage: t.pageSize, Filters: filters}
	t.lastFilters = filters
	t.loaded = true
	t.mu.Unlock()

	t.logger.Debug("fetching page", "seq", seq, "page", q.Page, "limit", q.PerPage, "filters", len(filters.Filters))

	resp, err := t.fetcher.Fetch(ctx, t.dataPath, q)
	if err != nil {
		t.reportError(err)
		return err
	}
	if resp == nil {
		t.logger.Debug("empty body ignored", "seq", seq)
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// A newer response is already on screen.
	if seq < t.applied {
		t.logger.Debug("stale response dropped", "seq", seq, "applied", t.applied)
		return nil
	}
	t.applied = seq
	t.columns, t.rows, t.count = Normalize(*resp)
	return nil
}

func (t *Table) reportError(err error) {
	if errors.Is(err, context.Canceled) {
		t.logger.Debug("fetch cancelled", "error", err)
		return
	}

	t.logger.Warn("fetch failed", "error", err)
	if t.notifier == nil {
		return
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		t.notifier.SendError(FetchErrorTitle, statusErr.Error())
		return
	}
	t.notifier.SendError(err.Error(), "")
}

// currentFilters must be called with mu held.
func (t *Table) currentFilters() FilterState {
	if t.filters == nil {
		return FilterState{}
	}
	return t.filters.FilterState().Clone()
}
