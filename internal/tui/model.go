// Package tui is a terminal browser for the changelog tables. Fetches run as
// bubbletea commands so the event loop stays responsive while a page loads.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/export"
	"github.com/JonMunkholm/changelog/internal/filters"
	"github.com/JonMunkholm/changelog/internal/notify"
)

const maxColumnWidth = 32

type mode int

const (
	modeMenu mode = iota
	modeTable
	modeFilter
	modeNotifications
)

// Options configures the browser.
type Options struct {
	Tables   *core.TableSet
	Filters  *filters.Store
	Notifier *notify.Center
	// ExportDir receives exported files (default: current directory).
	ExportDir string
	// Table opens this table on start instead of the menu.
	Table string
	// Location interprets filter dates (default: time.Local).
	Location *time.Location
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx       context.Context
	tables    *core.TableSet
	filters   *filters.Store
	notifier  *notify.Center
	exportDir string
	location  *time.Location
	now       func() time.Time

	styles styles
	menu   *Menu
	cursor int
	mode   mode

	active  string
	grid    table.Model
	col     int
	view    core.View
	loading bool

	input     textinput.Model
	status    string
	statusErr bool
	height    int
}

// New creates the browser model. ctx bounds every fetch it issues.
func New(ctx context.Context, opts Options) Model {
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	in := textinput.New()
	in.Placeholder = "field=value start_date=2024-01-01"
	in.CharLimit = 200
	in.Width = 50
	in.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:       ctx,
		tables:    opts.Tables,
		filters:   opts.Filters,
		notifier:  opts.Notifier,
		exportDir: opts.ExportDir,
		location:  opts.Location,
		now:       time.Now,
		styles:    defaultStyles(),
		menu:      buildMenuTree(opts.Tables.Definitions()),
		grid:      table.New(table.WithFocused(true), table.WithHeight(12)),
		input:     in,
	}

	if opts.Table != "" {
		if _, _, ok := m.tables.Table(opts.Table); ok {
			m.active = opts.Table
			m.mode = modeTable
		} else {
			m.setError(fmt.Errorf("%w: %s", core.ErrTableNotFound, opts.Table))
		}
	}
	return m
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	if m.mode == modeTable {
		return m.fetch(m.active, (*core.Table).SyncFilters)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.grid.SetHeight(max(msg.Height-14, 5))
		return m, nil

	case loadedMsg:
		if msg.key == m.active {
			m.loading = false
			m.syncGrid()
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.setError(msg.err)
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setError(msg.err)
		} else {
			m.setStatus("Exported " + msg.path)
		}
		return m, nil

	case DoneMsg:
		m.setStatus(string(msg))
		return m, nil

	case ErrMsg:
		m.setError(msg.Err)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg)
		case modeTable:
			return m.updateTable(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeNotifications:
			return m.updateNotifications(msg)
		}
	}

	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menu.Items

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "esc", "backspace", "h":
		if m.menu.Parent != nil {
			m.menu = m.menu.Parent
			m.cursor = 0
		}
	case "q":
		return m, tea.Quit
	case "enter", "l", " ":
		item := items[m.cursor]
		if item.Submenu != nil {
			m.menu = item.Submenu
			m.cursor = 0
			return m, nil
		}
		if item.Action != nil {
			cmd := item.Action(&m)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t, _, ok := m.tables.Table(m.active)
	if !ok {
		m.mode = modeMenu
		return m, nil
	}
	v := m.view

	switch msg.String() {
	case "esc", "q":
		m.mode = modeMenu
		return m, nil

	case "left", "shift+tab":
		if m.col > 0 {
			m.col--
		}
		m.syncGrid()

	case "right", "tab":
		if m.col < len(v.Headers)-1 {
			m.col++
		}
		m.syncGrid()

	case "n":
		if v.Page < v.TotalPages {
			page := v.Page + 1
			return m, m.fetch(m.active, func(t *core.Table, ctx context.Context) error { return t.SetPage(ctx, page) })
		}

	case "p":
		if v.Page > 1 {
			page := v.Page - 1
			return m, m.fetch(m.active, func(t *core.Table, ctx context.Context) error { return t.SetPage(ctx, page) })
		}

	case "+", "=":
		size := stepPageSize(v.PageSize, 1)
		return m, m.fetch(m.active, func(t *core.Table, ctx context.Context) error { return t.SetPageSize(ctx, size) })

	case "-":
		size := stepPageSize(v.PageSize, -1)
		return m, m.fetch(m.active, func(t *core.Table, ctx context.Context) error { return t.SetPageSize(ctx, size) })

	case "s":
		if len(v.Headers) == 0 {
			return m, nil
		}
		hd := v.Headers[m.col]
		dir := hd.Direction
		if hd.Sorted {
			dir = dir.Opposite()
		}
		if err := t.Sort(hd.Index, dir); err != nil {
			m.setError(err)
		}
		m.syncGrid()

	case "enter":
		if len(v.Headers) == 0 || len(v.Rows) == 0 {
			return m, nil
		}
		if err := t.ToggleExpanded(m.grid.Cursor(), v.Headers[m.col].Index); err != nil {
			m.setError(err)
		}
		m.syncGrid()

	case "r":
		return m, m.fetch(m.active, (*core.Table).Refresh)

	case "e":
		return m, m.exportTable(m.active)

	case "/":
		m.mode = modeFilter
		m.input.SetValue("")
		return m, m.input.Focus()

	case "c":
		return m, m.clearFilters()

	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeTable
		return m, nil
	case tea.KeyEnter:
		m.input.Blur()
		m.mode = modeTable
		cmd, err := m.applyFilterInput(m.input.Value())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateNotifications(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.notifier.List()

	switch msg.String() {
	case "esc", "q":
		m.mode = modeMenu
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "d", "x":
		if m.cursor < len(list) {
			m.notifier.Dismiss(list[m.cursor].ID)
			if m.cursor > 0 && m.cursor >= len(list)-1 {
				m.cursor--
			}
		}
	}
	return m, nil
}

// openTable switches to the table view and loads the table if its filters
// are stale.
func (m *Model) openTable(key string) tea.Cmd {
	if _, _, ok := m.tables.Table(key); !ok {
		m.setError(fmt.Errorf("%w: %s", core.ErrTableNotFound, key))
		return nil
	}
	m.active = key
	m.mode = modeTable
	m.col = 0
	m.grid.SetCursor(0)
	m.syncGrid()
	return m.fetch(key, (*core.Table).SyncFilters)
}

// fetch runs fn against the table off the event loop.
func (m *Model) fetch(key string, fn func(*core.Table, context.Context) error) tea.Cmd {
	t, _, ok := m.tables.Table(key)
	if !ok {
		return nil
	}
	if key == m.active {
		m.loading = true
	}
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{key: key, err: fn(t, ctx)}
	}
}

// syncAll refetches every table whose filters changed.
func (m *Model) syncAll() tea.Cmd {
	if m.active != "" {
		m.loading = true
	}
	key, ctx, set := m.active, m.ctx, m.tables
	return func() tea.Msg {
		return loadedMsg{key: key, err: set.SyncFilters(ctx)}
	}
}

func (m *Model) clearFilters() tea.Cmd {
	m.filters.Clear()
	m.setStatus("Filters cleared")
	return m.syncAll()
}

// applyFilterInput merges space separated "field=value" terms into the
// filter store. start_date and end_date set the date range.
func (m *Model) applyFilterInput(s string) (tea.Cmd, error) {
	v := url.Values{}
	for _, term := range strings.Fields(s) {
		key, value, _ := strings.Cut(term, "=")
		if key == "start_date" || key == "end_date" {
			v.Set(key, value)
			continue
		}
		v.Add("filter", term)
	}

	fs, err := filters.ParseValues(v, m.location)
	if err != nil {
		return nil, err
	}
	for _, f := range fs.Filters {
		if err := m.filters.Set(f.Field, f.Value); err != nil {
			return nil, err
		}
	}
	if fs.StartDate != nil || fs.EndDate != nil {
		cur := m.filters.FilterState()
		start, end := cur.StartDate, cur.EndDate
		if fs.StartDate != nil {
			start = fs.StartDate
		}
		if fs.EndDate != nil {
			end = fs.EndDate
		}
		if err := m.filters.SetDateRange(start, end); err != nil {
			return nil, err
		}
	}
	return m.syncAll(), nil
}

// exportTable writes the table's current page to a CSV file in the export
// directory.
func (m *Model) exportTable(key string) tea.Cmd {
	t, def, ok := m.tables.Table(key)
	if !ok {
		m.setError(fmt.Errorf("%w: %s", core.ErrTableNotFound, key))
		return nil
	}
	if !def.IncludeExport {
		m.setError(fmt.Errorf("%s: export is not enabled for this table", key))
		return nil
	}

	ctx, dir, now := m.ctx, m.exportDir, m.now()
	return func() tea.Msg {
		if err := t.SyncFilters(ctx); err != nil && len(t.Columns()) == 0 {
			return exportedMsg{err: err}
		}

		path := filepath.Join(dir, core.ExportFilename(now, export.FormatCSV.Extension()))
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: fmt.Errorf("export failed: %w", err)}
		}
		werr := export.Write(f, export.FormatCSV, t.CSV())
		if cerr := f.Close(); werr == nil && cerr != nil {
			werr = fmt.Errorf("export failed: %w", cerr)
		}
		if werr != nil {
			return exportedMsg{err: werr}
		}
		return exportedMsg{path: path}
	}
}

// syncGrid rebuilds the grid from the active table's view. Rows are cleared
// before the columns change so the grid never renders a row wider than its
// columns.
func (m *Model) syncGrid() {
	t, _, ok := m.tables.Table(m.active)
	if !ok {
		return
	}
	m.view = t.View()
	headers := m.view.Headers
	if m.col >= len(headers) {
		m.col = max(len(headers)-1, 0)
	}

	cols := make([]table.Column, len(headers))
	for i, hd := range headers {
		title := hd.Label
		if hd.Sorted {
			title += sortArrow(hd.Direction)
		}
		if i == m.col {
			title = "›" + title
		}
		cols[i] = table.Column{Title: title, Width: lipgloss.Width(title)}
	}

	rows := make([]table.Row, len(m.view.Rows))
	for r, vr := range m.view.Rows {
		row := make(table.Row, len(headers))
		for i, hd := range headers {
			if hd.Index >= len(vr.Cells) {
				continue
			}
			text := strings.ReplaceAll(vr.Cells[hd.Index].Text, "\n", " ")
			row[i] = text
			cols[i].Width = max(cols[i].Width, lipgloss.Width(text))
		}
		rows[r] = row
	}
	for i := range cols {
		cols[i].Width = min(cols[i].Width, maxColumnWidth)
	}

	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if c := m.grid.Cursor(); c >= len(rows) {
		m.grid.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	msg := core.MapError(err)
	m.status = msg.Message + " (" + msg.Code + ")"
	m.statusErr = true
}

// stepPageSize moves to the neighbouring page size option.
func stepPageSize(current, step int) int {
	opts := core.PageSizeOptions
	i := slices.Index(opts, current)
	if i < 0 {
		return opts[0]
	}
	return opts[min(max(i+step, 0), len(opts)-1)]
}

func sortArrow(d core.Direction) string {
	if d == core.Asc {
		return " ▲"
	}
	return " ▼"
}
