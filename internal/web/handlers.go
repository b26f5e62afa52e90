package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/export"
	"github.com/JonMunkholm/changelog/internal/filters"
	"github.com/JonMunkholm/changelog/internal/logging"
	"github.com/JonMunkholm/changelog/internal/web/templates"
)

// handleDashboard renders the filter bar and every mounted table. Tables
// that have not fetched yet, or whose filters changed, fetch first.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.tables.SyncFilters(ctx); err != nil {
		logging.FromContext(ctx).Debug("dashboard fetch failed", "error", err)
	}

	defs := s.tables.Definitions()
	data := templates.DashboardData{
		Filters: s.filters.FilterState(),
		Tables:  make([]templates.TableData, 0, len(defs)),
	}
	for _, def := range defs {
		t, _, _ := s.tables.Table(def.Key)
		data.Tables = append(data.Tables, tableData(def, t))
	}

	s.render(w, r, templates.Layout("Dashboard", s.nav(), templates.Dashboard(data)))
}

// handleTableView renders one table, as a full page or as an htmx fragment.
func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	t, def, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	err := t.SyncFilters(r.Context())
	if isHTMX(r) {
		s.renderSection(w, r, def, t, err)
		return
	}

	page := templates.Dashboard(templates.DashboardData{
		Filters: s.filters.FilterState(),
		Tables:  []templates.TableData{tableData(def, t)},
	})
	s.render(w, r, templates.Layout(def.Label, s.nav(), page))
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(t *core.Table) error {
		page, err := formInt(r, "page")
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidPage, err)
		}
		return t.SetPage(r.Context(), page)
	})
}

func (s *Server) handleSetPageSize(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(t *core.Table) error {
		size, err := formInt(r, "per_page")
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidPage, err)
		}
		return t.SetPageSize(r.Context(), size)
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(t *core.Table) error {
		column, err := formInt(r, "column")
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidSortColumn, err)
		}
		return t.Sort(column, core.ParseDirection(r.PostFormValue("direction")))
	})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(t *core.Table) error {
		row, err := formInt(r, "row")
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidRow, err)
		}
		col, err := formInt(r, "col")
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidColumn, err)
		}
		return t.ToggleExpanded(row, col)
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.tableAction(w, r, func(t *core.Table) error {
		return t.Refresh(r.Context())
	})
}

// tableAction applies fn to the addressed table and answers with the
// updated section (htmx) or a redirect back to the page (plain forms).
// Input errors are reported to the caller. Fetch errors already went to the
// notification center, so the section is rendered with its last rows.
func (s *Server) tableAction(w http.ResponseWriter, r *http.Request, fn func(*core.Table) error) {
	t, def, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidPage, err))
		return
	}

	err := fn(t)
	if err != nil && isInputError(err) {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderSection(w, r, def, t, err)
		return
	}
	redirectBack(w, r, "/table/"+def.Key)
}

// handleExport downloads the current page of a table as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, def, ok := s.lookupTable(w, r)
	if !ok {
		return
	}
	if !def.IncludeExport {
		s.respondError(w, r, fmt.Errorf("%w: %s", errExportDisabled, def.Key))
		return
	}

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := t.SyncFilters(r.Context()); err != nil && !t.Loaded() {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, t.CSV()); err != nil {
		s.respondError(w, r, err)
		return
	}

	filename := core.ExportFilename(time.Now(), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = buf.WriteTo(w)

	logging.FromContext(r.Context()).Info("table exported",
		"table", def.Key,
		"format", string(format),
		"rows", t.Count(),
	)
}

// handleApplyFilters replaces the global filter selection and refetches
// every table whose filters changed.
func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", filters.ErrInvalidFilter, err))
		return
	}

	fs, err := filters.ParseValues(r.PostForm, s.location)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.filters.Replace(fs); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.afterFilterChange(w, r)
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	s.filters.Clear()
	s.afterFilterChange(w, r)
}

func (s *Server) afterFilterChange(w http.ResponseWriter, r *http.Request) {
	if err := s.tables.SyncFilters(r.Context()); err != nil {
		logging.FromContext(r.Context()).Debug("filter fetch failed", "error", err)
	}
	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectBack(w, r, "/")
}

// handleNotificationsFragment renders the notification area.
func (s *Server) handleNotificationsFragment(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templates.NotificationList(s.notifier.List()))
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.notifier.Dismiss(id) {
		s.respondError(w, r, fmt.Errorf("%w: %s", errNotificationNotFound, id))
		return
	}

	switch {
	case isHTMX(r):
		s.handleNotificationsFragment(w, r)
	case acceptsJSON(r):
		w.WriteHeader(http.StatusNoContent)
	default:
		redirectBack(w, r, "/")
	}
}

func (s *Server) lookupTable(w http.ResponseWriter, r *http.Request) (*core.Table, core.TableDefinition, bool) {
	key := chi.URLParam(r, "tableKey")
	t, def, ok := s.tables.Table(key)
	if !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrTableNotFound, key))
		return nil, core.TableDefinition{}, false
	}
	return t, def, true
}

// renderSection writes one table section. When the last fetch failed the
// notification area is told to refresh.
func (s *Server) renderSection(w http.ResponseWriter, r *http.Request, def core.TableDefinition, t *core.Table, fetchErr error) {
	if fetchErr != nil {
		w.Header().Set("HX-Trigger", "refresh-notifications")
	}
	s.render(w, r, templates.TableSection(tableData(def, t)))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) nav() []templates.NavItem {
	defs := s.tables.Definitions()
	items := make([]templates.NavItem, len(defs))
	for i, def := range defs {
		items[i] = templates.NavItem{Key: def.Key, Label: def.Label}
	}
	return items
}

func tableData(def core.TableDefinition, t *core.Table) templates.TableData {
	return templates.TableData{
		Key:           def.Key,
		Label:         def.Label,
		IncludeExport: def.IncludeExport,
		View:          t.View(),
	}
}
