package tui

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/filters"
	"github.com/JonMunkholm/changelog/internal/notify"
)

const tableHelp = "←/→ column · s sort · enter expand · n/p page · +/- per page · / filter · c clear · r refresh · e export · esc menu"

func (m Model) View() string {
	var b strings.Builder

	switch m.mode {
	case modeMenu:
		m.viewMenu(&b)
	case modeTable, modeFilter:
		m.viewTable(&b)
	case modeNotifications:
		m.viewNotifications(&b)
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus())
	return b.String()
}

func (m Model) viewMenu(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render(m.menu.Title))
	b.WriteString("\n")

	for i, item := range m.menu.Items {
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + item.Label))
		} else {
			b.WriteString(m.styles.Item.Render(item.Label))
		}
		b.WriteString("\n")
	}
}

func (m Model) viewTable(b *strings.Builder) {
	_, def, _ := m.tables.Table(m.active)
	v := m.view

	b.WriteString(m.styles.Title.Render(def.Label))
	b.WriteString("\n")
	if summary := filterSummary(m.filters); summary != "" {
		b.WriteString(m.styles.Muted.Render("Filters: " + summary))
		b.WriteString("\n")
	}

	if v.Empty {
		b.WriteString(m.styles.Muted.Render("No rows found"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.grid.View())
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("Page %d of %d (%d rows) · %d per page", v.Page, v.TotalPages, v.Count, v.PageSize)
	if m.loading {
		footer += " · loading…"
	}
	b.WriteString(m.styles.Muted.Render(footer))
	b.WriteString("\n")

	for _, row := range v.Rows {
		if row.Detail != nil {
			b.WriteString(m.renderDetail(*row.Detail))
			b.WriteString("\n")
		}
	}

	if m.mode == modeFilter {
		b.WriteString("Filter: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render(tableHelp))
	b.WriteString("\n")
}

func (m Model) renderDetail(d core.Detail) string {
	var lines []string
	lines = append(lines, m.styles.Column.Render(d.Column))
	for _, f := range d.Fields {
		lines = append(lines, m.styles.Label.Render(f.Label+": ")+f.Value)
	}
	if d.Text != "" {
		lines = append(lines, d.Text)
	}
	return m.styles.Detail.Render(strings.Join(lines, "\n"))
}

func (m Model) viewNotifications(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("Notifications"))
	b.WriteString("\n")

	list := m.notifier.List()
	if len(list) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing to show"))
		b.WriteString("\n")
	}
	for i, n := range list {
		line := n.CreatedAt.Format("15:04:05") + "  " + n.Title
		if n.Detail != "" {
			line += " " + n.Detail
		}
		style := m.styles.Info
		if n.Level == notify.LevelError {
			style = m.styles.Error
		}
		prefix := "  "
		if i == m.cursor {
			prefix = "> "
		}
		b.WriteString(prefix + style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render("d dismiss · esc menu"))
	b.WriteString("\n")
}

func (m Model) viewStatus() string {
	var parts []string
	if m.status != "" {
		if m.statusErr {
			parts = append(parts, m.styles.Error.Render(m.status))
		} else {
			parts = append(parts, m.styles.Info.Render(m.status))
		}
	}
	if n := m.notifier.Len(); n > 0 {
		parts = append(parts, m.styles.Muted.Render(fmt.Sprintf("%d notification(s)", n)))
	}
	return strings.Join(parts, "  ")
}

func filterSummary(s *filters.Store) string {
	fs := s.FilterState()
	var parts []string
	for _, f := range fs.Filters {
		parts = append(parts, f.Field+"="+f.Value)
	}
	if fs.StartDate != nil {
		parts = append(parts, "from "+fs.StartDate.Format(filters.DateLayout))
	}
	if fs.EndDate != nil {
		parts = append(parts, "to "+fs.EndDate.Format(filters.DateLayout))
	}
	return strings.Join(parts, ", ")
}
