package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/notify"
)

// TableData is everything needed to render one table section.
type TableData struct {
	Key           string
	Label         string
	IncludeExport bool
	View          core.View
}

// SectionID returns the DOM id of a table section.
func SectionID(key string) string {
	return "table-" + key
}

// TableSection renders a table with its sort headers, expandable cells,
// pagination and export links. Every control is a form so the page works
// without htmx; with htmx the section swaps itself.
func TableSection(d TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		id := SectionID(d.Key)
		base := "/table/" + d.Key
		v := d.View

		h.open("section", "id", id, "class", "table-section")

		h.open("header")
		h.elem("h2", d.Label)
		actionForm(h, base+"/refresh", id, "Refresh")
		if d.IncludeExport {
			h.elem("a", "Export CSV", "href", base+"/export.csv")
			h.elem("a", "Export XLSX", "href", base+"/export.xlsx")
		}
		h.close("header")

		visible := make(map[int]bool, len(v.Headers))
		for _, hd := range v.Headers {
			visible[hd.Index] = true
		}
		span := itoa(max(len(v.Headers), 1))

		h.open("table")
		h.open("thead")
		h.open("tr")
		for _, hd := range v.Headers {
			next := hd.Direction
			if hd.Sorted {
				next = hd.Direction.Opposite()
			}
			h.open("th", "aria-sort", ariaSort(hd))
			h.open("form", "method", "post", "action", base+"/sort",
				"hx-post", base+"/sort", "hx-target", "#"+id, "hx-swap", "outerHTML")
			h.hidden("column", itoa(hd.Index))
			h.hidden("direction", string(next))
			h.open("button", "type", "submit")
			h.text(hd.Label)
			if hd.Sorted {
				h.text(sortArrow(hd.Direction))
			}
			h.close("button")
			h.close("form")
			h.close("th")
		}
		h.close("tr")
		h.close("thead")

		h.open("tbody")
		if v.Empty {
			h.open("tr")
			h.elem("td", "No rows found", "colspan", span, "class", "muted")
			h.close("tr")
		}
		for _, row := range v.Rows {
			h.open("tr")
			for _, cell := range row.Cells {
				if !visible[cell.Index] {
					continue
				}
				class := ""
				if cell.Expanded {
					class = "expanded"
				}
				h.open("td", "class", class)
				h.open("form", "method", "post", "action", base+"/expand",
					"hx-post", base+"/expand", "hx-target", "#"+id, "hx-swap", "outerHTML")
				h.hidden("row", itoa(row.Index))
				h.hidden("col", itoa(cell.Index))
				h.elem("button", cell.Text, "type", "submit")
				h.close("form")
				h.close("td")
			}
			h.close("tr")
			if row.Detail != nil {
				h.open("tr", "class", "detail")
				h.open("td", "colspan", span)
				detail(h, *row.Detail)
				h.close("td")
				h.close("tr")
			}
		}
		h.close("tbody")
		h.close("table")

		pagination(h, base, id, v)

		h.close("section")
		return h.err
	})
}

func detail(h *htmlWriter, d core.Detail) {
	if len(d.Fields) == 0 {
		h.elem("pre", d.Text)
		return
	}
	h.open("dl")
	for _, f := range d.Fields {
		h.elem("dt", f.Label)
		h.elem("dd", f.Value)
	}
	h.close("dl")
}

func pagination(h *htmlWriter, base, id string, v core.View) {
	h.open("footer")

	if v.Page > 1 {
		pageForm(h, base, id, v.Page-1, "Previous")
	}
	h.elem("span", "Page "+itoa(v.Page)+" of "+itoa(v.TotalPages)+" ("+itoa(v.Count)+" rows)")
	if v.Page < v.TotalPages {
		pageForm(h, base, id, v.Page+1, "Next")
	}

	h.open("form", "method", "post", "action", base+"/per-page",
		"hx-post", base+"/per-page", "hx-target", "#"+id, "hx-swap", "outerHTML", "hx-trigger", "change")
	h.open("label")
	h.text("Rows per page ")
	h.open("select", "name", "per_page")
	for _, n := range core.PageSizeOptions {
		if n == v.PageSize {
			h.open("option", "value", itoa(n), "selected", "selected")
		} else {
			h.open("option", "value", itoa(n))
		}
		h.text(itoa(n))
		h.close("option")
	}
	h.close("select")
	h.close("label")
	h.raw(`<noscript><button type="submit">Apply</button></noscript>`)
	h.close("form")

	h.close("footer")
}

func pageForm(h *htmlWriter, base, id string, page int, label string) {
	h.open("form", "method", "post", "action", base+"/page",
		"hx-post", base+"/page", "hx-target", "#"+id, "hx-swap", "outerHTML")
	h.hidden("page", itoa(page))
	h.elem("button", label, "type", "submit")
	h.close("form")
}

func actionForm(h *htmlWriter, action, id, label string) {
	h.open("form", "method", "post", "action", action,
		"hx-post", action, "hx-target", "#"+id, "hx-swap", "outerHTML")
	h.elem("button", label, "type", "submit")
	h.close("form")
}

func sortArrow(d core.Direction) string {
	if d == core.Asc {
		return " ▲"
	}
	return " ▼"
}

func ariaSort(hd core.Header) string {
	switch {
	case !hd.Sorted:
		return "none"
	case hd.Direction == core.Asc:
		return "ascending"
	default:
		return "descending"
	}
}

// FilterBar renders the global filter form.
func FilterBar(fs core.FilterState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("form", "class", "filters", "method", "post", "action", "/filters")

		for _, f := range fs.Filters {
			h.open("label")
			h.text(f.Field + " ")
			h.raw("<input")
			h.attr("name", "filter")
			h.attr("value", f.Field+"="+f.Value)
			h.raw(">")
			h.close("label")
		}
		h.open("label")
		h.text("Add filter ")
		h.raw(`<input name="filter" placeholder="field=value">`)
		h.close("label")

		dateInput(h, "start_date", "From ", fs.StartDate)
		dateInput(h, "end_date", "To ", fs.EndDate)

		h.elem("button", "Apply", "type", "submit")
		h.close("form")

		h.open("form", "method", "post", "action", "/filters/clear")
		h.elem("button", "Clear filters", "type", "submit")
		h.close("form")
		return h.err
	})
}

func dateInput(h *htmlWriter, name, label string, t *time.Time) {
	h.open("label")
	h.text(label)
	value := ""
	if t != nil {
		value = t.Format("2006-01-02")
	}
	h.raw("<input")
	h.attr("type", "date")
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
	h.close("label")
}

// DashboardData is the content of the home page.
type DashboardData struct {
	Filters core.FilterState
	Tables  []TableData
}

// Dashboard renders the filter bar and every mounted table.
func Dashboard(d DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.component(FilterBar(d.Filters))
		if len(d.Tables) == 0 {
			h.elem("p", "No tables are configured.", "class", "muted")
		}
		for _, t := range d.Tables {
			h.component(TableSection(t))
		}
		return h.err
	})
}

// NotificationList renders notifications, newest first, each with a
// dismiss control.
func NotificationList(ns []notify.Notification) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		for _, n := range ns {
			h.open("div", "class", "alert alert-"+string(n.Level), "role", "status")
			h.elem("strong", n.Title)
			if n.Detail != "" {
				h.raw(" ")
				h.elem("span", n.Detail)
			}
			action := "/api/notifications/" + n.ID + "/dismiss"
			h.open("form", "method", "post", "action", action,
				"hx-post", action, "hx-target", "#notifications", "hx-swap", "innerHTML")
			h.elem("button", "Dismiss", "type", "submit")
			h.close("form")
			h.close("div")
		}
		return h.err
	})
}
