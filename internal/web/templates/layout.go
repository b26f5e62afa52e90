package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTMXScript is the htmx build loaded by every page.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4"

// htmxConfig swaps error responses too, so error alerts reach the page.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"[45]..","swap":true,"error":true}]}`

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f7f7f8;color:#1f2328}
main{max-width:1200px;margin:0 auto;padding:1rem}
nav{background:#24292f;color:#fff;padding:.75rem 1rem}nav a{color:#fff;margin-right:1rem;text-decoration:none}
table{border-collapse:collapse;width:100%;background:#fff}th,td{border:1px solid #d0d7de;padding:.35rem .5rem;text-align:left;vertical-align:top}
th button,td button{all:unset;cursor:pointer}td.expanded{background:#ddf4ff}tr.detail td{background:#f6f8fa}
.table-section{margin-bottom:2rem}.table-section header,.table-section footer{display:flex;gap:.75rem;align-items:center;margin:.5rem 0}
.alert{padding:.75rem;border-radius:6px;margin:.5rem 0}.alert-error{background:#ffebe9;border:1px solid #ff818266}
.alert-info{background:#ddf4ff;border:1px solid #54aeff66}.filters{display:flex;gap:.5rem;flex-wrap:wrap;align-items:end}
.muted{color:#656d76}`

// Layout wraps body in the page shell.
func Layout(title string, tables []NavItem, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<meta name="htmx-config" content='` + htmxConfig + `'>`)
		h.elem("title", title+" - Changelog")
		h.raw("<script")
		h.attr("src", HTMXScript)
		h.raw("></script><style>" + styles + "</style></head><body>")

		h.open("nav")
		h.elem("a", "Changelog", "href", "/")
		for _, item := range tables {
			h.elem("a", item.Label, "href", "/table/"+item.Key)
		}
		h.close("nav")

		h.open("main")
		h.raw(`<div id="notifications" hx-get="/notifications" hx-trigger="load, every 5s, refresh-notifications from:body" hx-swap="innerHTML"></div>`)
		h.component(body)
		h.close("main")
		h.raw("</body></html>")
		return h.err
	})
}

// NavItem is one entry in the page navigation.
type NavItem struct {
	Key   string
	Label string
}

// ErrorAlert renders a user-facing error.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newWriter(ctx, w)
		h.open("div", "class", "alert alert-error", "role", "alert")
		h.elem("strong", message)
		if action != "" {
			h.raw(" ")
			h.elem("span", action)
		}
		if code != "" {
			h.raw(" ")
			h.elem("span", "("+code+")", "class", "muted")
		}
		h.close("div")
		return h.err
	})
}
