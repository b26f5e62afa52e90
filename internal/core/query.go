package core

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query is the page and filter selection sent to the data endpoint.
type Query struct {
	Page    int
	PerPage int
	Filters FilterState
}

// Offset returns the zero-based index of the first row on the page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// Encode builds the query string, including the leading '?'.
//
// Parameter order is fixed: offset, limit, one pair per filter in selection
// order, then start_date and end_date when set. Dates use RFC 3339.
func (q Query) Encode() string {
	var b strings.Builder
	b.WriteString("?offset=")
	b.WriteString(strconv.Itoa(q.Offset()))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(q.PerPage))

	for _, f := range q.Filters.Filters {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(f.Field))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}

	if q.Filters.StartDate != nil {
		b.WriteString("&start_date=")
		b.WriteString(url.QueryEscape(q.Filters.StartDate.Format(time.RFC3339)))
	}
	if q.Filters.EndDate != nil {
		b.WriteString("&end_date=")
		b.WriteString(url.QueryEscape(q.Filters.EndDate.Format(time.RFC3339)))
	}

	return b.String()
}

// BuildURL joins base, dataPath and the encoded query.
func BuildURL(base, dataPath string, q Query) string {
	return base + dataPath + q.Encode()
}
