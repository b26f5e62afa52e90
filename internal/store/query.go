package store

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/changelog/internal/core"
)

var (
	// ErrUnknownFilter is returned for a filter field the dataset does not
	// allow.
	ErrUnknownFilter = errors.New("unknown filter field")

	// ErrInvalidParam is returned for a malformed query parameter.
	ErrInvalidParam = errors.New("invalid query parameter")
)

// reservedParams are the query parameters that are not filters.
var reservedParams = map[string]bool{
	"offset":     true,
	"limit":      true,
	"start_date": true,
	"end_date":   true,
}

// Page is one decoded data request.
type Page struct {
	Offset  int
	Limit   int
	Filters []core.Filter
	Start   *time.Time
	End     *time.Time
}

// ParsePage decodes the query of a data request. Every parameter other
// than offset, limit, start_date and end_date is an equality filter.
// Limit defaults to core.DefaultPageSize and is capped at maxLimit.
func ParsePage(v url.Values, maxLimit int) (Page, error) {
	p := Page{Limit: core.DefaultPageSize}

	var err error
	if s := v.Get("offset"); s != "" {
		if p.Offset, err = strconv.Atoi(s); err != nil || p.Offset < 0 {
			return Page{}, fmt.Errorf("%w: offset=%q", ErrInvalidParam, s)
		}
	}
	if s := v.Get("limit"); s != "" {
		if p.Limit, err = strconv.Atoi(s); err != nil || p.Limit < 1 {
			return Page{}, fmt.Errorf("%w: limit=%q", ErrInvalidParam, s)
		}
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if p.Start, err = parseTime(v, "start_date"); err != nil {
		return Page{}, err
	}
	if p.End, err = parseTime(v, "end_date"); err != nil {
		return Page{}, err
	}

	// url.Values is a map; sort for a stable argument order.
	fields := make([]string, 0, len(v))
	for k := range v {
		if !reservedParams[k] {
			fields = append(fields, k)
		}
	}
	slices.Sort(fields)
	for _, k := range fields {
		p.Filters = append(p.Filters, core.Filter{Field: k, Value: v.Get(k)})
	}

	return p, nil
}

func parseTime(v url.Values, key string) (*time.Time, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, s)
	}
	return &t, nil
}

// whereBuilder accumulates conditions with positional arguments.
type whereBuilder struct {
	conditions []string
	args       []any
}

func (wb *whereBuilder) add(format string, arg any) {
	wb.args = append(wb.args, arg)
	wb.conditions = append(wb.conditions, fmt.Sprintf(format, len(wb.args)))
}

func (wb *whereBuilder) build() string {
	if len(wb.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(wb.conditions, " AND ")
}

// buildQueries returns the count and page queries for p and their shared
// arguments. The page query appends limit and offset as the last two
// arguments.
func buildQueries(ds Dataset, p Page) (countSQL, pageSQL string, args []any, err error) {
	wb := &whereBuilder{}

	for _, f := range p.Filters {
		if !ds.allows(f.Field) {
			return "", "", nil, fmt.Errorf("%w: %q", ErrUnknownFilter, f.Field)
		}
		wb.add(quoteIdentifier(f.Field)+"::text = $%d", f.Value)
	}
	if ds.DateColumn != "" {
		col := quoteIdentifier(ds.DateColumn)
		if p.Start != nil {
			wb.add(col+" >= $%d", *p.Start)
		}
		if p.End != nil {
			wb.add(col+" <= $%d", *p.End)
		}
	}

	rel := quoteIdentifier(ds.Relation)
	where := wb.build()

	countSQL = fmt.Sprintf("SELECT COUNT(*) FROM %s%s", rel, where)

	order := ""
	if ds.OrderBy != "" {
		order = fmt.Sprintf(" ORDER BY %s DESC", quoteIdentifier(ds.OrderBy))
	}
	n := len(wb.args)
	pageSQL = fmt.Sprintf(
		"SELECT row_to_json(t)::text FROM (SELECT * FROM %s%s%s LIMIT $%d OFFSET $%d) AS t",
		rel, where, order, n+1, n+2,
	)

	return countSQL, pageSQL, wb.args, nil
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes.
// A dotted name is quoted per part so schema-qualified relations work.
func quoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
