package core

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// FetchAll retrieves every page of dataPath for the filter selection and
// returns the combined columns and rows. The first page supplies the total
// count and the column order; the remaining pages are fetched concurrently,
// at most limit at a time (limit < 1 means unbounded).
func FetchAll(ctx context.Context, f Fetcher, dataPath string, filters FilterState, pageSize, limit int) ([]string, []Row, error) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	first, err := f.Fetch(ctx, dataPath, Query{Page: 1, PerPage: pageSize, Filters: filters})
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return []string{}, []Row{}, nil
	}
	columns, rows, _ := Normalize(*first)

	pages := TotalPages(first.Count, pageSize)
	rest := make([]*Response, pages-1)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range rest {
		q := Query{Page: i + 2, PerPage: pageSize, Filters: filters}
		g.Go(func() error {
			resp, err := f.Fetch(gctx, dataPath, q)
			if err != nil {
				return err
			}
			rest[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, resp := range rest {
		if resp == nil {
			continue
		}
		pageCols, pageRows, _ := Normalize(*resp)
		if len(columns) == 0 {
			columns = pageCols
		}
		rows = append(rows, alignRows(columns, pageCols, pageRows)...)
	}
	return columns, rows, nil
}

// alignRows reorders rows laid out by from into the order of to. Columns
// missing from a page are nil.
func alignRows(to, from []string, rows []Row) []Row {
	if slices.Equal(to, from) {
		return rows
	}
	out := make([]Row, len(rows))
	for r, row := range rows {
		aligned := make(Row, len(to))
		for i, col := range to {
			if j := slices.Index(from, col); j >= 0 && j < len(row) {
				aligned[i] = row[j]
			}
		}
		out[r] = aligned
	}
	return out
}
