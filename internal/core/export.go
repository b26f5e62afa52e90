package core

import (
	"fmt"
	"time"
)

// Column names whose cells hold a nested {id, timestamp, ...} object.
const (
	ColumnLatestCommit = "latest_commit"
	ColumnLatestDeploy = "latest_deploy"
)

// ExportPrefix is the leading part of every export filename.
const ExportPrefix = "changelog"

// CellFormatter rewrites one cell for export.
type CellFormatter func(cell any) any

// Formatters maps a column name to its export formatter.
type Formatters map[string]CellFormatter

// DefaultFormatters flattens the latest commit and deploy objects to their
// timestamps.
func DefaultFormatters() Formatters {
	return Formatters{
		ColumnLatestCommit: TimestampOrEmpty,
		ColumnLatestDeploy: TimestampOrEmpty,
	}
}

// TimestampOrEmpty returns the nested timestamp of a commit or deploy cell.
// A null cell, a cell whose id is the zero sentinel, or a cell that is not an
// object yields "".
func TimestampOrEmpty(cell any) any {
	rec, ok := cell.(Record)
	if !ok {
		return ""
	}
	if id, ok := rec.Get("id"); ok && isZeroID(id) {
		return ""
	}
	ts, ok := rec.Get("timestamp")
	if !ok || ts == nil {
		return ""
	}
	return ts
}

// ConvertToCSV mirrors the row matrix into export form: the first row is the
// column list, each following row is a copy of a table row with formatters
// applied by column name. Input rows are not modified.
func ConvertToCSV(rows []Row, columns []string, formatters Formatters) [][]any {
	out := make([][]any, 0, len(rows)+1)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	out = append(out, header)

	for _, row := range rows {
		tmp := make([]any, len(row))
		copy(tmp, row)
		for i, col := range columns {
			if i >= len(tmp) {
				break
			}
			if f, ok := formatters[col]; ok {
				tmp[i] = f(row[i])
			}
		}
		out = append(out, tmp)
	}

	return out
}

// StringRecords renders an export matrix as text records for a CSV writer.
func StringRecords(matrix [][]any) [][]string {
	out := make([][]string, len(matrix))
	for i, row := range matrix {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = CellString(v)
		}
		out[i] = rec
	}
	return out
}

// ExportFilename returns changelog-{month}-{day}-{year}.{ext} for now's local
// date, with a 1-based month and no zero padding.
func ExportFilename(now time.Time, ext string) string {
	now = now.Local()
	return fmt.Sprintf("%s-%d-%d-%d.%s", ExportPrefix, int(now.Month()), now.Day(), now.Year(), ext)
}
