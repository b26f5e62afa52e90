// Package export writes a table's CSV matrix as a downloadable artifact.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/changelog/internal/core"
)

// SheetName is the worksheet name used in XLSX exports.
const SheetName = "changelog"

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat parses "csv" or "xlsx", case-insensitively.
// An empty string selects CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// Write encodes matrix to w in format f. The first row of matrix is the
// header, as produced by core.ConvertToCSV.
func Write(w io.Writer, f Format, matrix [][]any) error {
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(w, matrix)
	case FormatXLSX:
		err = WriteXLSX(w, matrix)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}

// WriteCSV writes matrix as RFC 4180 CSV.
func WriteCSV(w io.Writer, matrix [][]any) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(core.StringRecords(matrix)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes matrix to a single-sheet workbook with a bold, frozen
// header row. Numbers are stored as numbers.
func WriteXLSX(w io.Writer, matrix [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for r, row := range matrix {
		values := make([]any, len(row))
		for c, cell := range row {
			values[c] = xlsxValue(cell)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(SheetName, axis, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if len(matrix) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case string, bool, int, int64, float64:
		return x
	default:
		return core.CellString(x)
	}
}
