package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func column(rows []Row, i int) []any {
	out := make([]any, len(rows))
	for r, row := range rows {
		out[r] = row[i]
	}
	return out
}

func TestSortRows_Numeric(t *testing.T) {
	newRows := func() []Row {
		return []Row{
			{json.Number("5"), "e"},
			{json.Number("-1"), "a"},
			{json.Number("12.5"), "f"},
			{json.Number("3"), "c"},
			{json.Number("3"), "d"},
		}
	}

	t.Run("asc is non-decreasing", func(t *testing.T) {
		rows := newRows()
		if err := SortRows(rows, 0, Asc, language.English); err != nil {
			t.Fatalf("SortRows() error = %v", err)
		}
		for i := 1; i < len(rows); i++ {
			prev, _ := numericValue(rows[i-1][0])
			cur, _ := numericValue(rows[i][0])
			if prev > cur {
				t.Errorf("rows[%d]=%v > rows[%d]=%v", i-1, prev, i, cur)
			}
		}
		// Stable: equal keys keep their input order.
		if rows[1][1] != "c" || rows[2][1] != "d" {
			t.Errorf("equal keys reordered: %v", column(rows, 1))
		}
	})

	t.Run("desc is non-increasing", func(t *testing.T) {
		rows := newRows()
		if err := SortRows(rows, 0, Desc, language.English); err != nil {
			t.Fatalf("SortRows() error = %v", err)
		}
		for i := 1; i < len(rows); i++ {
			prev, _ := numericValue(rows[i-1][0])
			cur, _ := numericValue(rows[i][0])
			if prev < cur {
				t.Errorf("rows[%d]=%v < rows[%d]=%v", i-1, prev, i, cur)
			}
		}
	})

	t.Run("go numeric types", func(t *testing.T) {
		rows := []Row{{int64(10)}, {2.5}, {7}}
		if err := SortRows(rows, 0, Asc, language.English); err != nil {
			t.Fatalf("SortRows() error = %v", err)
		}
		if diff := cmp.Diff([]any{2.5, 7, int64(10)}, column(rows, 0)); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSortRows_Strings(t *testing.T) {
	rows := []Row{{"cherry"}, {"apple"}, {"Banana"}}

	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{"apple", "Banana", "cherry"}, column(rows, 0)); diff != "" {
		t.Errorf("asc mismatch (-want +got):\n%s", diff)
	}

	if err := SortRows(rows, 0, Desc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{"cherry", "Banana", "apple"}, column(rows, 0)); diff != "" {
		t.Errorf("desc mismatch (-want +got):\n%s", diff)
	}
}

// The ascending string comparison does not fall through to a descending
// comparison when the left value is empty. Empty and null values collate as
// "" and therefore lead in ascending order and trail in descending order.
func TestSortRows_StringAscWithEmptyLeftValue(t *testing.T) {
	rows := []Row{{"beta"}, {nil}, {"alpha"}, {""}}

	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	got := column(rows, 0)
	if got[2] != "alpha" || got[3] != "beta" {
		t.Errorf("asc = %v, want empty values first then alpha, beta", got)
	}
	for _, v := range got[:2] {
		if CellString(v) != "" {
			t.Errorf("asc leading values = %v, want empty values", got[:2])
		}
	}

	if err := SortRows(rows, 0, Desc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	got = column(rows, 0)
	if got[0] != "beta" || got[1] != "alpha" {
		t.Errorf("desc = %v, want beta, alpha then empty values", got)
	}
}

func TestSortRows_NumericWithNulls(t *testing.T) {
	newRows := func() []Row {
		return []Row{{json.Number("1")}, {nil}, {json.Number("3")}}
	}

	rows := newRows()
	if err := SortRows(rows, 0, Desc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{json.Number("3"), json.Number("1"), nil}, column(rows, 0)); diff != "" {
		t.Errorf("desc mismatch (-want +got):\n%s", diff)
	}

	rows = newRows()
	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{nil, json.Number("1"), json.Number("3")}, column(rows, 0)); diff != "" {
		t.Errorf("asc mismatch (-want +got):\n%s", diff)
	}

	rows = []Row{{json.Number("2")}, {nil}, {json.Number("-4")}}
	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{json.Number("-4"), nil, json.Number("2")}, column(rows, 0)); diff != "" {
		t.Errorf("null should sort as zero (-want +got):\n%s", diff)
	}
}

func TestCompareCells_Antisymmetric(t *testing.T) {
	coll := collate.New(language.English)
	values := []any{json.Number("3"), json.Number("-1"), nil, "", "x", "Alpha", 2.5}
	for _, dir := range []Direction{Asc, Desc} {
		for _, a := range values {
			for _, b := range values {
				ab := compareCells(a, b, dir, coll)
				ba := compareCells(b, a, dir, coll)
				if sign(ab) != -sign(ba) {
					t.Errorf("%s: compare(%v, %v) = %d but compare(%v, %v) = %d", dir, a, b, ab, b, a, ba)
				}
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func TestSortRows_NumbersBeforeText(t *testing.T) {
	rows := []Row{{"n/a"}, {json.Number("7")}, {json.Number("2")}}
	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{json.Number("2"), json.Number("7"), "n/a"}, column(rows, 0)); diff != "" {
		t.Errorf("asc mismatch (-want +got):\n%s", diff)
	}

	if err := SortRows(rows, 0, Desc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if diff := cmp.Diff([]any{"n/a", json.Number("7"), json.Number("2")}, column(rows, 0)); diff != "" {
		t.Errorf("desc mismatch (-want +got):\n%s", diff)
	}
}

func TestSortRows_NestedObjectsUseJSONText(t *testing.T) {
	rows := []Row{
		{NewRecord("timestamp", "2024-02-01")},
		{NewRecord("timestamp", "2024-01-01")},
	}
	if err := SortRows(rows, 0, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	first := rows[0][0].(Record)
	if ts, _ := first.Get("timestamp"); ts != "2024-01-01" {
		t.Errorf("first timestamp = %v, want 2024-01-01", ts)
	}
}

func TestSortRows_InvalidColumn(t *testing.T) {
	if err := SortRows([]Row{{1}}, -1, Asc, language.English); err != ErrInvalidSortColumn {
		t.Errorf("SortRows(-1) error = %v, want ErrInvalidSortColumn", err)
	}
}

func TestSortRows_ShortRowsTreatMissingAsEmpty(t *testing.T) {
	rows := []Row{{"a", "z"}, {"b"}}
	if err := SortRows(rows, 1, Asc, language.English); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if rows[0][0] != "b" {
		t.Errorf("short row should sort first in asc, got %v", rows)
	}
}
