package core

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortRows orders rows in place by the value at column.
//
// Numbers compare by value and everything else by locale collation of
// CellString. Null and empty values count as zero, so in a numeric column
// they sort among the numbers. Numbers rank before text in Asc order and
// after it in Desc order. The sort is stable.
func SortRows(rows []Row, column int, dir Direction, locale language.Tag) error {
	if column < 0 {
		return ErrInvalidSortColumn
	}

	coll := collate.New(locale)
	slices.SortStableFunc(rows, func(a, b Row) int {
		return compareCells(cellAt(a, column), cellAt(b, column), dir, coll)
	})
	return nil
}

func compareCells(a, b any, dir Direction, coll *collate.Collator) int {
	c := ascending(a, b, coll)
	if dir == Asc {
		return c
	}
	return -c
}

func ascending(a, b any, coll *collate.Collator) int {
	af, aNum := sortNumber(a)
	bf, bNum := sortNumber(b)
	switch {
	case aNum && bNum:
		return cmp.Compare(af, bf)
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return coll.CompareString(CellString(a), CellString(b))
}

// sortNumber returns the numeric sort key of v. Null and empty values
// count as zero.
func sortNumber(v any) (float64, bool) {
	if v == nil || v == "" {
		return 0, true
	}
	return numericValue(v)
}

func cellAt(row Row, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}
