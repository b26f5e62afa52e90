package core

// Expansion tracks which cell, if any, is expanded on each row.
// A row has at most one expanded column; any number of rows may be expanded.
// The zero value is ready to use.
type Expansion struct {
	cells map[int]int
}

// Toggle collapses (row, col) if it is the row's expanded cell, otherwise
// makes col the row's expanded cell.
func (e *Expansion) Toggle(row, col int) {
	if e.cells == nil {
		e.cells = make(map[int]int)
	}
	if cur, ok := e.cells[row]; ok && cur == col {
		delete(e.cells, row)
		return
	}
	e.cells[row] = col
}

// IsExpanded reports whether (row, col) is the row's expanded cell.
func (e *Expansion) IsExpanded(row, col int) bool {
	cur, ok := e.cells[row]
	return ok && cur == col
}

// Column returns the expanded column for row.
func (e *Expansion) Column(row int) (int, bool) {
	col, ok := e.cells[row]
	return col, ok
}

// Len returns the number of expanded rows.
func (e *Expansion) Len() int { return len(e.cells) }

// Clear collapses every row.
func (e *Expansion) Clear() {
	e.cells = nil
}

// Snapshot returns a copy of the row -> column mapping.
func (e *Expansion) Snapshot() map[int]int {
	out := make(map[int]int, len(e.cells))
	for k, v := range e.cells {
		out[k] = v
	}
	return out
}
