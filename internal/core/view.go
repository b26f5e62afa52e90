package core

// Header is a rendered column header.
type Header struct {
	Index  int
	Name   string
	Label  string
	Sorted bool
	// Direction is the active direction when Sorted, otherwise the
	// direction a click would apply.
	Direction Direction
}

// ViewCell is a rendered body cell.
type ViewCell struct {
	Index    int
	Column   string
	Text     string
	Expanded bool
}

// ViewRow is a rendered body row and its optional expanded content.
type ViewRow struct {
	Index  int
	Cells  []ViewCell
	Detail *Detail
}

// View is a render-ready snapshot of a Table.
type View struct {
	DataPath   string
	Headers    []Header
	Rows       []ViewRow
	Page       int
	PageSize   int
	Count      int
	TotalPages int
	Sort       SortState
	// Empty is true when the last response had no rows ("No rows found").
	Empty bool
}

// TotalPages returns the number of pages for count rows, at least 1.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// View builds a snapshot of the table using the configured render hooks.
func (t *Table) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View{
		DataPath:   t.dataPath,
		Page:       t.page,
		PageSize:   t.pageSize,
		Count:      t.count,
		TotalPages: TotalPages(t.count, t.pageSize),
		Sort:       t.sort,
		Empty:      len(t.rows) == 0,
	}

	for i, col := range t.columns {
		label := col
		if t.hooks.Column != nil {
			l, ok := t.hooks.Column(col)
			if !ok {
				continue
			}
			label = l
		}
		h := Header{Index: i, Name: col, Label: label, Direction: Asc}
		if t.sort.Column == i {
			h.Sorted = true
			h.Direction = t.sort.Direction
		}
		v.Headers = append(v.Headers, h)
	}

	v.Rows = make([]ViewRow, len(t.rows))
	for r, row := range t.rows {
		vr := ViewRow{Index: r, Cells: make([]ViewCell, len(row))}
		for c, cell := range row {
			var text string
			if t.hooks.Cell != nil {
				text = t.hooks.Cell(cell, row, t.columns, r, c)
			} else {
				text = CellString(cell)
			}
			vr.Cells[c] = ViewCell{
				Index:    c,
				Column:   columnName(t.columns, c),
				Text:     text,
				Expanded: t.expanded.IsExpanded(r, c),
			}
		}
		if col, ok := t.expanded.Column(r); ok && col < len(row) {
			d := BuildDetail(columnName(t.columns, col), row[col])
			vr.Detail = &d
		}
		v.Rows[r] = vr
	}

	return v
}

func columnName(columns []string, i int) string {
	if i < 0 || i >= len(columns) {
		return ""
	}
	return columns[i]
}
