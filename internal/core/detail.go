package core

// NoneSpecified is shown for a detail field that has no value.
const NoneSpecified = "None specified"

// DetailField is one labelled line of an expanded cell.
type DetailField struct {
	Label string
	Value string
}

// Detail is the content shown beneath a row for its expanded cell.
type Detail struct {
	Column string
	// Fields is set for commit and deploy cells.
	Fields []DetailField
	// Text is the plain rendering for any other column.
	Text string
}

// BuildDetail extracts the expanded content of a cell.
func BuildDetail(column string, cell any) Detail {
	switch column {
	case ColumnLatestCommit:
		return Detail{Column: column, Fields: pickFields(cell,
			[2]string{"Author", "author"},
			[2]string{"Message", "message"},
			[2]string{"Reference", "ref"},
		)}
	case ColumnLatestDeploy:
		return Detail{Column: column, Fields: pickFields(cell,
			[2]string{"Cluster", "cluster"},
			[2]string{"Image", "image"},
			[2]string{"Reference", "ref"},
		)}
	default:
		return Detail{Column: column, Text: CellString(cell)}
	}
}

func pickFields(cell any, specs ...[2]string) []DetailField {
	rec, _ := cell.(Record)
	fields := make([]DetailField, len(specs))
	for i, s := range specs {
		value := NoneSpecified
		if v, ok := rec.Get(s[1]); ok {
			if text := CellString(v); text != "" {
				value = text
			}
		}
		fields[i] = DetailField{Label: s[0], Value: value}
	}
	return fields
}
