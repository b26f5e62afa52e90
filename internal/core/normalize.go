package core

// Normalize splits a response into columns, positional rows and a count.
//
// Columns are the keys of the first record. Every record is expected to have
// the same keys in the same order; a record that differs misaligns silently
// because rows are read positionally.
func Normalize(resp Response) (columns []string, rows []Row, count int) {
	if len(resp.Data) == 0 {
		return []string{}, []Row{}, 0
	}

	columns = resp.Data[0].Keys()
	rows = make([]Row, len(resp.Data))
	for i, rec := range resp.Data {
		rows[i] = Row(rec.Values())
	}
	return columns, rows, resp.Count
}
