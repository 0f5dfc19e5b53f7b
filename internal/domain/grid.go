package domain

import "strings"

// RecordsFromGrid converts worksheet cells, header row first, into raw
// records. Cells missing at the end of a short row read as empty strings,
// columns with a blank header are dropped and fully blank rows are skipped.
func RecordsFromGrid(rows [][]any) []RawRecord {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = stringify(h)
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		rec := make(RawRecord, len(header))
		for i, col := range header {
			if strings.TrimSpace(col) == "" {
				continue
			}
			if i < len(cells) {
				rec[col] = cells[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

func blankRow(cells []any) bool {
	for _, c := range cells {
		if strings.TrimSpace(stringify(c)) != "" {
			return false
		}
	}
	return true
}
