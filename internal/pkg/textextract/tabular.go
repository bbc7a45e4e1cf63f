package textextract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Tabular parses a CSV export (header row + data rows) and renders one
// descriptive sentence per row, so row-level facts survive as coherent
// natural-language chunks instead of being lost in tabular structure.
type Tabular struct{}

func (e *Tabular) Extract(data []byte) Result {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return placeholder("unreadable csv: " + err.Error())
	}
	if len(rows) == 0 {
		return placeholder("empty table")
	}

	header := rows[0]
	if len(rows) == 1 {
		return placeholder("table has no data rows")
	}

	var b strings.Builder
	for n, row := range rows[1:] {
		fmt.Fprintf(&b, "Record %d: ", n+1)
		for j, value := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(columnName(header, j))
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(value))
		}
		b.WriteString(".\n")
	}
	return Result{Pages: []Page{{Number: 1, Text: strings.TrimSpace(b.String())}}}
}

func columnName(header []string, j int) string {
	if j < len(header) {
		if name := strings.TrimSpace(header[j]); name != "" {
			return name
		}
	}
	return fmt.Sprintf("column %d", j+1)
}
