package services

import (
	"encoding/csv"
	"fmt"
	"io"

	"ventrilinks/providers/airtable"
)

// WriteCSV schreibt Records als CSV. columns sind interne Feldnamen in
// Ausgabereihenfolge, display mappt sie auf die Spaltenüberschriften; die
// Record-ID steht immer in der ersten Spalte.
func WriteCSV(w io.Writer, columns []string, display map[string]string, records []airtable.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(columns)+1)
	header = append(header, "id")
	for _, col := range columns {
		name := display[col]
		if name == "" {
			name = col
		}
		header = append(header, name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(columns)+1)
	for _, rec := range records {
		row[0] = rec.ID
		for i, col := range columns {
			row[i+1] = cellValue(rec.Fields[col])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		// Ganzzahlen ohne Nachkommastellen ausgeben.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
