package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Placeholder glyph for values that were not measured.
const Placeholder = "–"

// ExportColumn is one CSV column. Value returns false when the row has no
// value, in which case Placeholder is written.
type ExportColumn[T any] struct {
	Header      string
	Value       func(T) (string, bool)
	Placeholder string
}

// ExportCSV writes a header row and one record per visible row. An empty
// view still yields the header.
func (e *Engine[T]) ExportCSV(w io.Writer, columns []ExportColumn[T]) error {
	return WriteCSV(w, e.VisibleRows(), columns)
}

// WriteCSV serialises rows with RFC 4180 quoting.
func WriteCSV[T any](w io.Writer, rows []T, columns []ExportColumn[T]) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			v, ok := c.Value(row)
			if !ok {
				v = c.Placeholder
			}
			record[i] = v
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// FileName is "<dataset>-<YYYY-MM-DD>.csv".
func FileName(dataset string, t time.Time) string {
	return fmt.Sprintf("%s-%s.csv", dataset, t.Format(time.DateOnly))
}
