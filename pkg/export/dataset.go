// Package export renders tabular admissions data into downloadable CSV and PDF files.
package export

import (
	"errors"
	"time"
)

// ErrNoColumns is returned when a dataset has nothing to render.
var ErrNoColumns = errors.New("export: dataset has no columns")

// Column describes one output column. Weight sizes the column relative to the others in PDF
// output; zero counts as one.
type Column struct {
	Header string
	Weight float64
}

// Dataset is a rendered table. Rows are positional and follow Columns.
type Dataset struct {
	Title       string
	Columns     []Column
	Rows        [][]string
	GeneratedAt time.Time
}

// Headers lists the column headers in order.
func (d Dataset) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		headers[i] = col.Header
	}
	return headers
}

func (d Dataset) cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
