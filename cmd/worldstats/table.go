package main

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// renderTable writes rows as an aligned text table. A nil header renders
// the rows alone.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w)

	if len(header) > 0 {
		cells := make([]any, len(header))
		for i, h := range header {
			cells[i] = h
		}
		table.Header(cells...)
	}

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}
