package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable renders the rounded tables used by the catalog and config
// views. Columns default to left alignment; countColumns lists zero-based
// columns holding numbers, which are right-aligned under a left-aligned
// header. Short rows are padded so ragged input still renders.
func renderTable(headers []string, rows [][]string, countColumns ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}

	if len(countColumns) > 0 {
		configs := make([]table.ColumnConfig, 0, len(countColumns))
		for _, column := range countColumns {
			configs = append(configs, table.ColumnConfig{
				Number:      column + 1,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
