package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one rendered column.
type tableColumn struct {
	title string
	right bool
}

func col(title string) tableColumn { return tableColumn{title: title} }
func rightCol(title string) tableColumn { return tableColumn{title: title, right: true} }

// renderTable draws rows under columns. Short rows are padded; a non-empty
// footer is drawn below a separator.
func renderTable(columns []tableColumn, rows [][]string, footer ...string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(len(columns), columnTitles(columns)))
	for _, row := range rows {
		tw.AppendRow(toRow(len(columns), row))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(len(columns), footer))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		}
	}
	tw.SetColumnConfigs(configs)
	tw.Style().Format.Footer = text.FormatDefault

	return tw.Render()
}

func columnTitles(columns []tableColumn) []string {
	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.title
	}
	return titles
}

func toRow(width int, cells []string) table.Row {
	row := make(table.Row, width)
	for i := range width {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
