package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableView is a rendered listing: one header row, data rows and an optional
// footer line such as "showing 20 of 1200".
type tableView struct {
	headers []string
	aligns  []columnAlignment
	rows    [][]string
	footer  string
}

func (v *tableView) add(cells ...string) {
	v.rows = append(v.rows, cells)
}

func (v *tableView) render() string {
	columns := len(v.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = v.headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range v.rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	if v.footer != "" {
		tw.SetCaption("%s", v.footer)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(v.aligns) && v.aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
