// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"
)

// RenderTable renders columns and rows as an aligned text table.
//
// Description:
//
//	Pads every cell to its column's widest value, styles the header row,
//	and separates it from the body with a rule. Cell content is written
//	verbatim; callers truncate long values themselves.
//
// Example:
//
//	fmt.Print(ux.RenderTable([]string{"id", "name"}, rows))
func RenderTable(columns []string, rows [][]string) string {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder

	headerCells := make([]string, len(columns))
	for i, col := range columns {
		headerCells[i] = Styles.TableHeader.Render(pad(col, widths[i]))
	}
	b.WriteString(strings.Join(headerCells, "  "))
	b.WriteByte('\n')

	ruleCells := make([]string, len(columns))
	for i := range columns {
		ruleCells[i] = Styles.TableBorder.Render(strings.Repeat("─", widths[i]))
	}
	b.WriteString(strings.Join(ruleCells, "  "))
	b.WriteByte('\n')

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			w := len(cell)
			if i < len(widths) {
				w = widths[i]
			}
			cells[i] = pad(cell, w)
		}
		b.WriteString(strings.Join(cells, "  "))
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
