package timetable

import (
	"math"
	"unicode/utf8"
)

// AssignCells walks the data rows (those after th.HeaderRows), detects each
// row's day and places the remaining cells into columns. Cells that fit no
// column are returned as dropped.
func AssignCells(rows [][]Cell, columns []Column, days []DayLabel, th Thresholds) ([]Assignment, []Cell) {
	var (
		assigned []Assignment
		dropped  []Cell
	)

	for i, row := range rows {
		if i < th.HeaderRows || len(row) == 0 {
			continue
		}

		minX0 := math.Inf(1)
		for _, c := range row {
			minX0 = math.Min(minX0, c.X0)
		}

		rowDay := ""
		for _, cell := range row {
			if day, ok := detectDay(cell, days, th); ok {
				rowDay = day
			} else if rowDay == "" && cell.X0 == minX0 && IsDayAbbreviation(cell.Text) {
				rowDay = cell.Text
			}

			if rowDay == "" || IsDayAbbreviation(cell.Text) || utf8.RuneCountInString(cell.Text) <= 1 {
				continue
			}

			col, ok := assignColumn(cell, columns, th)
			if !ok {
				dropped = append(dropped, cell)
				continue
			}
			assigned = append(assigned, Assignment{Day: rowDay, Column: col, RawText: cell.Text})
		}
	}
	return assigned, dropped
}

// detectDay matches a cell at or left of the leftmost day label against the
// day label centers.
func detectDay(cell Cell, days []DayLabel, th Thresholds) (string, bool) {
	if len(days) == 0 || cell.X0 > days[0].XCenter {
		return "", false
	}
	center := cell.Center()
	for _, d := range days {
		if math.Abs(center-d.XCenter) <= th.DayXTolerance {
			return d.Text, true
		}
	}
	return "", false
}

// assignColumn is first-fit by column index: overlap ratio first, then
// center distance.
func assignColumn(cell Cell, columns []Column, th Thresholds) (int, bool) {
	width := cell.Width()
	for j, col := range columns {
		overlap := math.Max(0, math.Min(cell.X1, col.X1)-math.Max(cell.X0, col.X0))
		percent := 0.0
		if width > 0 {
			percent = overlap / width
		}
		if percent >= th.MinOverlapPercent {
			return j, true
		}
	}

	center := cell.Center()
	for j, col := range columns {
		if math.Abs(center-col.XCenter) <= th.ColumnTolerance*columnCenterFactor {
			return j, true
		}
	}
	return -1, false
}
