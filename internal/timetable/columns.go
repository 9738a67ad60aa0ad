package timetable

// slot index and slot time header rows
const (
	slotIndexRow = 2
	slotTimeRow  = 3
)

// BuildColumns derives one column per slot from header rows 2 (slot indices)
// and 3 (slot times), paired by position. It returns nil when fewer than
// th.HeaderRows rows were clustered.
func BuildColumns(rows [][]Cell, th Thresholds) []Column {
	if len(rows) < th.HeaderRows || len(rows) <= slotTimeRow {
		return nil
	}

	indices := rows[slotIndexRow]
	times := rows[slotTimeRow]
	count := min(len(indices), len(times))

	columns := make([]Column, 0, count)
	for i := 0; i < count; i++ {
		x0 := indices[i].X0
		x1 := times[i].X1
		columns = append(columns, Column{X0: x0, X1: x1, XCenter: (x0 + x1) / 2})
	}
	return columns
}
