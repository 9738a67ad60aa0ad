package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellsAt(xs ...[2]float64) []Cell {
	cells := make([]Cell, 0, len(xs))
	for _, x := range xs {
		cells = append(cells, Cell{Text: "h", X0: x[0], X1: x[1]})
	}
	return cells
}

func TestBuildColumns_Cardinality(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		indices  int
		times    int
		expected int
	}{
		{"equal", 3, 3, 3},
		{"more indices", 5, 2, 2},
		{"more times", 1, 4, 1},
		{"no indices", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]Cell, 4)
			for i := 0; i < tt.indices; i++ {
				rows[2] = append(rows[2], Cell{X0: float64(i * 100), X1: float64(i*100 + 10)})
			}
			for i := 0; i < tt.times; i++ {
				rows[3] = append(rows[3], Cell{X0: float64(i * 100), X1: float64(i*100 + 60)})
			}
			assert.Len(t, BuildColumns(rows, th), tt.expected)
		})
	}
}

func TestBuildColumns_Geometry(t *testing.T) {
	rows := [][]Cell{
		nil,
		nil,
		cellsAt([2]float64{100, 110}, [2]float64{200, 210}),
		cellsAt([2]float64{95, 160}, [2]float64{198, 262}),
		cellsAt([2]float64{10, 20}),
	}

	cols := BuildColumns(rows, DefaultThresholds())
	require.Len(t, cols, 2)
	assert.Equal(t, Column{X0: 100, X1: 160, XCenter: 130}, cols[0])
	assert.Equal(t, Column{X0: 200, X1: 262, XCenter: 231}, cols[1])
	for _, c := range cols {
		assert.LessOrEqual(t, c.X0, c.X1)
	}
}

func TestBuildColumns_TooFewRows(t *testing.T) {
	rows := [][]Cell{nil, nil, cellsAt([2]float64{0, 10})}
	assert.Empty(t, BuildColumns(rows, DefaultThresholds()))
	assert.Empty(t, BuildColumns(nil, DefaultThresholds()))
}
