package timetable

import (
	"fmt"
	"math"
	"sort"
)

// RowStrategy selects how row seeds are grouped into row bands
type RowStrategy string

const (
	// RowStrategyGreedy seeds each band with the first remaining coordinate
	// and absorbs everything within tolerance of that seed. Band order follows
	// discovery order, so permuting the input can change the result.
	RowStrategyGreedy RowStrategy = "greedy"

	// RowStrategySweep sorts the coordinates top to bottom (descending y in
	// PDF user space) and opens a new band whenever the gap to the previous
	// value exceeds tolerance. The result does not depend on input order.
	RowStrategySweep RowStrategy = "sweep"
)

// ParseRowStrategy converts a configuration string into a RowStrategy
func ParseRowStrategy(s string) (RowStrategy, error) {
	switch RowStrategy(s) {
	case RowStrategyGreedy, RowStrategySweep:
		return RowStrategy(s), nil
	case "":
		return RowStrategyGreedy, nil
	default:
		return "", fmt.Errorf("unknown row clustering strategy %q (must be greedy or sweep)", s)
	}
}

// ClusterRows groups y-coordinates into row bands using the given strategy
func ClusterRows(coords []float64, tolerance float64, strategy RowStrategy) []float64 {
	if strategy == RowStrategySweep {
		return ClusterRowsSweep(coords, tolerance)
	}
	return ClusterRowsGreedy(coords, tolerance)
}

// ClusterRowsGreedy partitions coords around seeds taken in input order.
// Membership is measured against the seed only, not chained.
func ClusterRowsGreedy(coords []float64, tolerance float64) []float64 {
	remaining := append([]float64(nil), coords...)
	var bands []float64

	for len(remaining) > 0 {
		seed := remaining[0]
		sum, n := seed, 1
		rest := remaining[:0:0]

		for _, c := range remaining[1:] {
			if math.Abs(c-seed) <= tolerance {
				sum += c
				n++
				continue
			}
			rest = append(rest, c)
		}

		bands = append(bands, sum/float64(n))
		remaining = rest
	}
	return bands
}

// ClusterRowsSweep clusters sorted coordinates, splitting on gaps wider than tolerance
func ClusterRowsSweep(coords []float64, tolerance float64) []float64 {
	if len(coords) == 0 {
		return nil
	}
	sorted := append([]float64(nil), coords...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var bands []float64
	sum, n := sorted[0], 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1]-sorted[i] > tolerance {
			bands = append(bands, sum/float64(n))
			sum, n = 0, 0
		}
		sum += sorted[i]
		n++
	}
	return append(bands, sum/float64(n))
}

// AssignRows places every fragment above DataStartY into the first band
// within RowTolerance of its y-center. Fragments near no band are dropped.
// Each row is sorted by x0.
func AssignRows(fragments []TextFragment, bands []float64, th Thresholds) [][]Cell {
	rows := make([][]Cell, len(bands))
	for _, f := range fragments {
		y := f.YCenter()
		if y <= th.DataStartY {
			continue
		}
		for i, band := range bands {
			if math.Abs(y-band) <= th.RowTolerance {
				rows[i] = append(rows[i], Cell{Text: f.Text, X0: f.X0, X1: f.X1, YCenter: y})
				break
			}
		}
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X0 < row[j].X0
		})
	}
	return rows
}
