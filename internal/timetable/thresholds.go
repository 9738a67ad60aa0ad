package timetable

import "fmt"

// Tuned layout constants. Changing any of them changes extraction output.
const (
	DefaultTimeSlotYMin      = 40.0
	DefaultTimeSlotYMax      = 60.0
	DefaultDayYMin           = 60.0
	DefaultDayYMax           = 80.0
	DefaultDataStartY        = 80.0
	DefaultRowTolerance      = 5.0
	DefaultDayXTolerance     = 15.0
	DefaultColumnTolerance   = 10.0
	DefaultMinOverlapPercent = 0.10
	DefaultHeaderRows        = 4

	// columnCenterFactor widens ColumnTolerance for the center-distance fallback
	columnCenterFactor = 5.0
)

// Thresholds holds the geometric bands and tolerances used by every stage
type Thresholds struct {
	TimeSlotYMin      float64 `json:"time_slot_y_min"`
	TimeSlotYMax      float64 `json:"time_slot_y_max"`
	DayYMin           float64 `json:"day_y_min"`
	DayYMax           float64 `json:"day_y_max"`
	DataStartY        float64 `json:"data_start_y"`
	RowTolerance      float64 `json:"row_tolerance"`
	DayXTolerance     float64 `json:"day_x_tolerance"`
	ColumnTolerance   float64 `json:"column_tolerance"`
	MinOverlapPercent float64 `json:"min_overlap_percent"`
	HeaderRows        int     `json:"header_rows"`
}

// DefaultThresholds returns the tuned thresholds for the section-wise layout
func DefaultThresholds() Thresholds {
	return Thresholds{
		TimeSlotYMin:      DefaultTimeSlotYMin,
		TimeSlotYMax:      DefaultTimeSlotYMax,
		DayYMin:           DefaultDayYMin,
		DayYMax:           DefaultDayYMax,
		DataStartY:        DefaultDataStartY,
		RowTolerance:      DefaultRowTolerance,
		DayXTolerance:     DefaultDayXTolerance,
		ColumnTolerance:   DefaultColumnTolerance,
		MinOverlapPercent: DefaultMinOverlapPercent,
		HeaderRows:        DefaultHeaderRows,
	}
}

// Validate checks that bands are ordered and tolerances are usable
func (t Thresholds) Validate() error {
	if t.TimeSlotYMin > t.TimeSlotYMax {
		return fmt.Errorf("time slot band is inverted: %.2f > %.2f", t.TimeSlotYMin, t.TimeSlotYMax)
	}
	if t.DayYMin > t.DayYMax {
		return fmt.Errorf("day band is inverted: %.2f > %.2f", t.DayYMin, t.DayYMax)
	}
	if t.RowTolerance < 0 || t.DayXTolerance < 0 || t.ColumnTolerance < 0 {
		return fmt.Errorf("tolerances must not be negative")
	}
	if t.MinOverlapPercent < 0 || t.MinOverlapPercent > 1 {
		return fmt.Errorf("minimum overlap percent must be within [0, 1], got %.2f", t.MinOverlapPercent)
	}
	// rows 2 and 3 hold the column headers
	if t.HeaderRows < 4 {
		return fmt.Errorf("header rows must be at least 4, got %d", t.HeaderRows)
	}
	return nil
}
