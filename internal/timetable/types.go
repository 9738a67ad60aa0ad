package timetable

// TextFragment is one positioned run of text on a page, as produced by the
// layout source. Coordinates follow PDF user space (y grows upwards).
type TextFragment struct {
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
}

// XCenter returns the horizontal midpoint of the fragment
func (f TextFragment) XCenter() float64 {
	return (f.X0 + f.X1) / 2
}

// YCenter returns the vertical midpoint of the fragment
func (f TextFragment) YCenter() float64 {
	return (f.Y0 + f.Y1) / 2
}

// TimeSlotHeader is a detected "HH:MM-HH:MM" label in the time-slot header band
type TimeSlotHeader struct {
	Text    string  `json:"text"`
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	XCenter float64 `json:"x_center"`
}

// DayLabel is a detected day abbreviation in the day header band
type DayLabel struct {
	Text    string  `json:"text"`
	XCenter float64 `json:"x_center"`
}

// Cell is a fragment placed into a row band
type Cell struct {
	Text    string  `json:"text"`
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	YCenter float64 `json:"y_center"`
}

// Center returns the horizontal midpoint of the cell
func (c Cell) Center() float64 {
	return (c.X0 + c.X1) / 2
}

// Width returns the horizontal extent of the cell
func (c Cell) Width() float64 {
	return c.X1 - c.X0
}

// Column is the x-interval of one time slot's data region
type Column struct {
	X0      float64 `json:"x0"`
	X1      float64 `json:"x1"`
	XCenter float64 `json:"x_center"`
}

// Assignment records a cell placed into a column together with the day of
// the row it came from.
type Assignment struct {
	Day     string `json:"day"`
	Column  int    `json:"column"`
	RawText string `json:"raw_text"`
}

// Entry is one extracted timetable record. Subject, Room and Group are nil
// when their pattern did not match.
type Entry struct {
	Day     string  `json:"day" yaml:"day"`
	Time    string  `json:"time" yaml:"time"`
	Subject *string `json:"subject" yaml:"subject"`
	Room    *string `json:"room" yaml:"room"`
	Group   *string `json:"group" yaml:"group"`
	RawText string  `json:"raw_text" yaml:"raw_text"`
	Page    int     `json:"page,omitempty" yaml:"page,omitempty"`
}

// Result is the outcome of one extraction call. Section is nil and Entries is
// empty when no page matched the requested section.
type Result struct {
	Section      *string `json:"section"`
	Entries      []Entry `json:"timetable"`
	MatchedPages []int   `json:"matched_pages,omitempty"`
}

// Found reports whether the requested section appeared on any page
func (r *Result) Found() bool {
	return r != nil && r.Section != nil
}
