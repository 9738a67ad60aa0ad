package timetable

import (
	"regexp"
	"sort"
)

var timeSlotPattern = regexp.MustCompile(`^\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2}`)

// DayAbbreviations lists the day labels in timetable order
var DayAbbreviations = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa"}

// IsTimeSlot reports whether text starts with an "HH:MM-HH:MM" range
func IsTimeSlot(text string) bool {
	return timeSlotPattern.MatchString(text)
}

// IsDayAbbreviation reports whether text is exactly one of DayAbbreviations
func IsDayAbbreviation(text string) bool {
	for _, d := range DayAbbreviations {
		if text == d {
			return true
		}
	}
	return false
}

// HeaderSet is the output of header classification for one page
type HeaderSet struct {
	TimeSlots []TimeSlotHeader `json:"time_slots"`
	Days      []DayLabel       `json:"days"`
	// RowSeeds are the y-centers of fragments above DataStartY, in discovery order
	RowSeeds []float64 `json:"row_seeds"`
}

// ClassifyHeaders splits fragments into time-slot headers, day labels and row seeds
func ClassifyHeaders(fragments []TextFragment, th Thresholds) HeaderSet {
	var set HeaderSet
	for _, f := range fragments {
		y := f.YCenter()

		switch {
		case th.TimeSlotYMin <= y && y <= th.TimeSlotYMax && IsTimeSlot(f.Text):
			set.TimeSlots = append(set.TimeSlots, TimeSlotHeader{
				Text:    f.Text,
				X0:      f.X0,
				X1:      f.X1,
				XCenter: f.XCenter(),
			})
		case th.DayYMin <= y && y <= th.DayYMax && IsDayAbbreviation(f.Text):
			set.Days = append(set.Days, DayLabel{Text: f.Text, XCenter: f.XCenter()})
		}

		if y > th.DataStartY {
			set.RowSeeds = append(set.RowSeeds, y)
		}
	}
	set.sort()
	return set
}

// Merge appends the headers of next to h and re-sorts them. Row seeds are
// page-local and are taken from next only.
func (h HeaderSet) Merge(next HeaderSet) HeaderSet {
	merged := HeaderSet{
		TimeSlots: append(append([]TimeSlotHeader(nil), h.TimeSlots...), next.TimeSlots...),
		Days:      append(append([]DayLabel(nil), h.Days...), next.Days...),
		RowSeeds:  next.RowSeeds,
	}
	merged.sort()
	return merged
}

func (h HeaderSet) sort() {
	sort.SliceStable(h.TimeSlots, func(i, j int) bool {
		return h.TimeSlots[i].X0 < h.TimeSlots[j].X0
	})
	sort.SliceStable(h.Days, func(i, j int) bool {
		return h.Days[i].XCenter < h.Days[j].XCenter
	})
}
