package timetable

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	subjectPattern = regexp.MustCompile(`[A-Z]{2,}(?:-\w+)?`)
	roomPattern    = regexp.MustCompile(`[A-Z]{2,3}\d+[A-Z]*`)
	groupPattern   = regexp.MustCompile(`(?i)Group\s*\d+`)

	// a capitalized word followed by another capitalized word, e.g. "Mr Alok"
	personStartPattern = regexp.MustCompile(`^[A-Z][a-z]+\s[A-Z]`)
)

// minCellTextLength is the shortest cleaned cell text that yields an entry
const minCellTextLength = 3

// CleanCellText collapses whitespace runs to one space and strips every
// character outside printable ASCII. Leading and trailing spaces are kept.
func CleanCellText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inSpace := false
	for _, r := range text {
		if isSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r >= 0x20 && r < 0x7F {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CellFields holds the pattern matches found in a cell
type CellFields struct {
	Subject *string
	Room    *string
	Group   *string
}

// ExtractFields applies the subject, room and group patterns to text
func ExtractFields(text string) CellFields {
	return CellFields{
		Subject: firstMatch(subjectPattern, text),
		Room:    firstMatch(roomPattern, text),
		Group:   firstMatch(groupPattern, text),
	}
}

func firstMatch(re *regexp.Regexp, text string) *string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	m := text[loc[0]:loc[1]]
	return &m
}

// SplitCompound splits text before every whitespace run that is followed by
// a "Firstname Lastname" style pair of capitalized words.
func SplitCompound(text string) []string {
	var parts []string
	start := 0

	for i := 0; i < len(text); {
		if !isASCIISpace(text[i]) {
			i++
			continue
		}
		j := i
		for j < len(text) && isASCIISpace(text[j]) {
			j++
		}
		if personStartPattern.MatchString(text[j:]) {
			parts = append(parts, text[start:i])
			start = j
		}
		i = j
	}
	return append(parts, text[start:])
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// ParseCell turns one raw cell into zero or more entries. Cells whose
// cleaned text is shorter than three characters are discarded.
func ParseCell(day, timeSlot, raw string) []Entry {
	text := CleanCellText(raw)
	if len(text) < minCellTextLength {
		return nil
	}

	fields := ExtractFields(text)
	parts := SplitCompound(text)

	if len(parts) == 1 {
		return []Entry{{
			Day:     day,
			Time:    timeSlot,
			Subject: fields.Subject,
			Room:    fields.Room,
			Group:   fields.Group,
			RawText: raw,
		}}
	}

	entries := []Entry{{
		Day:     day,
		Time:    timeSlot,
		Subject: fields.Subject,
		Room:    fields.Room,
		Group:   fields.Group,
		RawText: parts[0],
	}}
	for _, part := range parts[1:] {
		if len(strings.Fields(part)) < 2 {
			continue
		}
		entries = append(entries, Entry{Day: day, Time: timeSlot, RawText: part})
	}
	return entries
}

// TimeSlotLabel returns the header text for a column, or a synthetic label
// when the page has fewer time-slot headers than columns.
func TimeSlotLabel(slots []TimeSlotHeader, column int) string {
	if column >= 0 && column < len(slots) {
		return slots[column].Text
	}
	return fmt.Sprintf("Unknown Time Slot %d", column+1)
}

// ParseEntries emits entries column by column, keeping row order within a
// column.
func ParseEntries(assignments []Assignment, columnCount int, slots []TimeSlotHeader) []Entry {
	byColumn := make([][]Assignment, columnCount)
	for _, a := range assignments {
		if a.Column < 0 || a.Column >= columnCount {
			continue
		}
		byColumn[a.Column] = append(byColumn[a.Column], a)
	}

	var entries []Entry
	for j, cells := range byColumn {
		timeSlot := TimeSlotLabel(slots, j)
		for _, a := range cells {
			entries = append(entries, ParseCell(a.Day, timeSlot, a.RawText)...)
		}
	}
	return entries
}
