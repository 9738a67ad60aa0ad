package timetable

import (
	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
)

// frag builds a fragment from its horizontal extent and vertical center
func frag(text string, x0, x1, yCenter float64) TextFragment {
	return TextFragment{Text: text, X0: x0, Y0: yCenter - 4, X1: x1, Y1: yCenter + 4}
}

// singleSlotPage is a minimal one-column page for section BE-CSE-2A
func singleSlotPage() []TextFragment {
	return []TextFragment{
		frag("BE-CSE-2A  (Block A)", 10, 90, 300),
		frag("Time Table", 10, 90, 280),
		frag("1", 100, 110, 260),
		frag("10:00-11:00", 100, 160, 240),
		frag("10:00-11:00", 100, 160, 50),
		frag("Mo", 15, 25, 70),
		frag("Mo", 15, 25, 200),
		frag("CS101 Mr X", 105, 150, 200),
	}
}

// twoSlotPage has two columns and rows for Monday and Tuesday
func twoSlotPage() []TextFragment {
	return []TextFragment{
		frag("BE-CSE-2A", 10, 90, 400),
		frag("First Year", 10, 90, 380),
		frag("1", 100, 110, 360),
		frag("2", 200, 210, 360),
		frag("09:00-10:00", 100, 160, 340),
		frag("10:00-11:00", 200, 260, 340),
		frag("09:00-10:00", 100, 160, 50),
		frag("10:00-11:00", 200, 260, 50),
		frag("Mo", 15, 25, 70),
		frag("Tu", 45, 55, 70),
		frag("Mo", 15, 25, 300),
		frag("PH101 Group 1", 102, 158, 300),
		frag("MA102", 205, 250, 300),
		frag("Tu", 45, 55, 250),
		frag("EE103", 102, 150, 250),
	}
}

type fakePage struct {
	fragments []TextFragment
	err       error
}

type fakeSource struct {
	pages []fakePage
}

func (s *fakeSource) PageCount() int {
	return len(s.pages)
}

func (s *fakeSource) Fragments(page int) ([]TextFragment, error) {
	p := s.pages[page-1]
	return p.fragments, p.err
}

func sourceOf(pages ...[]TextFragment) *fakeSource {
	src := &fakeSource{}
	for _, p := range pages {
		src.pages = append(src.pages, fakePage{fragments: p})
	}
	return src
}

func malformedPage(page int) fakePage {
	return fakePage{err: pdferrors.New(pdferrors.ErrorTypeMalformedPage, "bad stream").WithPage(page)}
}

func strPtr(s string) *string {
	return &s
}
