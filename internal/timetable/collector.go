package timetable

import (
	"strings"
	"unicode"
)

// isSpace reports whether r separates words. The ASCII information
// separators 0x1C-0x1F count as whitespace alongside the Unicode spaces.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1C && r <= 0x1F)
}

// NormalizeText collapses every whitespace run to a single space and trims
// both ends.
func NormalizeText(text string) string {
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

// CollectFragments returns a copy of the page fragments with normalized text.
// Fragments that normalize to an empty string are kept, since their position
// still seeds row clustering.
func CollectFragments(raw []TextFragment) []TextFragment {
	fragments := make([]TextFragment, len(raw))
	for i, f := range raw {
		f.Text = NormalizeText(f.Text)
		fragments[i] = f
	}
	return fragments
}

// LocateSection returns the text of the first fragment that starts with the
// section identifier.
func LocateSection(fragments []TextFragment, section string) (string, bool) {
	for _, f := range fragments {
		if strings.HasPrefix(f.Text, section) {
			return f.Text, true
		}
	}
	return "", false
}
