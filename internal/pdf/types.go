package pdf

import "github.com/a3tai/mcp-timetable-reader/internal/timetable"

// Request Types

// TimetableRequest represents a request to extract one section's timetable
type TimetableRequest struct {
	Path    string `json:"path"`
	Section string `json:"section"`
}

// DocumentInfoRequest represents a request to inspect a timetable document
type DocumentInfoRequest struct {
	Path    string `json:"path"`
	Section string `json:"section,omitempty"`
}

// Response Types

// TimetableResult represents the result of a timetable extraction
type TimetableResult struct {
	Path         string            `json:"path" yaml:"path"`
	Requested    string            `json:"requested" yaml:"requested"`
	Section      *string           `json:"section" yaml:"section"`
	Entries      []timetable.Entry `json:"timetable" yaml:"timetable"`
	MatchedPages []int             `json:"matched_pages,omitempty" yaml:"matched_pages,omitempty"`
	PageCount    int               `json:"page_count" yaml:"page_count"`
}

// Found reports whether the requested section was located
func (r *TimetableResult) Found() bool {
	return r.Section != nil
}

// DocumentMeta describes a document as read by the validator
type DocumentMeta struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	PageCount int    `json:"page_count"`
	Version   string `json:"version"`
	Encrypted bool   `json:"encrypted"`
}

// DocumentInfoResult represents the result of a document inspection
type DocumentInfoResult struct {
	DocumentMeta
	Section      *string `json:"section,omitempty"`
	MatchedPages []int   `json:"matched_pages,omitempty"`
	EntryCount   int     `json:"entry_count,omitempty"`
}
