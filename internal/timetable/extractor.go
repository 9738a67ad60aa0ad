package timetable

import (
	"context"
	"fmt"
	"io"
	"log"

	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
)

// HeaderScope controls whether time-slot and day headers reset between pages
type HeaderScope string

const (
	// HeaderScopePage uses only the headers found on the page being processed
	HeaderScopePage HeaderScope = "page"
	// HeaderScopeDocument accumulates headers over every matched page of the
	// document, so later pages see earlier pages' headers too.
	HeaderScopeDocument HeaderScope = "document"
)

// ParseHeaderScope converts a configuration string into a HeaderScope
func ParseHeaderScope(s string) (HeaderScope, error) {
	switch HeaderScope(s) {
	case HeaderScopePage, HeaderScopeDocument:
		return HeaderScope(s), nil
	case "":
		return HeaderScopePage, nil
	default:
		return "", fmt.Errorf("unknown header scope %q (must be page or document)", s)
	}
}

// FragmentSource yields the positioned text fragments of a document one page
// at a time. Pages are numbered from 1.
type FragmentSource interface {
	PageCount() int
	Fragments(page int) ([]TextFragment, error)
}

// ExtractorConfig configures an Extractor
type ExtractorConfig struct {
	Thresholds  Thresholds
	RowStrategy RowStrategy
	HeaderScope HeaderScope
	Logger      *log.Logger
}

// DefaultExtractorConfig returns the tuned thresholds with greedy row
// clustering and page-scoped headers.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Thresholds:  DefaultThresholds(),
		RowStrategy: RowStrategyGreedy,
		HeaderScope: HeaderScopePage,
	}
}

// Extractor reconstructs a section's timetable from positioned fragments
type Extractor struct {
	config ExtractorConfig
	logger *log.Logger
}

// NewExtractor creates an extractor, rejecting invalid thresholds
func NewExtractor(cfg ExtractorConfig) (*Extractor, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	if cfg.RowStrategy == "" {
		cfg.RowStrategy = RowStrategyGreedy
	}
	if cfg.HeaderScope == "" {
		cfg.HeaderScope = HeaderScopePage
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Extractor{config: cfg, logger: logger}, nil
}

// Config returns the extractor configuration
func (e *Extractor) Config() ExtractorConfig {
	return e.config
}

// PageResult is the outcome of processing one page
type PageResult struct {
	Page      int
	Section   string
	Matched   bool
	Headers   HeaderSet
	Columns   []Column
	RowCount  int
	Entries   []Entry
	Dropped   []Cell
	Assigned  []Assignment
	Shortfall bool
}

// Extract runs the pipeline over every page of src. The section name is taken
// from the last matched page. A section that appears on no page yields a
// Result with a nil Section and no entries. Pages the source reports as
// malformed are skipped; any other source error aborts the call.
func (e *Extractor) Extract(ctx context.Context, src FragmentSource, section string) (*Result, error) {
	result := &Result{Entries: []Entry{}}
	var accumulated HeaderSet

	for page := 1; page <= src.PageCount(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := src.Fragments(page)
		if err != nil {
			if pdferrors.IsRecoverable(err) {
				e.logger.Printf("skipping page %d: %v", page, err)
				continue
			}
			return nil, fmt.Errorf("failed to read page %d: %w", page, err)
		}

		pr := e.processPage(page, raw, section, &accumulated)
		if !pr.Matched {
			continue
		}

		name := pr.Section
		result.Section = &name
		result.MatchedPages = append(result.MatchedPages, page)
		result.Entries = append(result.Entries, pr.Entries...)
	}

	return result, nil
}

// ExtractPage runs the pipeline over a single page's fragments with
// page-scoped headers.
func (e *Extractor) ExtractPage(page int, raw []TextFragment, section string) PageResult {
	var headers HeaderSet
	return e.processPage(page, raw, section, &headers)
}

func (e *Extractor) processPage(page int, raw []TextFragment, section string, accumulated *HeaderSet) PageResult {
	th := e.config.Thresholds
	pr := PageResult{Page: page}

	fragments := CollectFragments(raw)

	name, ok := LocateSection(fragments, section)
	if !ok {
		return pr
	}
	pr.Section = name
	pr.Matched = true

	headers := ClassifyHeaders(fragments, th)
	if e.config.HeaderScope == HeaderScopeDocument {
		headers = accumulated.Merge(headers)
		*accumulated = headers
	}
	pr.Headers = headers

	bands := ClusterRows(headers.RowSeeds, th.RowTolerance, e.config.RowStrategy)
	rows := AssignRows(fragments, bands, th)
	pr.RowCount = len(rows)

	pr.Columns = BuildColumns(rows, th)
	if len(pr.Columns) == 0 {
		pr.Shortfall = true
		e.logger.Printf("page %d: %d rows clustered, no columns derived", page, len(rows))
		return pr
	}

	pr.Assigned, pr.Dropped = AssignCells(rows, pr.Columns, headers.Days, th)
	for _, c := range pr.Dropped {
		e.logger.Printf("page %d: cell %q at x=[%.1f, %.1f] not assigned to any column", page, c.Text, c.X0, c.X1)
	}

	pr.Entries = ParseEntries(pr.Assigned, len(pr.Columns), headers.TimeSlots)
	for i := range pr.Entries {
		pr.Entries[i].Page = page
	}
	return pr
}
