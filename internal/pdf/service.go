package pdf

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/a3tai/mcp-timetable-reader/internal/pdf/layout"
	"github.com/a3tai/mcp-timetable-reader/internal/pdf/security"
	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

// DocumentSource is a fragment source backed by an open document
type DocumentSource interface {
	timetable.FragmentSource
	io.Closer
}

// Opener opens a document as a fragment source
type Opener func(path string) (DocumentSource, error)

// ServiceConfig configures a Service
type ServiceConfig struct {
	Directory       string
	DefaultDocument string
	DefaultSection  string
	MaxFileSize     int64
	CachePages      int // 0 disables the page fragment cache
	Extractor       timetable.ExtractorConfig
	Logger          *log.Logger
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithOpener replaces the default ledongthuc-backed opener
func WithOpener(opener Opener) ServiceOption {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithInspector replaces the default pdfcpu-backed validator
func WithInspector(inspector Inspector) ServiceOption {
	return func(s *Service) {
		s.inspector = inspector
	}
}

// Service resolves timetable documents and runs the extractor over them
type Service struct {
	config        ServiceConfig
	pathValidator *security.PathValidator
	inspector     Inspector
	opener        Opener
	extractor     *timetable.Extractor
	cache         *layout.FragmentCache
	logger        *log.Logger
}

// NewService creates a new timetable service
func NewService(cfg ServiceConfig, opts ...ServiceOption) (*Service, error) {
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be greater than 0")
	}

	pathValidator, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Extractor.Logger == nil {
		cfg.Extractor.Logger = logger
	}

	extractor, err := timetable.NewExtractor(cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	applied := extractor.Config()
	logger.Printf("extractor: row clustering %s, header scope %s", applied.RowStrategy, applied.HeaderScope)

	s := &Service{
		config:        cfg,
		pathValidator: pathValidator,
		inspector:     NewValidator(cfg.MaxFileSize),
		opener:        openLedongthuc,
		extractor:     extractor,
		logger:        logger,
	}
	if cfg.CachePages > 0 {
		s.cache = layout.NewFragmentCache(cfg.CachePages)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func openLedongthuc(path string) (DocumentSource, error) {
	src, err := layout.Open(path, layout.DefaultMergeConfig())
	if err != nil {
		return nil, err
	}
	return src, nil
}

// CacheStats reports page cache usage. The zero value is returned when the
// cache is disabled.
func (s *Service) CacheStats() layout.CacheStats {
	if s.cache == nil {
		return layout.CacheStats{}
	}
	return s.cache.Stats()
}

// Directory returns the directory documents are resolved in
func (s *Service) Directory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// DefaultSection returns the section used when a request names none
func (s *Service) DefaultSection() string {
	return s.config.DefaultSection
}

// ResolveDocument maps a requested path, or the default document when path
// is empty, to an absolute path inside the configured directory.
func (s *Service) ResolveDocument(path string) (string, error) {
	if path == "" {
		path = s.config.DefaultDocument
	}
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// ExtractTimetable extracts the entries of one section from a document. A
// section that is not in the document is not an error: the result has a nil
// Section and no entries.
func (s *Service) ExtractTimetable(ctx context.Context, req TimetableRequest) (*TimetableResult, error) {
	section := req.Section
	if section == "" {
		section = s.config.DefaultSection
	}
	if section == "" {
		return nil, fmt.Errorf("section cannot be empty")
	}

	path, meta, err := s.prepare(req.Path)
	if err != nil {
		return nil, err
	}

	result, err := s.extract(ctx, path, section)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("extracted %d entries for %q from %s (pages %v)",
		len(result.Entries), section, path, result.MatchedPages)

	return &TimetableResult{
		Path:         path,
		Requested:    section,
		Section:      result.Section,
		Entries:      result.Entries,
		MatchedPages: result.MatchedPages,
		PageCount:    meta.PageCount,
	}, nil
}

// DocumentInfo validates a document and, when a section is named, reports
// which pages carry it.
func (s *Service) DocumentInfo(ctx context.Context, req DocumentInfoRequest) (*DocumentInfoResult, error) {
	path, meta, err := s.prepare(req.Path)
	if err != nil {
		return nil, err
	}

	info := &DocumentInfoResult{DocumentMeta: *meta}
	if req.Section == "" {
		return info, nil
	}

	result, err := s.extract(ctx, path, req.Section)
	if err != nil {
		return nil, err
	}
	info.Section = result.Section
	info.MatchedPages = result.MatchedPages
	info.EntryCount = len(result.Entries)
	return info, nil
}

func (s *Service) prepare(requested string) (string, *DocumentMeta, error) {
	path, err := s.ResolveDocument(requested)
	if err != nil {
		return "", nil, err
	}

	meta, err := s.inspector.Inspect(path)
	if err != nil {
		return "", nil, fmt.Errorf("document validation failed: %w", err)
	}
	return path, meta, nil
}

func (s *Service) extract(ctx context.Context, path, section string) (*timetable.Result, error) {
	src, err := s.opener(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer src.Close()

	var source timetable.FragmentSource = src
	if s.cache != nil {
		if info, statErr := os.Stat(path); statErr == nil {
			source = layout.NewCachedSource(src, s.cache, layout.DocumentKey(path, info))
		}
	}

	result, err := s.extractor.Extract(ctx, source, section)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return result, nil
}
