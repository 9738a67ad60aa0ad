package layout

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	pdferrors "github.com/a3tai/mcp-timetable-reader/internal/pdf/errors"
	"github.com/a3tai/mcp-timetable-reader/internal/timetable"
)

// LedongthucSource implements timetable.FragmentSource using ledongthuc/pdf
type LedongthucSource struct {
	reader   *pdf.Reader
	file     *os.File
	filePath string
	config   MergeConfig
	closed   bool
}

// Open opens the PDF at path as a fragment source
func Open(path string, cfg MergeConfig) (*LedongthucSource, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "failed to open PDF", err).WithFile(path)
	}

	return &LedongthucSource{
		reader:   reader,
		file:     f,
		filePath: path,
		config:   cfg,
	}, nil
}

// PageCount returns the number of pages in the document
func (s *LedongthucSource) PageCount() int {
	if s.closed {
		return 0
	}
	return s.reader.NumPage()
}

// Fragments returns the merged text fragments of a page
func (s *LedongthucSource) Fragments(pageNum int) ([]timetable.TextFragment, error) {
	if s.closed {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidDocument, "document is closed").WithFile(s.filePath)
	}
	if pageNum < 1 || pageNum > s.reader.NumPage() {
		return nil, pdferrors.New(pdferrors.ErrorTypeInvalidDocument,
			fmt.Sprintf("invalid page number %d (document has %d pages)", pageNum, s.reader.NumPage())).
			WithFile(s.filePath)
	}

	var fragments []timetable.TextFragment
	err := pdferrors.RecoverPage(s.filePath, pageNum, func() error {
		page := s.reader.Page(pageNum)
		if page.V.IsNull() {
			return nil
		}
		fragments = MergeGlyphs(page.Content().Text, s.config)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fragments, nil
}

// Close releases the underlying file
func (s *LedongthucSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
