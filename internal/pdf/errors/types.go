package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a document error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidDocument
	ErrorTypeOpenFailed
	ErrorTypeMalformedPage
	ErrorTypeSecurityRestriction
	ErrorTypeFileTooLarge
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidDocument:
		return "INVALID_DOCUMENT"
	case ErrorTypeOpenFailed:
		return "OPEN_FAILED"
	case ErrorTypeMalformedPage:
		return "MALFORMED_PAGE"
	case ErrorTypeSecurityRestriction:
		return "SECURITY_RESTRICTION"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether extraction can continue past this error
// type. Only a single malformed page is skipped; everything else aborts.
func (et ErrorType) IsRecoverable() bool {
	return et == ErrorTypeMalformedPage
}

// ExtractionError carries the category and location of a document failure
type ExtractionError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	FilePath   string    `json:"file_path,omitempty"`
	PageNumber int       `json:"page_number,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.PageNumber > 0 {
		msg += fmt.Sprintf(" (page %d)", e.PageNumber)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// New creates an ExtractionError of the given type
func New(errorType ErrorType, message string) *ExtractionError {
	return &ExtractionError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps err as an ExtractionError of the given type
func Wrap(errorType ErrorType, message string, err error) *ExtractionError {
	e := New(errorType, message)
	e.Err = err
	return e
}

// WithFile adds file path information
func (e *ExtractionError) WithFile(filePath string) *ExtractionError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information
func (e *ExtractionError) WithPage(pageNumber int) *ExtractionError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the ErrorType of the first ExtractionError in err's chain
func TypeOf(err error) ErrorType {
	var ee *ExtractionError
	if stderrors.As(err, &ee) {
		return ee.Type
	}
	return ErrorTypeUnknown
}

// IsRecoverable reports whether err wraps a recoverable ExtractionError
func IsRecoverable(err error) bool {
	return err != nil && TypeOf(err).IsRecoverable()
}
