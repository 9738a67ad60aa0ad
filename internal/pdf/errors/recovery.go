package errors

import (
	"fmt"
	"runtime/debug"
)

// RecoverPage runs fn and converts a panic raised while decoding a page into
// a recoverable ExtractionError. PDF content stream decoders panic on
// malformed input rather than returning errors.
func RecoverPage(filePath string, page int, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Wrap(ErrorTypeMalformedPage, "page content could not be decoded",
				fmt.Errorf("%v\n%s", r, debug.Stack())).
				WithFile(filePath).
				WithPage(page)
		}
	}()
	return fn()
}
