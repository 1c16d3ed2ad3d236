package diff

import (
	"errors"
	"fmt"
)

// ErrDecoding is matched by every *DecodingError.
var ErrDecoding = errors.New("input is not valid text")

// DecodingError reports document bytes that could not be decoded as text.
// No partial result is produced for such input.
type DecodingError struct {
	Name   string // document name, e.g. the upload filename
	Offset int    // byte offset of the first invalid sequence, -1 if unknown
	Err    error  // underlying transform error, if any
}

func (e *DecodingError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
	case e.Offset >= 0:
		return fmt.Sprintf("decode %s: invalid UTF-8 at byte %d", e.Name, e.Offset)
	default:
		return fmt.Sprintf("decode %s: invalid text", e.Name)
	}
}

func (e *DecodingError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecoding, e.Err}
	}
	return []error{ErrDecoding}
}
