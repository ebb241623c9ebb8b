package bencode

import (
	"errors"
	"fmt"
)

// Decode failures. A *DecodeError always wraps exactly one of these.
var (
	ErrBadInteger      = errors.New("malformed integer")
	ErrBadStringLength = errors.New("malformed string length")
	ErrTruncatedString = errors.New("string longer than remaining input")
	ErrNonStringKey    = errors.New("dictionary key is not a string")
	ErrUnknownTag      = errors.New("unknown type tag")
	ErrUnexpectedEOF   = errors.New("unexpected end of input")
	ErrTooDeep         = errors.New("nesting too deep")
)

// DecodeError reports where in the input decoding stopped.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
