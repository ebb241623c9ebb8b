package torrentfile

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedLayout = errors.New("unsupported torrent layout")
	ErrMalformedInfo     = errors.New("malformed info dictionary")
	ErrMissingInfo       = errors.New("metainfo has no info dictionary")
)

// Layout names the shape of the info dictionary a file list was read from.
type Layout string

const (
	LayoutUnknown  Layout = ""
	LayoutFiles    Layout = "files"
	LayoutSingle   Layout = "single"
	LayoutFileTree Layout = "file tree"
)

// ExtractError is returned by Extract.
type ExtractError struct {
	Layout Layout
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Layout == LayoutUnknown {
		return fmt.Sprintf("extract files: %v", e.Err)
	}
	return fmt.Sprintf("extract files (%s layout): %v", e.Layout, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedInfo}, args...)...)
}
