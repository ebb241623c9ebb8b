package service

import (
	"errors"

	"github.com/shapedtime/torrentmap/internal/bencode"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// Sentinel errors for service operations.
var (
	ErrNoFiles         = errors.New("no files left after extension filter")
	ErrEpisodeNotFound = errors.New("episode not found in torrent")
)

var reasons = []struct {
	err    error
	reason string
}{
	{bencode.ErrBadInteger, "bad_integer"},
	{bencode.ErrBadStringLength, "bad_string_length"},
	{bencode.ErrTruncatedString, "truncated_string"},
	{bencode.ErrNonStringKey, "non_string_key"},
	{bencode.ErrUnknownTag, "unknown_tag"},
	{bencode.ErrUnexpectedEOF, "unexpected_eof"},
	{bencode.ErrTooDeep, "too_deep"},
	{torrentfile.ErrMissingInfo, "missing_info"},
	{torrentfile.ErrUnsupportedLayout, "unsupported_layout"},
	{torrentfile.ErrMalformedInfo, "malformed_info"},
	{ErrNoFiles, "no_files"},
}

// Reason classifies a build error for metrics and API responses.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

// IsInvalidTorrent reports whether err was caused by the torrent content
// rather than by I/O or storage.
func IsInvalidTorrent(err error) bool {
	var de *bencode.DecodeError
	var ee *torrentfile.ExtractError
	return errors.As(err, &de) || errors.As(err, &ee) ||
		errors.Is(err, torrentfile.ErrMissingInfo) || errors.Is(err, ErrNoFiles)
}
