// Package torrentfile turns a decoded info dictionary into a flat list of
// files, whatever layout the torrent uses.
package torrentfile

import (
	"fmt"
	"strings"

	"github.com/shapedtime/torrentmap/internal/bencode"
)

// Entry is one file of a torrent.
type Entry struct {
	Path   string `json:"path"`
	Length int64  `json:"length"`
}

// Extract lists the files of info in declared order. The first matching
// layout wins: "files", then "name" with "length", then "file tree".
func Extract(info bencode.Dict) ([]Entry, error) {
	if files, ok := info["files"]; ok {
		entries, err := extractFiles(files)
		if err != nil {
			return nil, &ExtractError{Layout: LayoutFiles, Err: err}
		}
		return entries, nil
	}

	name, hasName := info["name"]
	length, hasLength := info["length"]
	if hasName && hasLength {
		entry, err := extractSingle(name, length)
		if err != nil {
			return nil, &ExtractError{Layout: LayoutSingle, Err: err}
		}
		return []Entry{entry}, nil
	}

	if tree, ok := info["file tree"]; ok {
		entries, err := extractFileTree(tree, name)
		if err != nil {
			return nil, &ExtractError{Layout: LayoutFileTree, Err: err}
		}
		return entries, nil
	}

	return nil, &ExtractError{Layout: LayoutUnknown, Err: ErrUnsupportedLayout}
}

func extractFiles(v bencode.Value) ([]Entry, error) {
	list, ok := v.(bencode.List)
	if !ok {
		return nil, malformed("files is %s, want list", kindOf(v))
	}

	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		f, ok := item.(bencode.Dict)
		if !ok {
			return nil, malformed("files[%d] is %s, want dictionary", i, kindOf(item))
		}

		var segments []string
		if p, ok := f["path"]; ok {
			parts, ok := p.(bencode.List)
			if !ok {
				return nil, malformed("files[%d].path is %s, want list", i, kindOf(p))
			}
			for _, part := range parts {
				b, ok := part.(bencode.Bytes)
				if !ok {
					return nil, malformed("files[%d].path segment is %s, want string", i, kindOf(part))
				}
				segments = append(segments, DecodeName(b))
			}
		}

		var length int64
		if l, ok := f["length"]; ok {
			n, err := toLength(l)
			if err != nil {
				return nil, malformed("files[%d].length: %v", i, err)
			}
			length = n
		}

		entries = append(entries, Entry{Path: strings.Join(segments, "/"), Length: length})
	}
	return entries, nil
}

func extractSingle(name, length bencode.Value) (Entry, error) {
	b, ok := name.(bencode.Bytes)
	if !ok {
		return Entry{}, malformed("name is %s, want string", kindOf(name))
	}
	n, err := toLength(length)
	if err != nil {
		return Entry{}, malformed("length: %v", err)
	}
	return Entry{Path: DecodeName(b), Length: n}, nil
}

// DecodeName converts a raw name or path segment to a string, replacing
// invalid UTF-8 sequences with U+FFFD.
func DecodeName(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func toLength(v bencode.Value) (int64, error) {
	i, ok := v.(bencode.Integer)
	if !ok {
		return 0, fmt.Errorf("got %s, want integer", kindOf(v))
	}
	n, ok := i.Int64()
	if !ok || n < 0 {
		return 0, fmt.Errorf("%s out of range", i.String())
	}
	return n, nil
}

func kindOf(v bencode.Value) string {
	switch v.(type) {
	case bencode.Integer:
		return "integer"
	case bencode.Bytes:
		return "string"
	case bencode.List:
		return "list"
	case bencode.Dict:
		return "dictionary"
	}
	return "nothing"
}
