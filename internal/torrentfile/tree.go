package torrentfile

import (
	"slices"
	"strings"

	"github.com/shapedtime/torrentmap/internal/bencode"
)

// leafKey marks a file inside a "file tree" node.
const leafKey = ""

func extractFileTree(tree, name bencode.Value) ([]Entry, error) {
	root, ok := tree.(bencode.Dict)
	if !ok {
		return nil, malformed("file tree is %s, want dictionary", kindOf(tree))
	}

	var prefix []string
	if name != nil {
		b, ok := name.(bencode.Bytes)
		if !ok {
			return nil, malformed("name is %s, want string", kindOf(name))
		}
		if len(b) > 0 {
			prefix = []string{DecodeName(b)}
		}
	}

	return walkTree(root, prefix, nil)
}

// walkTree visits node in key order. The leaf marker sorts first, so a
// node's own file is listed before anything nested below it.
func walkTree(node bencode.Dict, prefix []string, out []Entry) ([]Entry, error) {
	for _, key := range node.Keys() {
		child := node[key]

		if key == leafKey {
			length, err := leafLength(child)
			if err != nil {
				return nil, malformed("%s: %v", strings.Join(prefix, "/"), err)
			}
			out = append(out, Entry{Path: strings.Join(prefix, "/"), Length: length})
			continue
		}

		dir, ok := child.(bencode.Dict)
		if !ok {
			continue
		}

		var err error
		out, err = walkTree(dir, append(slices.Clip(prefix), DecodeName([]byte(key))), out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func leafLength(v bencode.Value) (int64, error) {
	meta, ok := v.(bencode.Dict)
	if !ok {
		return 0, nil
	}
	l, ok := meta["length"]
	if !ok {
		return 0, nil
	}
	return toLength(l)
}
