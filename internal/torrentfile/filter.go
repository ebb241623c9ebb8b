package torrentfile

import (
	"slices"
	"strings"
)

// VideoExtensions are the container formats commonly found in episode packs.
var VideoExtensions = []string{
	".mkv", ".mp4", ".avi", ".wmv",
	".mov", ".m4v", ".webm", ".ts",
	".m2ts", ".vob", ".flv", ".divx",
}

// FilterExtensions keeps the entries whose path ends in one of exts,
// ignoring case. Order is preserved. An empty exts keeps everything.
func FilterExtensions(entries []Entry, exts []string) []Entry {
	out := make([]Entry, 0, len(entries))
	if len(exts) == 0 {
		return append(out, entries...)
	}

	lowered := make([]string, len(exts))
	for i, e := range exts {
		lowered[i] = strings.ToLower(e)
	}

	for _, e := range entries {
		p := strings.ToLower(e.Path)
		for _, ext := range lowered {
			if strings.HasSuffix(p, ext) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// VideoAlias stands for VideoExtensions in an extension list.
const VideoAlias = "video"

// ExpandExtensions normalises an extension list: a leading dot is added
// where missing and VideoAlias is replaced by VideoExtensions. Duplicates
// are dropped.
func ExpandExtensions(exts []string) []string {
	var out []string
	add := func(ext string) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	for _, ext := range exts {
		if strings.EqualFold(ext, VideoAlias) {
			for _, v := range VideoExtensions {
				add(v)
			}
			continue
		}
		add(ext)
	}
	return out
}
