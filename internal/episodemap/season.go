package episodemap

import (
	"path"
	"slices"

	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// Episode is one playable episode of a season listing.
type Episode struct {
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	Key      Key    `json:"key"`
	Original int    `json:"original"`
	Index    int    `json:"index"`
	Path     string `json:"path"`
}

// ListSeason returns the episodes of season found in entries, ordered by
// episode number. Only the base name of each path is matched. Index is the
// canonical index from m, or the original index when m has no entry for the
// episode key.
func ListSeason(entries []torrentfile.Entry, m *IndexMap, season int) []Episode {
	var out []Episode
	for o, e := range entries {
		s, ep, ok := matchSeasonEpisode(path.Base(e.Path))
		if !ok || s != season {
			continue
		}
		k := NewKey(s, ep)
		out = append(out, Episode{
			Season:   s,
			Episode:  ep,
			Key:      k,
			Original: o,
			Index:    m.Resolve(k, o),
			Path:     e.Path,
		})
	}

	slices.SortStableFunc(out, func(a, b Episode) int {
		return a.Episode - b.Episode
	})
	return out
}

// Seasons returns the distinct season numbers present in m, ascending.
func (m *IndexMap) Seasons() []int {
	var out []int
	for _, k := range m.Keys() {
		s, _, ok := k.Split()
		if ok && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
