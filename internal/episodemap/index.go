package episodemap

import (
	"maps"
	"slices"
	"strings"

	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// IndexMap relates the declared (original) position of each file to its
// position in path order (canonical), and episode keys to canonical
// positions. It is not modified after Build or ReadFile returns it.
type IndexMap struct {
	o2e  map[int]int
	se2e map[Key]int
}

// Build computes the index map of entries, which must be in the order the
// torrent declares them.
//
// Canonical order is a stable sort by path, so entries with equal paths keep
// their declared relative order. When several entries carry the same key the
// last one in declared order wins.
func Build(entries []torrentfile.Entry) *IndexMap {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return strings.Compare(entries[a].Path, entries[b].Path)
	})

	canonical := make([]int, len(entries))
	for c, o := range order {
		canonical[o] = c
	}

	m := &IndexMap{
		o2e:  make(map[int]int, len(entries)),
		se2e: make(map[Key]int),
	}
	for o, e := range entries {
		m.o2e[o] = canonical[o]
		if k, ok := ParseSeasonEpisode(e.Path); ok {
			m.se2e[k] = canonical[o]
		}
	}
	return m
}

// Len returns the number of files in the map.
func (m *IndexMap) Len() int {
	return len(m.o2e)
}

// Canonical returns the canonical index of the file declared at original.
func (m *IndexMap) Canonical(original int) (int, bool) {
	c, ok := m.o2e[original]
	return c, ok
}

// Episode returns the canonical index of the file carrying k.
func (m *IndexMap) Episode(k Key) (int, bool) {
	c, ok := m.se2e[k]
	return c, ok
}

// Resolve returns the canonical index for k, or fallback when no file
// carries k.
func (m *IndexMap) Resolve(k Key, fallback int) int {
	if c, ok := m.se2e[k]; ok {
		return c
	}
	return fallback
}

// Keys returns the episode keys in ascending order.
func (m *IndexMap) Keys() []Key {
	return slices.Sorted(maps.Keys(m.se2e))
}

// OriginalToCanonical returns a copy of the original → canonical mapping.
func (m *IndexMap) OriginalToCanonical() map[int]int {
	return maps.Clone(m.o2e)
}

// EpisodeToCanonical returns a copy of the key → canonical mapping.
func (m *IndexMap) EpisodeToCanonical() map[Key]int {
	return maps.Clone(m.se2e)
}

// Row describes one file for listings.
type Row struct {
	Original  int
	Canonical int
	Key       Key
	Path      string
	Length    int64
}

// Rows pairs entries with their indices, in declared order.
func (m *IndexMap) Rows(entries []torrentfile.Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for o, e := range entries {
		c, ok := m.o2e[o]
		if !ok {
			c = -1
		}
		k, _ := ParseSeasonEpisode(e.Path)
		rows = append(rows, Row{Original: o, Canonical: c, Key: k, Path: e.Path, Length: e.Length})
	}
	return rows
}
