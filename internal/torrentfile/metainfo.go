package torrentfile

import (
	"fmt"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/shapedtime/torrentmap/internal/bencode"
)

// Torrent is what the index builder needs from a metainfo file.
type Torrent struct {
	InfoHash metainfo.Hash
	Name     string
	Trackers []string
	Layout   Layout
	Files    []Entry
}

// Load decodes a complete metainfo file and lists its files. The infohash
// is computed over the info dictionary exactly as it appears in data.
func Load(data []byte) (*Torrent, error) {
	root, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}

	top, ok := root.(bencode.Dict)
	if !ok {
		return nil, ErrMissingInfo
	}
	info, ok := top["info"].(bencode.Dict)
	if !ok {
		return nil, ErrMissingInfo
	}

	raw, ok, err := bencode.RawValue(data, "info")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingInfo
	}

	files, err := Extract(info)
	if err != nil {
		return nil, err
	}

	t := &Torrent{
		InfoHash: metainfo.HashBytes(raw),
		Trackers: trackers(top),
		Layout:   layoutOf(info),
		Files:    files,
	}
	if name, ok := info["name"].(bencode.Bytes); ok {
		t.Name = DecodeName(name)
	}

	return t, nil
}

// Magnet returns a magnet URI for the torrent.
func (t *Torrent) Magnet() string {
	m := metainfo.Magnet{
		InfoHash:    t.InfoHash,
		DisplayName: t.Name,
		Trackers:    t.Trackers,
	}
	return m.String()
}

func (t *Torrent) String() string {
	return fmt.Sprintf("%s (%s, %d files)", t.Name, t.InfoHash.HexString(), len(t.Files))
}

func layoutOf(info bencode.Dict) Layout {
	if _, ok := info["files"]; ok {
		return LayoutFiles
	}
	_, hasName := info["name"]
	_, hasLength := info["length"]
	if hasName && hasLength {
		return LayoutSingle
	}
	return LayoutFileTree
}

// trackers flattens announce-list tiers, falling back to announce.
func trackers(top bencode.Dict) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(v bencode.Value) {
		b, ok := v.(bencode.Bytes)
		if !ok || len(b) == 0 || seen[string(b)] {
			return
		}
		seen[string(b)] = true
		out = append(out, string(b))
	}

	if tiers, ok := top["announce-list"].(bencode.List); ok {
		for _, tier := range tiers {
			urls, ok := tier.(bencode.List)
			if !ok {
				continue
			}
			for _, u := range urls {
				add(u)
			}
		}
	}
	if len(out) == 0 {
		add(top["announce"])
	}
	return out
}
