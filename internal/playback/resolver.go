// Package playback turns episode keys into the file index and play URI a
// downstream torrent player expects.
package playback

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// DefaultPlugin is the Elementum play endpoint.
const DefaultPlugin = "plugin://plugin.video.elementum/play"

// Resolver renders play URIs for a single player endpoint.
type Resolver struct {
	plugin string
}

// NewResolver returns a Resolver for plugin. An empty plugin selects
// DefaultPlugin.
func NewResolver(plugin string) *Resolver {
	if plugin == "" {
		plugin = DefaultPlugin
	}
	return &Resolver{plugin: strings.TrimRight(plugin, "?")}
}

// Resolve returns the canonical index of season/episode in m, or original
// when m does not know the episode.
func (r *Resolver) Resolve(m *episodemap.IndexMap, season, episode, original int) int {
	return m.Resolve(episodemap.NewKey(season, episode), original)
}

// PlayURI returns the player URI that opens file index of the torrent at
// location. location may be a file path, URL or magnet link.
func (r *Resolver) PlayURI(location string, index int) string {
	return fmt.Sprintf("%s?uri=%s&index=%d", r.plugin, url.QueryEscape(location), index)
}

// Item is one playable episode.
type Item struct {
	episodemap.Episode
	URI string `json:"uri"`
}

// Season lists the episodes of season with their play URIs.
func (r *Resolver) Season(location string, entries []torrentfile.Entry, m *episodemap.IndexMap, season int) []Item {
	episodes := episodemap.ListSeason(entries, m, season)
	items := make([]Item, len(episodes))
	for i, e := range episodes {
		items[i] = Item{Episode: e, URI: r.PlayURI(location, e.Index)}
	}
	return items
}
