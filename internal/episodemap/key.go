// Package episodemap maps the declared file order of a torrent to a stable
// canonical order and indexes episodes by their season/episode key.
package episodemap

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// seasonEpisode recognises "1x02" and "S01E02". Alternation is
// leftmost-first, so the "x" form wins when both start at the same place.
var seasonEpisode = regexp.MustCompile(`(?i)(\d{1,2})x(\d{1,2})|S(\d{1,2})E(\d{1,2})`)

// keyPattern matches a normalised Key.
var keyPattern = regexp.MustCompile(`^S(\d{2})E(\d{2})$`)

// Key is a normalised season/episode identifier such as "S01E02".
type Key string

// NewKey formats season and episode as a Key.
func NewKey(season, episode int) Key {
	return Key(fmt.Sprintf("S%02dE%02d", season, episode))
}

// Split returns the season and episode numbers of k.
func (k Key) Split() (season, episode int, ok bool) {
	m := keyPattern.FindStringSubmatch(string(k))
	if m == nil {
		return 0, 0, false
	}
	return parseInt(m[1]), parseInt(m[2]), true
}

// Valid reports whether k has the normalised form.
func (k Key) Valid() bool {
	return keyPattern.MatchString(string(k))
}

// ParseSeasonEpisode finds the first season/episode marker in path after
// removing all whitespace from it.
func ParseSeasonEpisode(path string) (Key, bool) {
	season, episode, ok := matchSeasonEpisode(stripSpace(path))
	if !ok {
		return "", false
	}
	return NewKey(season, episode), true
}

func matchSeasonEpisode(s string) (season, episode int, ok bool) {
	m := seasonEpisode.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	if m[1] != "" {
		return parseInt(m[1]), parseInt(m[2]), true
	}
	return parseInt(m[3]), parseInt(m[4]), true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// parseInt converts a run of ASCII digits, returning 0 for anything else.
func parseInt(s string) int {
	var result int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		result = result*10 + int(c-'0')
	}
	return result
}
