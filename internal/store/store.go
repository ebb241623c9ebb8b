// Package store persists built index records.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anacrolix/torrent/metainfo"

	"github.com/shapedtime/torrentmap/internal/config"
	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// Sentinel errors for store operations.
var (
	ErrNotFound    = errors.New("index record not found")
	ErrInvalidHash = errors.New("invalid info hash")
)

// Record is one indexed torrent.
type Record struct {
	InfoHash  string               `json:"info_hash"`
	Name      string               `json:"name"`
	Source    string               `json:"source"`
	Layout    torrentfile.Layout   `json:"layout"`
	Trackers  []string             `json:"trackers,omitempty"`
	Files     []torrentfile.Entry  `json:"files"`
	Index     *episodemap.IndexMap `json:"index"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store is implemented by the record backends.
type Store interface {
	// Put inserts or replaces the record with r.InfoHash.
	Put(r *Record) error
	// Get returns ErrNotFound when no record has hash.
	Get(hash string) (*Record, error)
	// List returns all records ordered by name, then hash.
	List() ([]*Record, error)
	// Delete reports whether a record was removed.
	Delete(hash string) (bool, error)
	Count() (int, error)
	Close() error
}

// Open opens the backend selected by cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return NewSQLite(cfg.Path)
	case config.BackendBadger, "":
		return NewBadger(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// NormalizeHash validates a hex info hash and returns it in lower case.
func NormalizeHash(h string) (string, error) {
	var mh metainfo.Hash
	if err := mh.FromHexString(h); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidHash, h)
	}
	return strings.ToLower(h), nil
}

// Magnet returns a magnet URI for the record.
func (r *Record) Magnet() string {
	var h metainfo.Hash
	if err := h.FromHexString(r.InfoHash); err != nil {
		return ""
	}
	m := metainfo.Magnet{
		InfoHash:    h,
		DisplayName: r.Name,
		Trackers:    r.Trackers,
	}
	return m.String()
}

// Location returns where a player can load the torrent from: its source
// file when known, otherwise a magnet URI.
func (r *Record) Location() string {
	if r.Source != "" {
		return r.Source
	}
	return r.Magnet()
}
