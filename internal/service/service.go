// Package service builds, stores and serves torrent index maps.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	tlog "github.com/shapedtime/torrentmap/internal/log"
	"github.com/shapedtime/torrentmap/internal/metrics"
	"github.com/shapedtime/torrentmap/internal/playback"
	"github.com/shapedtime/torrentmap/internal/store"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

// Options configures a Service.
type Options struct {
	// Extensions is the post-extraction filter. Empty keeps every file.
	Extensions []string
	// Workers bounds concurrent builds in BuildDir.
	Workers int
	// Output, when set, receives an index file per built torrent.
	Output string
	// Plugin is the play endpoint used for URIs.
	Plugin string
}

// Service builds index records from torrents and answers lookups on them.
// Records are cached by infohash; concurrent loads of one hash share a
// single store read.
type Service struct {
	store    store.Store // may be nil
	metrics  *metrics.Metrics
	resolver *playback.Resolver

	exts    []string
	workers int
	output  string

	group   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]*store.Record // keyed by infohash

	log zerolog.Logger
}

// New creates a service. s may be nil, in which case built records are
// only cached in memory.
func New(s store.Store, m *metrics.Metrics, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Service{
		store:    s,
		metrics:  m,
		resolver: playback.NewResolver(opts.Plugin),
		exts:     opts.Extensions,
		workers:  opts.Workers,
		output:   opts.Output,
		cache:    make(map[string]*store.Record),
		log:      tlog.Component("index-service"),
	}
}

// BuildFile reads and indexes the torrent file at path.
func (s *Service) BuildFile(ctx context.Context, path string) (*store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return s.BuildBytes(ctx, abs, data)
}

// BuildBytes indexes a metainfo document. source is recorded as the
// location players load the torrent from; it may be empty.
func (s *Service) BuildBytes(ctx context.Context, source string, data []byte) (*store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	rec, err := s.build(source, data)
	if err != nil {
		s.observeError(source, err)
		return nil, err
	}
	s.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	s.metrics.FilesIndexed.Observe(float64(len(rec.Files)))
	s.metrics.Episodes.Observe(float64(len(rec.Index.Keys())))

	if s.store != nil {
		if err := s.store.Put(rec); err != nil {
			s.metrics.Builds.WithLabelValues(metrics.ResultError).Inc()
			return nil, fmt.Errorf("store %s: %w", rec.InfoHash, err)
		}
	}
	if s.output != "" {
		if err := episodemap.WriteFile(filepath.Join(s.output, rec.InfoHash+".json"), rec.Index); err != nil {
			s.metrics.Builds.WithLabelValues(metrics.ResultError).Inc()
			return nil, fmt.Errorf("write index %s: %w", rec.InfoHash, err)
		}
	}

	s.cacheMu.Lock()
	s.cache[rec.InfoHash] = rec
	s.cacheMu.Unlock()

	s.metrics.Builds.WithLabelValues(metrics.ResultOK).Inc()
	s.log.Info().
		Str("hash", rec.InfoHash).
		Str("name", rec.Name).
		Int("files", len(rec.Files)).
		Int("episodes", len(rec.Index.Keys())).
		Msg("index built")

	return rec, nil
}

func (s *Service) build(source string, data []byte) (*store.Record, error) {
	t, err := torrentfile.Load(data)
	if err != nil {
		return nil, err
	}

	files := torrentfile.FilterExtensions(t.Files, s.exts)
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", t.InfoHash.HexString(), ErrNoFiles)
	}

	return &store.Record{
		InfoHash:  t.InfoHash.HexString(),
		Name:      t.Name,
		Source:    source,
		Layout:    t.Layout,
		Trackers:  t.Trackers,
		Files:     files,
		Index:     episodemap.Build(files),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) observeError(source string, err error) {
	reason := Reason(err)
	result := metrics.ResultError
	if errors.Is(err, ErrNoFiles) {
		result = metrics.ResultEmpty
	}
	s.metrics.Builds.WithLabelValues(result).Inc()
	s.metrics.BuildErrors.WithLabelValues(reason).Inc()
	s.log.Warn().Err(err).Str("source", source).Str("reason", reason).Msg("index build failed")
}

// Get returns the record for hash. Concurrent misses for the same hash
// share one store lookup.
func (s *Service) Get(hash string) (*store.Record, error) {
	h, err := store.NormalizeHash(hash)
	if err != nil {
		return nil, err
	}

	s.cacheMu.RLock()
	rec, ok := s.cache[h]
	s.cacheMu.RUnlock()
	if ok {
		s.metrics.CacheHits.Inc()
		return rec, nil
	}
	s.metrics.CacheMisses.Inc()

	if s.store == nil {
		return nil, store.ErrNotFound
	}

	v, err, _ := s.group.Do(h, func() (interface{}, error) {
		rec, err := s.store.Get(h)
		if err != nil {
			return nil, err
		}
		s.cacheMu.Lock()
		s.cache[h] = rec
		s.cacheMu.Unlock()
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Record), nil
}

// List returns every stored record, or the cached ones without a store.
func (s *Service) List() ([]*store.Record, error) {
	if s.store != nil {
		return s.store.List()
	}

	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	out := make([]*store.Record, 0, len(s.cache))
	for _, r := range s.cache {
		out = append(out, r)
	}
	sortRecords(out)
	return out, nil
}

// Delete removes the record for hash and reports whether one existed.
func (s *Service) Delete(hash string) (bool, error) {
	h, err := store.NormalizeHash(hash)
	if err != nil {
		return false, err
	}

	s.cacheMu.Lock()
	_, cached := s.cache[h]
	delete(s.cache, h)
	s.cacheMu.Unlock()
	s.group.Forget(h)

	if s.store == nil {
		return cached, nil
	}
	removed, err := s.store.Delete(h)
	if err != nil {
		return false, err
	}
	s.log.Info().Str("hash", h).Bool("removed", removed).Msg("index deleted")
	return removed, nil
}

// Count reports the number of known records.
func (s *Service) Count() (int, error) {
	if s.store != nil {
		return s.store.Count()
	}
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return len(s.cache), nil
}

// Resolution is the file a player should open for one episode.
type Resolution struct {
	Key      episodemap.Key `json:"key"`
	Index    int            `json:"index"`
	Original int            `json:"original"`
	Path     string         `json:"path,omitempty"`
	Mapped   bool           `json:"mapped"`
	URI      string         `json:"uri"`
}

// Resolve finds the file index of season/episode in the torrent with hash.
// The index map is consulted first. Episodes it does not know fall back to
// the declared position of the file whose base name carries the marker.
func (s *Service) Resolve(hash string, season, episode int) (*Resolution, error) {
	rec, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	return s.resolve(rec, season, episode)
}

func (s *Service) resolve(rec *store.Record, season, episode int) (*Resolution, error) {
	k := episodemap.NewKey(season, episode)
	res := &Resolution{Key: k, Original: -1}

	for _, e := range episodemap.ListSeason(rec.Files, rec.Index, season) {
		if e.Episode == episode {
			res.Original = e.Original
			res.Path = e.Path
			break
		}
	}

	c, mapped := rec.Index.Episode(k)
	switch {
	case mapped:
		res.Index = c
		res.Mapped = true
	case res.Original >= 0:
		res.Index = s.resolver.Resolve(rec.Index, season, episode, res.Original)
	default:
		return nil, fmt.Errorf("%s in %s: %w", k, rec.InfoHash, ErrEpisodeNotFound)
	}

	res.URI = s.resolver.PlayURI(rec.Location(), res.Index)
	return res, nil
}

// Season lists the playable episodes of season in the torrent with hash.
func (s *Service) Season(hash string, season int) ([]playback.Item, error) {
	rec, err := s.Get(hash)
	if err != nil {
		return nil, err
	}
	return s.resolver.Season(rec.Location(), rec.Files, rec.Index, season), nil
}
