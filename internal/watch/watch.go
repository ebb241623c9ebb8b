// Package watch indexes .torrent files as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	tlog "github.com/shapedtime/torrentmap/internal/log"
	"github.com/shapedtime/torrentmap/internal/service"
	"github.com/shapedtime/torrentmap/internal/store"
)

// Indexer is the part of service.Service the watcher drives.
type Indexer interface {
	BuildFile(ctx context.Context, path string) (*store.Record, error)
	BuildDir(ctx context.Context, dir string) ([]service.DirResult, error)
	Delete(hash string) (bool, error)
}

// Watcher rebuilds a torrent's index when its file is written and drops
// the index when the file goes away.
type Watcher struct {
	idx      Indexer
	dir      string
	debounce time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	hashes  map[string]string      // path -> infohash
	pending map[string]*time.Timer // path -> debounced build
	wg      sync.WaitGroup
}

// New returns a watcher that keeps idx in sync with the .torrent files in
// dir. Builds for a path wait until it has been quiet for debounce.
func New(idx Indexer, dir string, debounce time.Duration) *Watcher {
	return &Watcher{
		idx:      idx,
		dir:      dir,
		debounce: debounce,
		log:      tlog.Component("watcher").With().Str("dir", dir).Logger(),
		hashes:   make(map[string]string),
		pending:  make(map[string]*time.Timer),
	}
}

// Run indexes the files already in the directory, then follows changes
// until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}

	results, err := w.idx.BuildDir(ctx, w.dir)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			w.log.Warn().Err(r.Err).Str("path", r.Path).Msg("initial build failed")
			continue
		}
		w.track(ctx, r.Path, r.Record.InfoHash)
	}
	w.log.Info().Int("files", len(results)).Msg("watching for torrent files")

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn().Msg("event queue overflow, rescanning")
				w.schedule(ctx, "")
				continue
			}
			w.log.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !service.IsTorrentFile(ev.Name) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.remove(ev.Name)
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.schedule(ctx, ev.Name)
	}
}

// schedule builds path once no event for it has arrived for the debounce
// interval. An empty path rescans the whole directory.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if path != "" {
		path = filepath.Clean(path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		if path == "" {
			w.rescan(ctx)
			return
		}
		w.build(ctx, path)
	})
	w.pending[path] = t
}

func (w *Watcher) build(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	rec, err := w.idx.BuildFile(ctx, path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("build failed")
		return
	}
	w.track(ctx, path, rec.InfoHash)
}

func (w *Watcher) rescan(ctx context.Context) {
	results, err := w.idx.BuildDir(ctx, w.dir)
	if err != nil {
		w.log.Error().Err(err).Msg("rescan failed")
		return
	}
	for _, r := range results {
		if r.Err == nil {
			w.track(ctx, r.Path, r.Record.InfoHash)
		}
	}
}

// track records hash as the torrent built from path. When path previously
// held a different torrent that no other path still holds, its record is
// deleted.
func (w *Watcher) track(ctx context.Context, path, hash string) {
	path = filepath.Clean(path)

	w.mu.Lock()
	old, ok := w.hashes[path]
	w.hashes[path] = hash
	orphaned := ok && old != hash && !w.heldLocked(old)
	w.mu.Unlock()

	if orphaned && ctx.Err() == nil {
		w.drop(path, old, "torrent replaced")
	}
}

// heldLocked reports whether any tracked path maps to hash. w.mu must be held.
func (w *Watcher) heldLocked(hash string) bool {
	for _, h := range w.hashes {
		if h == hash {
			return true
		}
	}
	return false
}

func (w *Watcher) drop(path, hash, msg string) {
	if _, err := w.idx.Delete(hash); err != nil {
		w.log.Warn().Err(err).Str("path", path).Str("hash", hash).Msg("delete failed")
		return
	}
	w.log.Info().Str("path", path).Str("hash", hash).Msg(msg)
}

func (w *Watcher) remove(path string) {
	path = filepath.Clean(path)

	w.mu.Lock()
	if t, ok := w.pending[path]; ok && t.Stop() {
		delete(w.pending, path)
		w.wg.Done()
	}
	hash, ok := w.hashes[path]
	delete(w.hashes, path)
	held := ok && w.heldLocked(hash)
	w.mu.Unlock()

	if !ok || held {
		return
	}
	w.drop(path, hash, "torrent removed")
}

// stop cancels pending builds and waits for running ones.
func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
