package service

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/shapedtime/torrentmap/internal/store"
)

// DirResult is the outcome of building one file in BuildDir.
type DirResult struct {
	Path   string
	Record *store.Record
	Err    error
}

// BuildDir indexes every .torrent file directly inside dir with at most
// Options.Workers builds in flight. Per-file failures are reported in the
// results; the returned error is set only when dir cannot be read or ctx
// ends.
func (s *Service) BuildDir(ctx context.Context, dir string) ([]DirResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsTorrentFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	results := make([]DirResult, len(paths))
	sem := semaphore.NewWeighted(int64(s.workers))
	var wg sync.WaitGroup
	for i, p := range paths {
		results[i].Path = p
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i].Record, results[i].Err = s.BuildFile(ctx, p)
		}(i, p)
	}
	wg.Wait()

	s.log.Info().Str("dir", dir).Int("files", len(paths)).Msg("directory indexed")
	return results, ctx.Err()
}

// IsTorrentFile reports whether name has the .torrent extension.
func IsTorrentFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".torrent")
}

func sortRecords(rs []*store.Record) {
	slices.SortStableFunc(rs, func(a, b *store.Record) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.InfoHash, b.InfoHash)
	})
}
