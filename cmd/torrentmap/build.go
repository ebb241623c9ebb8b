package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/metrics"
	"github.com/shapedtime/torrentmap/internal/service"
	"github.com/shapedtime/torrentmap/internal/store"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "out-json",
			Value: "map.json",
			Usage: "index file to write",
		},
		&cli.StringFlag{
			Name:  "out-csv",
			Usage: "also write the file listing as CSV",
		},
		&cli.StringSliceFlag{
			Name:  "ext",
			Usage: "keep only files with these extensions, \"video\" for all video containers (default from config)",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "keep every file regardless of extension",
		},
		&cli.BoolFlag{
			Name:  "store",
			Usage: "also save the index in the configured store",
		},
	}
}

func (a *app) extensions(c *cli.Context) []string {
	if c.Bool("all") {
		return nil
	}
	if exts := c.StringSlice("ext"); len(exts) > 0 {
		return torrentfile.ExpandExtensions(exts)
	}
	return a.cfg.Index.Extensions
}

// newService returns a service with an optional store and the close func
// releasing it.
func (a *app) newService(c *cli.Context, withStore bool) (*service.Service, func(), error) {
	var s store.Store
	closeFn := func() {}
	if withStore {
		if err := a.cfg.EnsureDirectories(); err != nil {
			return nil, nil, err
		}
		var err error
		s, err = store.Open(a.cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		closeFn = func() { s.Close() }
	}

	svc := service.New(s, metrics.New(prometheus.NewRegistry()), service.Options{
		Extensions: a.extensions(c),
		Workers:    a.cfg.Index.Workers,
		Plugin:     a.cfg.Playback.Plugin,
	})
	return svc, closeFn, nil
}

// record builds the index of --torrent, or loads the stored index of --hash.
func (a *app) record(c *cli.Context) (*service.Service, *store.Record, func(), error) {
	torrent, hash := c.String("torrent"), c.String("hash")
	if (torrent == "") == (hash == "") {
		return nil, nil, nil, cli.Exit("exactly one of --torrent and --hash is required", 1)
	}

	svc, closeFn, err := a.newService(c, hash != "")
	if err != nil {
		return nil, nil, nil, err
	}

	var rec *store.Record
	if hash != "" {
		rec, err = svc.Get(hash)
	} else {
		rec, err = svc.BuildFile(c.Context, torrent)
	}
	if err != nil {
		closeFn()
		return nil, nil, nil, exitError(torrent, err)
	}
	return svc, rec, closeFn, nil
}

func exitError(torrent string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cli.Exit(fmt.Sprintf("torrent file not found: %s", torrent), exitMissingTorrent)
	case errors.Is(err, service.ErrNoFiles):
		return cli.Exit("no files in the torrent match the extension filter", exitNoFiles)
	case errors.Is(err, store.ErrNotFound):
		return cli.Exit("no stored index for that hash", 1)
	}
	return err
}

func (a *app) build(c *cli.Context) error {
	torrent := c.String("torrent")
	if torrent == "" {
		return cli.Exit("--torrent is required", 1)
	}

	svc, closeFn, err := a.newService(c, c.Bool("store"))
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := svc.BuildFile(c.Context, torrent)
	if err != nil {
		return exitError(torrent, err)
	}

	if err := episodemap.WriteFile(c.String("out-json"), rec.Index); err != nil {
		return err
	}
	if out := c.String("out-csv"); out != "" {
		if err := writeCSV(out, rec.Index.Rows(rec.Files)); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.App.Writer, "index written to %s: %d files, %d episodes\n",
		c.String("out-json"), len(rec.Files), len(rec.Index.Keys()))
	return nil
}

func writeCSV(path string, rows []episodemap.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"original", "canonical", "key", "path", "length"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			strconv.Itoa(r.Original),
			strconv.Itoa(r.Canonical),
			string(r.Key),
			r.Path,
			strconv.FormatInt(r.Length, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func (a *app) show(c *cli.Context) error {
	_, rec, closeFn, err := a.record(c)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(c.App.Writer, "%s  %s  (%s)\n", rec.Name, rec.InfoHash, rec.Layout)
	renderFiles(c.App.Writer, rec.Index.Rows(rec.Files))
	return nil
}

func (a *app) episodes(c *cli.Context) error {
	svc, rec, closeFn, err := a.record(c)
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := svc.Season(rec.InfoHash, c.Int("season"))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintf(c.App.Writer, "no episodes for season %d\n", c.Int("season"))
		return nil
	}

	renderSeason(c.App.Writer, items)
	return nil
}

func (a *app) resolve(c *cli.Context) error {
	svc, rec, closeFn, err := a.record(c)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := svc.Resolve(rec.InfoHash, c.Int("season"), c.Int("episode"))
	if err != nil {
		if errors.Is(err, service.ErrEpisodeNotFound) {
			return cli.Exit(err.Error(), 1)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s\t%d\t%s\n", res.Key, res.Index, res.URI)
	return nil
}
