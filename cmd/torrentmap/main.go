package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/shapedtime/torrentmap/internal/config"
	tlog "github.com/shapedtime/torrentmap/internal/log"
)

// Exit codes besides 0 and 1.
const (
	exitMissingTorrent = 2
	exitNoFiles        = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("torrentmap failed")
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
}

func newApp() *cli.App {
	a := &app{}

	return &cli.App{
		Name:  "torrentmap",
		Usage: "map torrent file order to episodes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
				EnvVars: []string{"TORRENTMAP_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "build the index file of a torrent",
				Flags:  append(torrentFlags()[:1], buildFlags()...),
				Action: a.build,
			},
			{
				Name:   "show",
				Usage:  "list the files of a torrent with their indices",
				Flags:  torrentFlags(),
				Action: a.show,
			},
			{
				Name:  "episodes",
				Usage: "list the episodes of one season",
				Flags: append(torrentFlags(), &cli.IntFlag{
					Name:     "season",
					Aliases:  []string{"s"},
					Required: true,
				}),
				Action: a.episodes,
			},
			{
				Name:  "resolve",
				Usage: "print the file index and play URI of one episode",
				Flags: append(torrentFlags(),
					&cli.IntFlag{Name: "season", Aliases: []string{"s"}, Required: true},
					&cli.IntFlag{Name: "episode", Aliases: []string{"e"}, Required: true},
				),
				Action: a.resolve,
			},
			{
				Name:  "serve",
				Usage: "serve stored indices over HTTP",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "also index the watch directory"},
				},
				Action: a.serve,
			},
			{
				Name:   "watch",
				Usage:  "index .torrent files as they appear in the watch directory",
				Action: a.watch,
			},
		},
	}
}

// torrentFlags select the torrent a command reads.
func torrentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "torrent",
			Aliases: []string{"t"},
			Usage:   "path to a .torrent file",
		},
		&cli.StringFlag{
			Name:  "hash",
			Usage: "info hash of a stored index",
		},
		&cli.StringSliceFlag{
			Name:  "ext",
			Usage: "keep only files with these extensions, \"video\" for all video containers (default from config)",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "keep every file regardless of extension",
		},
	}
}

func (a *app) before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("debug") {
		cfg.Log.Debug = true
	}
	tlog.Load(cfg.Log)
	a.cfg = cfg
	return nil
}
