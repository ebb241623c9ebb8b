package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/shapedtime/torrentmap/internal/api"
	"github.com/shapedtime/torrentmap/internal/metrics"
	"github.com/shapedtime/torrentmap/internal/service"
	"github.com/shapedtime/torrentmap/internal/store"
	"github.com/shapedtime/torrentmap/internal/watch"
)

type daemon struct {
	svc   *service.Service
	reg   *prometheus.Registry
	store store.Store
}

func (a *app) openDaemon() (*daemon, error) {
	if err := a.cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("create directories: %w", err)
	}

	s, err := store.Open(a.cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Info().Str("backend", a.cfg.Store.Backend).Str("path", a.cfg.Store.Path).Msg("store opened")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewStoreCollector(s),
	)

	svc := service.New(s, metrics.New(reg), service.Options{
		Extensions: a.cfg.Index.Extensions,
		Workers:    a.cfg.Index.Workers,
		Output:     a.cfg.Index.Output,
		Plugin:     a.cfg.Playback.Plugin,
	})

	return &daemon{svc: svc, reg: reg, store: s}, nil
}

func (a *app) newWatcher(d *daemon) *watch.Watcher {
	return watch.New(d.svc, a.cfg.Watch.Dir, time.Duration(a.cfg.Watch.Debounce)*time.Millisecond)
}

func (a *app) serve(c *cli.Context) error {
	d, err := a.openDaemon()
	if err != nil {
		return err
	}
	defer d.store.Close()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.HTTPPort),
		Handler:           api.NewServer(d.svc, d.reg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(c.Context)
	g.Go(func() error {
		log.Info().Str("addr", httpServer.Addr).Msg("starting REST API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if c.Bool("watch") {
		w := a.newWatcher(d)
		g.Go(func() error { return w.Run(ctx) })
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *app) watch(c *cli.Context) error {
	d, err := a.openDaemon()
	if err != nil {
		return err
	}
	defer d.store.Close()

	return a.newWatcher(d).Run(c.Context)
}
