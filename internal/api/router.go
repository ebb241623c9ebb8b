// Package api exposes built index maps over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	tlog "github.com/shapedtime/torrentmap/internal/log"
	"github.com/shapedtime/torrentmap/internal/service"
)

// maxTorrentSize caps uploaded metainfo documents.
const maxTorrentSize = 16 << 20

// Server represents the REST API server
type Server struct {
	router  *gin.Engine
	svc     *service.Service
	started time.Time
	log     zerolog.Logger
}

// NewServer creates a new API server. Metrics registered on g are served
// at /metrics.
func NewServer(svc *service.Service, g prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:  gin.New(),
		svc:     svc,
		started: time.Now(),
		log:     tlog.Component("api"),
	}

	s.setupMiddleware()
	s.setupRoutes(g)

	return s
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.router.Use(gin.Recovery())

	// Logging middleware
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("api request")
	})
}

func (s *Server) setupRoutes(g prometheus.Gatherer) {
	api := s.router.Group("/api")

	// Torrents
	api.GET("/torrents", s.listTorrents)
	api.POST("/torrents", s.createTorrent)
	api.GET("/torrents/:hash", s.getTorrent)
	api.DELETE("/torrents/:hash", s.deleteTorrent)

	// Index maps
	api.GET("/torrents/:hash/index", s.getIndex)
	api.GET("/torrents/:hash/seasons/:season", s.getSeason)
	api.GET("/torrents/:hash/episodes/:key", s.getEpisode)

	// Status
	api.GET("/status", s.getStatus)

	if g != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Error response helper
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Error{Error: message})
}
