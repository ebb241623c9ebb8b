package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/service"
	"github.com/shapedtime/torrentmap/internal/store"
)

// listTorrents returns all indexed torrents
// GET /api/torrents
func (s *Server) listTorrents(c *gin.Context) {
	records, err := s.svc.List()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response := TorrentListResponse{
		Torrents: make([]TorrentResponse, len(records)),
	}
	for i, r := range records {
		response.Torrents[i] = toTorrentResponse(r)
	}

	c.JSON(http.StatusOK, response)
}

// createTorrent indexes a raw .torrent request body
// POST /api/torrents?source=<location>
func (s *Server) createTorrent(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTorrentSize))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			errorResponse(c, http.StatusRequestEntityTooLarge, "torrent too large")
			return
		}
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(data) == 0 {
		errorResponse(c, http.StatusBadRequest, "request body is empty")
		return
	}

	rec, err := s.svc.BuildBytes(c.Request.Context(), c.Query("source"), data)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toDetailResponse(rec))
}

// getTorrent returns a torrent with its file listing
// GET /api/torrents/:hash
func (s *Server) getTorrent(c *gin.Context) {
	rec, err := s.svc.Get(c.Param("hash"))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDetailResponse(rec))
}

// deleteTorrent removes an indexed torrent
// DELETE /api/torrents/:hash
func (s *Server) deleteTorrent(c *gin.Context) {
	removed, err := s.svc.Delete(c.Param("hash"))
	if err != nil {
		serviceError(c, err)
		return
	}
	if !removed {
		errorResponse(c, http.StatusNotFound, "torrent not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// getIndex returns the index map in index-file form
// GET /api/torrents/:hash/index
func (s *Server) getIndex(c *gin.Context) {
	rec, err := s.svc.Get(c.Param("hash"))
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec.Index)
}

// getSeason lists the episodes of one season with play URIs
// GET /api/torrents/:hash/seasons/:season
func (s *Server) getSeason(c *gin.Context) {
	season, err := strconv.Atoi(c.Param("season"))
	if err != nil || season < 0 {
		errorResponse(c, http.StatusBadRequest, "invalid season number")
		return
	}

	items, err := s.svc.Season(c.Param("hash"), season)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SeasonResponse{Season: season, Episodes: items})
}

// getEpisode resolves one episode, given as S01E02 or 1x02
// GET /api/torrents/:hash/episodes/:key
func (s *Server) getEpisode(c *gin.Context) {
	k, ok := episodemap.ParseSeasonEpisode(c.Param("key"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid episode key")
		return
	}
	season, episode, _ := k.Split()

	res, err := s.svc.Resolve(c.Param("hash"), season, episode)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GET /api/status
func (s *Server) getStatus(c *gin.Context) {
	n, err := s.svc.Count()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Status:  "ok",
		Records: n,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidHash):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		errorResponse(c, http.StatusNotFound, "torrent not found")
	case errors.Is(err, service.ErrEpisodeNotFound):
		errorResponse(c, http.StatusNotFound, err.Error())
	case service.IsInvalidTorrent(err):
		c.JSON(http.StatusUnprocessableEntity, Error{Error: err.Error(), Reason: service.Reason(err)})
	default:
		errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
