package api

import (
	"time"

	"github.com/shapedtime/torrentmap/internal/episodemap"
	"github.com/shapedtime/torrentmap/internal/playback"
	"github.com/shapedtime/torrentmap/internal/store"
	"github.com/shapedtime/torrentmap/internal/torrentfile"
)

type TorrentListResponse struct {
	Torrents []TorrentResponse `json:"torrents"`
}

type TorrentResponse struct {
	InfoHash  string             `json:"info_hash"`
	Name      string             `json:"name"`
	Source    string             `json:"source,omitempty"`
	Magnet    string             `json:"magnet"`
	Layout    torrentfile.Layout `json:"layout"`
	Files     int                `json:"files"`
	Episodes  int                `json:"episodes"`
	Seasons   []int              `json:"seasons"`
	CreatedAt time.Time          `json:"created_at"`
}

type FileResponse struct {
	Original  int            `json:"original"`
	Canonical int            `json:"canonical"`
	Key       episodemap.Key `json:"key,omitempty"`
	Path      string         `json:"path"`
	Length    int64          `json:"length"`
}

type TorrentDetailResponse struct {
	TorrentResponse
	Trackers []string       `json:"trackers,omitempty"`
	FileList []FileResponse `json:"file_list"`
}

type SeasonResponse struct {
	Season   int             `json:"season"`
	Episodes []playback.Item `json:"episodes"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Uptime  string `json:"uptime"`
}

type Error struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func toTorrentResponse(r *store.Record) TorrentResponse {
	seasons := r.Index.Seasons()
	if seasons == nil {
		seasons = []int{}
	}
	return TorrentResponse{
		InfoHash:  r.InfoHash,
		Name:      r.Name,
		Source:    r.Source,
		Magnet:    r.Magnet(),
		Layout:    r.Layout,
		Files:     len(r.Files),
		Episodes:  len(r.Index.Keys()),
		Seasons:   seasons,
		CreatedAt: r.CreatedAt,
	}
}

func toDetailResponse(r *store.Record) TorrentDetailResponse {
	rows := r.Index.Rows(r.Files)
	files := make([]FileResponse, len(rows))
	for i, row := range rows {
		files[i] = FileResponse{
			Original:  row.Original,
			Canonical: row.Canonical,
			Key:       row.Key,
			Path:      row.Path,
			Length:    row.Length,
		}
	}
	return TorrentDetailResponse{
		TorrentResponse: toTorrentResponse(r),
		Trackers:        r.Trackers,
		FileList:        files,
	}
}
