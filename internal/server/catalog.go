package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/shared"
)

// CatalogHandler serves the read-only song and album catalog.
type CatalogHandler struct {
	songs  *repositories.SongRepository
	albums *repositories.AlbumRepository
	logger *log.Logger
}

func (h *CatalogHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/api/songs", h.listSongs},
		{http.MethodGet, "/api/songs/{id}", h.getSong},
		{http.MethodGet, "/api/albums", h.listAlbums},
		{http.MethodGet, "/api/albums/{id}", h.getAlbum},
	}
}

// listSongs accepts album, artist, unresolved and limit query parameters.
func (h *CatalogHandler) listSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := map[string]any{}
	if album := q.Get("album"); album != "" {
		criteria["album_id"] = album
	}
	if artist := q.Get("artist"); artist != "" {
		criteria["artist"] = artist
	}
	if q.Get("unresolved") == "true" {
		criteria["unresolved"] = true
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, h.logger, fmt.Errorf("%w: limit must be a non-negative integer", shared.ErrInvalidArgument))
			return
		}
		criteria["limit"] = limit
	}

	songs, err := h.songs.List(criteria)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (h *CatalogHandler) getSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

func (h *CatalogHandler) listAlbums(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		criteria["artist"] = artist
	}

	albums, err := h.albums.List(criteria)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *CatalogHandler) getAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.albums.GetWithTracks(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}
