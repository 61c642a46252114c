package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/services"
	"github.com/desertthunder/tuneup/internal/shared"
)

// PlaylistHandler serves /api/playlists.
type PlaylistHandler struct {
	playlists *repositories.PlaylistRepository
	logger    *log.Logger
}

func (h *PlaylistHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/api/playlists", h.list},
		{http.MethodPost, "/api/playlists", h.create},
		{http.MethodGet, "/api/playlists/{id}", h.get},
		{http.MethodDelete, "/api/playlists/{id}", h.delete},
		{http.MethodGet, "/api/playlists/{id}/songs", h.songs},
		{http.MethodPost, "/api/playlists/{id}/songs", h.addSong},
		{http.MethodDelete, "/api/playlists/{id}/songs/{songId}", h.removeSong},
	}
}

func (h *PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if owner := r.URL.Query().Get("owner"); owner != "" {
		criteria["owner"] = owner
	}

	playlists, err := h.playlists.List(criteria)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePlaylistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	playlist := models.NewPlaylist(strings.TrimSpace(req.Name), req.Description, req.Owner)
	if req.SongIDs != nil {
		playlist.SongIDs = req.SongIDs
	}

	if err := h.playlists.Create(playlist); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("created playlist", "id", playlist.ID, "name", playlist.Name, "songs", len(playlist.SongIDs))
	writeJSON(w, http.StatusCreated, playlist)
}

func (h *PlaylistHandler) get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.playlists.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaylistHandler) songs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.playlists.Songs(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (h *PlaylistHandler) addSong(w http.ResponseWriter, r *http.Request) {
	var req services.AddSongRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if strings.TrimSpace(req.SongID) == "" {
		writeError(w, r, h.logger, fmt.Errorf("%w: songId", shared.ErrMissingArgument))
		return
	}

	id := r.PathValue("id")
	if err := h.playlists.AddSong(id, req.SongID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondPlaylist(w, r, id)
}

func (h *PlaylistHandler) removeSong(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.playlists.RemoveSong(id, r.PathValue("songId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.respondPlaylist(w, r, id)
}

func (h *PlaylistHandler) respondPlaylist(w http.ResponseWriter, r *http.Request, id string) {
	playlist, err := h.playlists.Get(id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
