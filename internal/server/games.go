package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/services"
)

// GameHandler serves /api/games.
type GameHandler struct {
	games  *repositories.GameRepository
	logger *log.Logger
}

func (h *GameHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/api/games", h.list},
		{http.MethodPost, "/api/games", h.create},
		{http.MethodGet, "/api/games/{id}", h.get},
		{http.MethodDelete, "/api/games/{id}", h.delete},
	}
}

func (h *GameHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if category := r.URL.Query().Get("category"); category != "" {
		criteria["category"] = category
	}

	games, err := h.games.List(criteria)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	game := models.NewGame(req.Name, req.Category, req.ThumbnailURL)
	if err := h.games.Create(game); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (h *GameHandler) get(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *GameHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.games.Delete(r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
