package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/playback"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/shared"
)

// PlayerRequest is the body of POST /api/player/{session}/{action}. Each action reads only the fields it needs.
type PlayerRequest struct {
	SongID      string   `json:"songId,omitempty"`
	ContextKind string   `json:"contextKind,omitempty"`
	ContextID   string   `json:"contextId,omitempty"`
	Seconds     *float64 `json:"seconds,omitempty"`
	Level       *float64 `json:"level,omitempty"`
	Mode        string   `json:"mode,omitempty"`
}

// PlayerHandler exposes playback sessions over /api/player/{session}.
type PlayerHandler struct {
	sessions  *playback.Sessions
	songs     *repositories.SongRepository
	albums    *repositories.AlbumRepository
	playlists *repositories.PlaylistRepository
	logger    *log.Logger
}

type playerAction func(h *PlayerHandler, p *playback.Player, req PlayerRequest) error

var playerActions = map[string]playerAction{
	"play":     (*PlayerHandler).play,
	"toggle":   func(_ *PlayerHandler, p *playback.Player, _ PlayerRequest) error { p.TogglePlayPause(); return nil },
	"next":     func(_ *PlayerHandler, p *playback.Player, _ PlayerRequest) error { p.NextTrack(); return nil },
	"previous": func(_ *PlayerHandler, p *playback.Player, _ PlayerRequest) error { p.PreviousTrack(); return nil },
	"shuffle":  func(_ *PlayerHandler, p *playback.Player, _ PlayerRequest) error { p.ToggleShuffle(); return nil },
	"clear":    func(_ *PlayerHandler, p *playback.Player, _ PlayerRequest) error { p.ClearQueue(); return nil },
	"seek": func(_ *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		if req.Seconds == nil {
			return fmt.Errorf("%w: seconds", shared.ErrMissingArgument)
		}
		p.SeekTo(*req.Seconds)
		return nil
	},
	"volume": func(_ *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		if req.Level == nil {
			return fmt.Errorf("%w: level", shared.ErrMissingArgument)
		}
		p.SetVolume(*req.Level)
		return nil
	},
	"repeat": func(_ *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		if req.Mode == "" {
			p.ToggleRepeat()
			return nil
		}
		mode, err := models.ParseRepeatMode(req.Mode)
		if err != nil {
			return err
		}
		p.SetRepeat(mode)
		return nil
	},
	"remove": func(_ *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		if req.SongID == "" {
			return fmt.Errorf("%w: songId", shared.ErrMissingArgument)
		}
		return p.RemoveFromQueue(req.SongID)
	},
	"enqueue": func(h *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		song, err := h.song(req.SongID)
		if err != nil {
			return err
		}
		p.AddToQueue(*song)
		return nil
	},
	"playNext": func(h *PlayerHandler, p *playback.Player, req PlayerRequest) error {
		song, err := h.song(req.SongID)
		if err != nil {
			return err
		}
		p.PlayNext(*song)
		return nil
	},
}

func (h *PlayerHandler) Routes() []Route {
	return []Route{
		{http.MethodGet, "/api/player/{session}", h.state},
		{http.MethodDelete, "/api/player/{session}", h.drop},
		{http.MethodPost, "/api/player/{session}/{action}", h.action},
	}
}

func (h *PlayerHandler) state(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Get(r.Context(), r.PathValue("session"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (h *PlayerHandler) drop(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Drop(r.Context(), r.PathValue("session")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayerHandler) action(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("action")
	act, ok := playerActions[name]
	if !ok {
		writeError(w, r, h.logger, fmt.Errorf("%w: unknown player action %q", shared.ErrInvalidArgument, name))
		return
	}

	var req PlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.sessions.Get(r.Context(), r.PathValue("session"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := act(h, p, req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// play starts a song within the album, playlist or single-track context named by req.
//
// An album context without an id uses the song's own album.
func (h *PlayerHandler) play(p *playback.Player, req PlayerRequest) error {
	song, err := h.song(req.SongID)
	if err != nil {
		return err
	}

	kind, err := models.ParseContextKind(req.ContextKind)
	if err != nil {
		return err
	}

	pc := models.PlayContext{Kind: kind, ID: strings.TrimSpace(req.ContextID)}
	switch kind {
	case models.ContextAlbum:
		if pc.ID == "" {
			pc.ID = song.AlbumID
		}
		if pc.ID == "" {
			return fmt.Errorf("%w: contextId", shared.ErrMissingArgument)
		}
		album, err := h.albums.GetWithTracks(pc.ID)
		if err != nil {
			return err
		}
		pc.Tracks = album.Tracks
	case models.ContextPlaylist:
		if pc.ID == "" {
			return fmt.Errorf("%w: contextId", shared.ErrMissingArgument)
		}
		songs, err := h.playlists.Songs(pc.ID)
		if err != nil {
			return err
		}
		pc.Tracks = make([]models.Song, len(songs))
		for i, s := range songs {
			pc.Tracks[i] = *s
		}
	default:
		pc.ID = song.ID
		pc.Tracks = []models.Song{*song}
	}

	p.Play(*song, pc)
	return nil
}

func (h *PlayerHandler) song(id string) (*models.Song, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: songId", shared.ErrMissingArgument)
	}
	return h.songs.Get(id)
}
