package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
	tu "github.com/desertthunder/tuneup/internal/testing"
)

func TestAPIClient(t *testing.T) {
	ctx := context.Background()

	t.Run("NewAPIClient", func(t *testing.T) {
		if c := NewAPIClient("", nil); c.BaseURL() != defaultAPIBaseURL {
			t.Errorf("expected default base URL, got %s", c.BaseURL())
		}
		if c := NewAPIClient("http://localhost:9000/", nil); c.BaseURL() != "http://localhost:9000" {
			t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
		}
	})

	t.Run("ListPlaylists", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/api/playlists" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			json.NewEncoder(w).Encode([]models.Playlist{
				{ID: "p1", Name: "One", SongIDs: []string{"s1", "s2"}},
				{ID: "p2", Name: "Two", SongIDs: []string{}},
			})
		}))
		defer server.Close()

		playlists, err := NewAPIClient(server.URL, server.Client()).ListPlaylists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 || playlists[0].SongIDs[1] != "s2" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if body["name"] != "Road Trip" {
				t.Errorf("expected name Road Trip, got %v", body["name"])
			}
			if ids, ok := body["songIds"].([]any); !ok || len(ids) != 0 {
				t.Errorf("expected empty songIds array, got %v", body["songIds"])
			}

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.Playlist{ID: "new", Name: "Road Trip"})
		}))
		defer server.Close()

		playlist, err := NewAPIClient(server.URL, server.Client()).CreatePlaylist(ctx, CreatePlaylistRequest{Name: "Road Trip"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if playlist.ID != "new" {
			t.Errorf("expected id new, got %s", playlist.ID)
		}
	})

	t.Run("ListGames", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]models.Game{{ID: "g1", Name: "Quiz", Category: "trivia"}})
		}))
		defer server.Close()

		games, err := NewAPIClient(server.URL, server.Client()).ListGames(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(games) != 1 || games[0].Category != "trivia" {
			t.Errorf("unexpected games %+v", games)
		}
	})

	t.Run("non-2xx maps to ErrAPIRequest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "playlist name is required"})
		}))
		defer server.Close()

		_, err := NewAPIClient(server.URL, server.Client()).CreatePlaylist(ctx, CreatePlaylistRequest{})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "playlist name is required") || !strings.Contains(err.Error(), "400") {
			t.Errorf("expected server message and status in error, got %v", err)
		}
	})

	t.Run("non-JSON error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		if _, err := NewAPIClient(server.URL, server.Client()).ListGames(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial failed"))}
		if err := NewAPIClient("http://api.invalid", client).Health(ctx); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("body read error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		if _, err := NewAPIClient("http://api.invalid", client).ListPlaylists(ctx); err == nil {
			t.Error("expected error when body cannot be read")
		}
	})

	t.Run("playlist song routes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/playlists/p1/songs":
				var body AddSongRequest
				json.NewDecoder(r.Body).Decode(&body)
				json.NewEncoder(w).Encode(models.Playlist{ID: "p1", SongIDs: []string{body.SongID}})
			case r.Method == http.MethodDelete && r.URL.Path == "/api/playlists/p1/songs/s1":
				json.NewEncoder(w).Encode(models.Playlist{ID: "p1", SongIDs: []string{}})
			case r.Method == http.MethodDelete && r.URL.Path == "/api/playlists/p1":
				w.WriteHeader(http.StatusNoContent)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		client := NewAPIClient(server.URL, server.Client())
		added, err := client.AddPlaylistSong(ctx, "p1", "s1")
		if err != nil || len(added.SongIDs) != 1 {
			t.Fatalf("add failed: %v %+v", err, added)
		}
		removed, err := client.RemovePlaylistSong(ctx, "p1", "s1")
		if err != nil || len(removed.SongIDs) != 0 {
			t.Fatalf("remove failed: %v %+v", err, removed)
		}
		if err := client.DeletePlaylist(ctx, "p1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
	})
}
