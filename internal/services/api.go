// REST client for the tuneup API server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const defaultAPIBaseURL = "http://127.0.0.1:3000"

// CreatePlaylistRequest is the body of POST /api/playlists.
type CreatePlaylistRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SongIDs     []string `json:"songIds"`
	Owner       string   `json:"owner,omitempty"`
}

// CreateGameRequest is the body of POST /api/games.
type CreateGameRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// AddSongRequest is the body of POST /api/playlists/{id}/songs.
type AddSongRequest struct {
	SongID string `json:"songId"`
}

// ErrorResponse is the JSON body the server sends with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIClient provides the request helpers the client uses against the REST surface.
//
// Any non-2xx response is returned as an error wrapping [shared.ErrAPIRequest].
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client for the server at baseURL.
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// BaseURL returns the server address requests are sent to.
func (a *APIClient) BaseURL() string {
	return a.baseURL
}

func (a *APIClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: %s %s (status %d): %s", shared.ErrAPIRequest, method, path, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: %s %s (status %d)", shared.ErrAPIRequest, method, path, resp.StatusCode)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ListPlaylists calls GET /api/playlists.
func (a *APIClient) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	if err := a.doRequest(ctx, http.MethodGet, "/api/playlists", nil, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// GetPlaylist calls GET /api/playlists/{id}.
func (a *APIClient) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := a.doRequest(ctx, http.MethodGet, "/api/playlists/"+url.PathEscape(id), nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// CreatePlaylist calls POST /api/playlists.
func (a *APIClient) CreatePlaylist(ctx context.Context, body CreatePlaylistRequest) (*models.Playlist, error) {
	if body.SongIDs == nil {
		body.SongIDs = []string{}
	}

	var playlist models.Playlist
	if err := a.doRequest(ctx, http.MethodPost, "/api/playlists", body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// DeletePlaylist calls DELETE /api/playlists/{id}.
func (a *APIClient) DeletePlaylist(ctx context.Context, id string) error {
	return a.doRequest(ctx, http.MethodDelete, "/api/playlists/"+url.PathEscape(id), nil, nil)
}

// AddPlaylistSong calls POST /api/playlists/{id}/songs and returns the updated playlist.
func (a *APIClient) AddPlaylistSong(ctx context.Context, playlistID, songID string) (*models.Playlist, error) {
	var playlist models.Playlist
	path := "/api/playlists/" + url.PathEscape(playlistID) + "/songs"
	if err := a.doRequest(ctx, http.MethodPost, path, AddSongRequest{SongID: songID}, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// RemovePlaylistSong calls DELETE /api/playlists/{id}/songs/{songId} and returns the updated playlist.
func (a *APIClient) RemovePlaylistSong(ctx context.Context, playlistID, songID string) (*models.Playlist, error) {
	var playlist models.Playlist
	path := "/api/playlists/" + url.PathEscape(playlistID) + "/songs/" + url.PathEscape(songID)
	if err := a.doRequest(ctx, http.MethodDelete, path, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// ListGames calls GET /api/games.
func (a *APIClient) ListGames(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := a.doRequest(ctx, http.MethodGet, "/api/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// CreateGame calls POST /api/games.
func (a *APIClient) CreateGame(ctx context.Context, body CreateGameRequest) (*models.Game, error) {
	var game models.Game
	if err := a.doRequest(ctx, http.MethodPost, "/api/games", body, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// Health calls GET /health.
func (a *APIClient) Health(ctx context.Context) error {
	return a.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}
