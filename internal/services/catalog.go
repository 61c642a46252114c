// Spotify Web API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/tuneup/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a simplified track inside an album.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	DurationMS  int             `json:"duration_ms"`
	TrackNumber int             `json:"track_number"`
	DiscNumber  int             `json:"disc_number"`
}

type albumTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
	Next  *string        `json:"next"`
}

// SpotifyAlbum represents a full Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	Tracks      albumTracks     `json:"tracks"`
}

// CatalogService implements [Catalog] for the Spotify Web API.
//
// Uses the client-credentials grant; the [clientcredentials.Config] client fetches and refreshes tokens.
type CatalogService struct {
	baseURL    string
	httpClient *http.Client
}

// NewCatalogService creates a catalog client authenticated with cfg's client credentials.
func NewCatalogService(ctx context.Context, cfg shared.CatalogConfig) (*CatalogService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: catalog client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	return NewCatalogServiceWithClient(cfg.BaseURL, conf.Client(ctx)), nil
}

// NewCatalogServiceWithClient creates a catalog client that sends requests through client as-is.
func NewCatalogServiceWithClient(baseURL string, client *http.Client) *CatalogService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &CatalogService{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: client}
}

func (s *CatalogService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against the catalog API.
func (s *CatalogService) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: catalog status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Album retrieves an album and follows track pagination until every track is loaded.
func (s *CatalogService) Album(ctx context.Context, albumID string) (*Album, error) {
	if strings.TrimSpace(albumID) == "" {
		return nil, fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	var sa SpotifyAlbum
	if err := s.doRequest(ctx, "/albums/"+url.PathEscape(albumID), &sa); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, albumID)
		}
		return nil, err
	}

	tracks := sa.Tracks.Items
	next := sa.Tracks.Next
	for next != nil && *next != "" {
		var page albumTracks
		if err := s.doRequest(ctx, *next, &page); err != nil {
			return nil, fmt.Errorf("failed to load album tracks: %w", err)
		}
		tracks = append(tracks, page.Items...)
		next = page.Next
	}

	return convertAlbum(sa, tracks), nil
}

func convertAlbum(sa SpotifyAlbum, tracks []SpotifyTrack) *Album {
	album := &Album{
		ID:          sa.ID,
		Title:       sa.Name,
		Artist:      firstArtist(sa.Artists),
		ReleaseYear: releaseYear(sa.ReleaseDate),
		Tracks:      make([]Track, 0, len(tracks)),
	}
	if len(sa.Images) > 0 {
		album.CoverURL = sa.Images[0].URL
	}

	for _, t := range tracks {
		artist := firstArtist(t.Artists)
		if artist == "" {
			artist = album.Artist
		}
		album.Tracks = append(album.Tracks, Track{
			ID:          t.ID,
			Title:       t.Name,
			Artist:      artist,
			TrackNumber: t.TrackNumber,
			Duration:    t.DurationMS / 1000,
		})
	}
	return album
}

func firstArtist(artists []SpotifyArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}

// releaseYear reads the year from "YYYY", "YYYY-MM" or "YYYY-MM-DD".
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
