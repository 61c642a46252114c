// YouTube Data API v3 track resolution
//
// Builds "{title} {artist} official audio", asks the search endpoint for one video and
// takes the first result's id. Nothing here returns an error to the caller.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/desertthunder/tuneup/internal/shared"
)

const defaultYouTubeBaseURL string = "https://www.googleapis.com/youtube/v3"

// ResolutionStatus is the outcome of a single [Resolver.Resolve] call.
type ResolutionStatus int

const (
	StatusFound    ResolutionStatus = iota // A video id was returned
	StatusNotFound                         // The search returned no usable item, or the input was blank
	StatusFailed                           // Transport error, non-2xx status or undecodable body
	StatusDisabled                         // No API key configured
)

func (s ResolutionStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Resolution reports what happened when resolving one song.
//
// Err is only set for [StatusFailed] and is informational.
type Resolution struct {
	Status  ResolutionStatus
	VideoID string
	Query   string
	Err     error
}

// Found reports whether a video id was resolved.
func (r Resolution) Found() bool {
	return r.Status == StatusFound && r.VideoID != ""
}

// YouTubeSearchResponse is the subset of the search.list response the resolver reads.
type YouTubeSearchResponse struct {
	Items []YouTubeSearchResult `json:"items"`
}

// YouTubeSearchResult is one search.list item.
type YouTubeSearchResult struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
}

// Resolver implements [TrackResolver] against the YouTube Data API.
type Resolver struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewResolver creates a resolver from cfg. An empty API key disables resolution, which is logged once here.
func NewResolver(cfg shared.YouTubeConfig, client *http.Client, logger *log.Logger) *Resolver {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := &Resolver{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger.With("component", "resolver"),
	}

	if !r.Enabled() {
		r.logger.Warn("track resolution disabled", "reason", "missing api key", "env", shared.EnvYouTubeAPIKey)
	}
	return r
}

// Enabled reports whether an API key is configured.
func (r *Resolver) Enabled() bool {
	return r.apiKey != ""
}

// BuildQuery returns the search query used for a song.
func BuildQuery(title, artist string) string {
	return fmt.Sprintf("%s %s official audio", strings.TrimSpace(title), strings.TrimSpace(artist))
}

// Resolve looks up the best matching video for a song with a single search request.
func (r *Resolver) Resolve(ctx context.Context, title, artist string) Resolution {
	res := r.resolve(ctx, title, artist)
	resolutions.WithLabelValues(res.Status.String()).Inc()
	return res
}

// Lookup is [Resolver.Resolve] collapsed to a video id and a found flag.
func (r *Resolver) Lookup(ctx context.Context, title, artist string) (string, bool) {
	res := r.Resolve(ctx, title, artist)
	return res.VideoID, res.Found()
}

func (r *Resolver) resolve(ctx context.Context, title, artist string) Resolution {
	if !r.Enabled() {
		return Resolution{Status: StatusDisabled}
	}

	if strings.TrimSpace(title) == "" || strings.TrimSpace(artist) == "" {
		r.logger.Debug("skipping resolution", "title", title, "artist", artist, "reason", "blank input")
		return Resolution{Status: StatusNotFound}
	}

	query := BuildQuery(title, artist)
	logger := r.logger.With("query", query)

	timer := prometheus.NewTimer(resolveDuration)
	videoID, err := r.search(ctx, query)
	timer.ObserveDuration()

	switch {
	case err != nil:
		logger.Error("video search failed", "error", err)
		return Resolution{Status: StatusFailed, Query: query, Err: err}
	case videoID == "":
		logger.Info("no video found")
		return Resolution{Status: StatusNotFound, Query: query}
	default:
		logger.Info("resolved track", "video_id", videoID)
		return Resolution{Status: StatusFound, VideoID: videoID, Query: query}
	}
}

// search issues GET {base}/search and returns the first item's video id, or "" when there are no items.
func (r *Resolver) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", r.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("%w: youtube status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: youtube status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var result YouTubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].ID.VideoID, nil
}
