// package server contains the middleware & handlers for the tuneup REST API
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/tuneup/internal/playback"
	"github.com/desertthunder/tuneup/internal/repositories"
	"github.com/desertthunder/tuneup/internal/shared"
)

const maxBodyBytes = 1 << 20

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, metrics, etc.
type Middleware func(http.Handler) http.Handler

// Route is one method + path pattern served by a [Handler].
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Handler groups the routes of one resource.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers every route of a Handler
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Deps are the stores and registries the API serves.
type Deps struct {
	DB       *sql.DB
	Sessions *playback.Sessions
	Gatherer prometheus.Gatherer // nil disables /metrics
	Logger   *log.Logger
}

// Server is the tuneup HTTP API.
type Server struct {
	router  *BasicRouter
	handler http.Handler
	logger  *log.Logger
}

// New wires repositories and handlers onto a [BasicRouter].
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = logger.With("component", "server")

	sessions := deps.Sessions
	if sessions == nil {
		sessions = playback.NewSessions(nil, logger)
	}

	songs := repositories.NewSongRepository(deps.DB)
	albums := repositories.NewAlbumRepository(deps.DB)
	playlists := repositories.NewPlaylistRepository(deps.DB)
	games := repositories.NewGameRepository(deps.DB)

	router := NewBasicRouter()
	router.Use(LoggingMiddleware(logger), MetricsMiddleware())

	s := &Server{router: router, handler: CORS(router), logger: logger}

	router.HandleFunc(http.MethodGet, "/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "tuneup", "sessions": len(sessions.IDs())})
	})
	if deps.Gatherer != nil {
		router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	router.Handler(&PlaylistHandler{playlists: playlists, logger: logger})
	router.Handler(&GameHandler{games: games, logger: logger})
	router.Handler(&CatalogHandler{songs: songs, albums: albums, logger: logger})
	router.Handler(&PlayerHandler{
		sessions:  sessions,
		songs:     songs,
		albums:    albums,
		playlists: playlists,
		logger:    logger,
	})

	return s
}

// ServeHTTP implements [http.Handler]. Every response carries permissive CORS headers.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and writes {"error": "..."}.
//
// Server-side failures are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps sentinel errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrPlaylistNotFound),
		errors.Is(err, shared.ErrTrackNotFound),
		errors.Is(err, shared.ErrAlbumNotFound),
		errors.Is(err, shared.ErrGameNotFound),
		errors.Is(err, shared.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
