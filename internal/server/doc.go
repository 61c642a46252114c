// Package server provides the tuneup REST API: routing, middleware and JSON handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method and wildcard patterns
// ("GET /api/playlists/{id}"). Resource handlers implement [Handler] and list their [Route] values.
//
// # Endpoints
//
//   - /health, /metrics
//   - /api/playlists, /api/playlists/{id}, /api/playlists/{id}/songs[/{songId}]
//   - /api/games, /api/games/{id}
//   - /api/songs, /api/songs/{id}, /api/albums, /api/albums/{id}
//   - /api/player/{session}, /api/player/{session}/{action}
//
// # Errors
//
// Every non-2xx response has the body {"error": "..."}. Validation failures map to 400,
// duplicates to 409, missing records to 404 and anything else to 500 (logged, message withheld).
package server
