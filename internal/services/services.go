// package services defines clients for the HTTP APIs tuneup talks to
//
// YouTube Data API (track resolution), the external music-data catalog, and tuneup's own REST API.
package services

import (
	"context"
)

// TrackResolver maps a song's title and artist to a playable video identifier.
type TrackResolver interface {
	// Resolve never returns an error value; failures are reported through [Resolution.Status].
	Resolve(ctx context.Context, title, artist string) Resolution
}

// Catalog is the external music-data service songs and albums are ingested from.
type Catalog interface {
	// Album retrieves an album with its full track listing.
	Album(ctx context.Context, albumID string) (*Album, error)

	// Name returns the name of the catalog provider (e.g., "Spotify")
	Name() string
}

// Album represents an album from the catalog with its tracks in track order
type Album struct {
	ID          string
	Title       string
	Artist      string
	CoverURL    string
	ReleaseYear int
	Tracks      []Track
}

// Track represents a catalog track
type Track struct {
	ID          string
	Title       string
	Artist      string
	TrackNumber int
	Duration    int // Duration in seconds
}
