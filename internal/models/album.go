package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tuneup/internal/shared"
)

// Album groups songs by AlbumID. Tracks is only populated by lookups that join songs.
type Album struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"-"`
	ExternalID  string     `json:"externalId,omitempty"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	ReleaseYear int        `json:"releaseYear,omitempty"`
	Tracks      []Song     `json:"tracks,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}

// NewAlbum creates an [Album] with creation timestamps set.
func NewAlbum(title, artist string) *Album {
	now := time.Now()
	return &Album{Title: title, Artist: artist, CreatedAt: now, UpdatedAt: now}
}

func (a *Album) GetID() string { return a.ID }

func (a *Album) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: album title is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(a.Artist) == "" {
		return fmt.Errorf("%w: album artist is required", shared.ErrInvalidInput)
	}
	return nil
}

// Duration sums the duration of every loaded track in seconds.
func (a *Album) Duration() int {
	total := 0
	for _, t := range a.Tracks {
		total += t.Duration
	}
	return total
}
