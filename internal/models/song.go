package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tuneup/internal/shared"
)

// Song is a single track in the catalog.
//
// ExternalID is the identifier the music-data service uses; VideoID is set once the track
// has been resolved to a playable video.
type Song struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"-"`
	ExternalID  string     `json:"externalId,omitempty"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	AlbumID     string     `json:"albumId,omitempty"`
	TrackNumber int        `json:"trackNumber,omitempty"`
	Duration    int        `json:"duration"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	VideoID     string     `json:"videoId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}

// NewSong creates a [Song] with creation timestamps set.
func NewSong(title, artist string, duration int) *Song {
	now := time.Now()
	return &Song{Title: title, Artist: artist, Duration: duration, CreatedAt: now, UpdatedAt: now}
}

func (s *Song) GetID() string { return s.ID }

// Playable reports whether the song has been resolved to a video.
func (s *Song) Playable() bool { return s.VideoID != "" }

func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: song title is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(s.Artist) == "" {
		return fmt.Errorf("%w: song artist is required", shared.ErrInvalidInput)
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: song duration must not be negative", shared.ErrInvalidInput)
	}
	return nil
}
