package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/tuneup/internal/shared"
)

// Playlist is a user-curated, ordered list of songs. SongIDs order is insertion order.
type Playlist struct {
	ID          string     `json:"id"`
	Sequence    int        `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       string     `json:"owner,omitempty"`
	SongIDs     []string   `json:"songIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   *time.Time `json:"-"`
}

// NewPlaylist creates a [Playlist] with creation timestamps set and an empty song list.
func NewPlaylist(name, description, owner string) *Playlist {
	now := time.Now()
	return &Playlist{
		Name:        name,
		Description: description,
		Owner:       owner,
		SongIDs:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *Playlist) GetID() string { return p.ID }

// Validate requires a name and rejects blank or repeated song ids.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(p.SongIDs))
	for _, id := range p.SongIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: playlist contains a blank song id", shared.ErrInvalidInput)
		}
		if seen[id] {
			return fmt.Errorf("%w: song %s appears more than once", shared.ErrDuplicate, id)
		}
		seen[id] = true
	}
	return nil
}

// Contains reports whether songID is already part of the playlist.
func (p *Playlist) Contains(songID string) bool {
	return slices.Contains(p.SongIDs, songID)
}
