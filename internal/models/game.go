package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tuneup/internal/shared"
)

// Game is a catalog record shown on the games page.
type Game struct {
	ID           string     `json:"id"`
	Sequence     int        `json:"-"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// NewGame creates a [Game] with creation timestamps set.
func NewGame(name, category, thumbnailURL string) *Game {
	now := time.Now()
	return &Game{Name: name, Category: category, ThumbnailURL: thumbnailURL, CreatedAt: now, UpdatedAt: now}
}

func (g *Game) GetID() string { return g.ID }

func (g *Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: game name is required", shared.ErrInvalidInput)
	}
	return nil
}
