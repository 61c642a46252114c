package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

var (
	_ list.Item = sourceItem{}
	_ list.Item = songItem{}
)

// sourceItem is an album or playlist a queue can be built from.
type sourceItem struct {
	kind        models.ContextKind
	id          string
	title       string
	description string
}

func albumSource(a *models.Album) sourceItem {
	desc := a.Artist
	if a.ReleaseYear > 0 {
		desc = fmt.Sprintf("%s • %d", desc, a.ReleaseYear)
	}
	return sourceItem{kind: models.ContextAlbum, id: a.ID, title: a.Title, description: "Album • " + desc}
}

func playlistSource(p *models.Playlist) sourceItem {
	desc := fmt.Sprintf("Playlist • %d songs", len(p.SongIDs))
	if p.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, p.Description)
	}
	return sourceItem{kind: models.ContextPlaylist, id: p.ID, title: p.Name, description: desc}
}

func (i sourceItem) FilterValue() string { return i.title }
func (i sourceItem) Title() string       { return i.title }
func (i sourceItem) Description() string { return i.description }

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.song.Artist, shared.FormatDuration(i.song.Duration))
	if !i.song.Playable() {
		desc += " • unresolved"
	}
	return desc
}
