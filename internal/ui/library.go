package ui

import (
	"database/sql"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/repositories"
)

// Library is the catalog the player browses.
type Library interface {
	Albums() ([]*models.Album, error)
	Album(id string) (*models.Album, error) // with tracks
	Playlists() ([]*models.Playlist, error)
	Playlist(id string) (*models.Playlist, []*models.Song, error)
}

// RepoLibrary reads the library from the sqlite repositories.
type RepoLibrary struct {
	albums    *repositories.AlbumRepository
	playlists *repositories.PlaylistRepository
}

// NewRepoLibrary creates a [RepoLibrary] over db.
func NewRepoLibrary(db *sql.DB) *RepoLibrary {
	return &RepoLibrary{
		albums:    repositories.NewAlbumRepository(db),
		playlists: repositories.NewPlaylistRepository(db),
	}
}

func (l *RepoLibrary) Albums() ([]*models.Album, error) {
	return l.albums.List(nil)
}

func (l *RepoLibrary) Album(id string) (*models.Album, error) {
	return l.albums.GetWithTracks(id)
}

func (l *RepoLibrary) Playlists() ([]*models.Playlist, error) {
	return l.playlists.List(nil)
}

func (l *RepoLibrary) Playlist(id string) (*models.Playlist, []*models.Song, error) {
	playlist, err := l.playlists.Get(id)
	if err != nil {
		return nil, nil, err
	}
	songs, err := l.playlists.Songs(id)
	if err != nil {
		return nil, nil, err
	}
	return playlist, songs, nil
}
