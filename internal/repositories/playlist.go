package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const playlistColumns = `id, sequence, name, description, owner, created_at, updated_at, deleted_at`

var _ models.Repository[*models.Playlist] = (*PlaylistRepository)(nil)

// PlaylistRepository implements models.Repository[*models.Playlist].
//
// Song membership is stored in playlist_songs with an explicit position so that insertion order
// survives round trips. A song appears at most once per playlist.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist and its songs with generated ID and sequence.
//
// Every song id must refer to an existing song.
func (r *PlaylistRepository) Create(playlist *models.Playlist) error {
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.checkSongs(playlist.SongIDs); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = now
	}
	playlist.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, sequence, name, description, owner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, id, sequence, playlist.Name, playlist.Description, playlist.Owner, playlist.CreatedAt, playlist.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	if err := insertPlaylistSongs(tx, id, playlist.SongIDs, 0, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}

	playlist.ID = id
	playlist.Sequence = sequence
	return nil
}

// Get retrieves a playlist with its ordered song ids, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`

	playlist, err := scanPlaylist(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if playlist.SongIDs, err = r.songIDs(id); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Update modifies a playlist's metadata and replaces its song list
func (r *PlaylistRepository) Update(playlist *models.Playlist) error {
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if err := r.checkSongs(playlist.SongIDs); err != nil {
		return err
	}

	now := time.Now()
	playlist.UpdatedAt = now

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET name = ?, description = ?, owner = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := tx.Exec(query, playlist.Name, playlist.Description, playlist.Owner, now, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := checkAffected(result, shared.ErrPlaylistNotFound, playlist.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ?`, playlist.ID); err != nil {
		return fmt.Errorf("failed to clear playlist songs: %w", err)
	}
	if err := insertPlaylistSongs(tx, playlist.ID, playlist.SongIDs, 0, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	return checkAffected(result, shared.ErrPlaylistNotFound, id)
}

// List retrieves all playlists matching the given criteria with their song ids, excluding soft-deleted playlists.
//
// Supported criteria: "owner" (string).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if owner, ok := criteria["owner"].(string); ok && owner != "" {
		query += " AND owner = ?"
		args = append(args, owner)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	playlists := []*models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, p := range playlists {
		if p.SongIDs, err = r.songIDs(p.ID); err != nil {
			return nil, err
		}
	}

	return playlists, nil
}

// AddSong appends a song to the end of a playlist.
//
// Returns [shared.ErrDuplicate] when the song is already present.
func (r *PlaylistRepository) AddSong(playlistID, songID string) error {
	if _, err := r.Get(playlistID); err != nil {
		return err
	}
	if err := r.checkSongs([]string{songID}); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM playlist_songs WHERE playlist_id = ?`, playlistID).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute position: %w", err)
	}

	now := time.Now()
	if err := insertPlaylistSongs(tx, playlistID, []string{songID}, next, now); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, now, playlistID); err != nil {
		return fmt.Errorf("failed to touch playlist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist song: %w", err)
	}
	return nil
}

// RemoveSong removes a song from a playlist. Remaining songs keep their relative order.
func (r *PlaylistRepository) RemoveSong(playlistID, songID string) error {
	if _, err := r.Get(playlistID); err != nil {
		return err
	}

	result, err := r.db.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("failed to remove playlist song: %w", err)
	}
	if err := checkAffected(result, shared.ErrTrackNotFound, songID); err != nil {
		return err
	}

	if _, err := r.db.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now(), playlistID); err != nil {
		return fmt.Errorf("failed to touch playlist: %w", err)
	}
	return nil
}

// Songs returns the playlist's live songs in playlist order
func (r *PlaylistRepository) Songs(playlistID string) ([]*models.Song, error) {
	playlist, err := r.Get(playlistID)
	if err != nil {
		return nil, err
	}
	return NewSongRepository(r.db).ListByIDs(playlist.SongIDs)
}

func (r *PlaylistRepository) songIDs(playlistID string) ([]string, error) {
	rows, err := r.db.Query(`SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PlaylistRepository) checkSongs(ids []string) error {
	for _, id := range ids {
		ok, err := songExists(r.db, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
		}
	}
	return nil
}

func insertPlaylistSongs(tx *sql.Tx, playlistID string, songIDs []string, start int, addedAt time.Time) error {
	for i, songID := range songIDs {
		_, err := tx.Exec(
			`INSERT INTO playlist_songs (playlist_id, song_id, position, added_at) VALUES (?, ?, ?, ?)`,
			playlistID, songID, start+i, addedAt,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: song %s is already in the playlist", shared.ErrDuplicate, songID)
		}
		if err != nil {
			return fmt.Errorf("failed to insert playlist song: %w", err)
		}
	}
	return nil
}

func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		playlist  models.Playlist
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&playlist.ID,
		&playlist.Sequence,
		&playlist.Name,
		&playlist.Description,
		&playlist.Owner,
		&playlist.CreatedAt,
		&playlist.UpdatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist.SongIDs = []string{}
	if deletedAt.Valid {
		playlist.DeletedAt = &deletedAt.Time
	}
	return &playlist, nil
}
