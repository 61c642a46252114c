package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const songColumns = `id, sequence, external_id, title, artist, album_id, track_number, duration, cover_url, video_id, created_at, updated_at, deleted_at`

var _ models.Repository[*models.Song] = (*SongRepository)(nil)

// SongRepository implements models.Repository[*models.Song] for the song catalog.
//
// Songs are created by ingestion; the only field updated afterwards in normal operation is video_id.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now()
	if song.CreatedAt.IsZero() {
		song.CreatedAt = now
	}
	song.UpdatedAt = now

	query := `
		INSERT INTO songs (id, sequence, external_id, title, artist, album_id, track_number, duration, cover_url, video_id, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		song.ExternalID,
		song.Title,
		song.Artist,
		song.AlbumID,
		song.TrackNumber,
		song.Duration,
		song.CoverURL,
		song.VideoID,
		song.CreatedAt,
		song.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: song with external id %s", shared.ErrDuplicate, song.ExternalID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	song.ID = id
	song.Sequence = sequence
	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`

	song, err := scanSong(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return song, err
}

// GetByExternalID retrieves a song by the identifier the music-data service assigned it
func (r *SongRepository) GetByExternalID(externalID string) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE external_id = ? AND deleted_at IS NULL`

	song, err := scanSong(r.db.QueryRow(query, externalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: external id %s", shared.ErrTrackNotFound, externalID)
	}
	return song, err
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.UpdatedAt = now

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album_id = NULLIF(?, ''), track_number = ?, duration = ?, cover_url = ?, video_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		song.Title,
		song.Artist,
		song.AlbumID,
		song.TrackNumber,
		song.Duration,
		song.CoverURL,
		song.VideoID,
		now,
		song.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return checkAffected(result, shared.ErrTrackNotFound, song.ID)
}

// SetVideoID records the resolved video identifier for a song
func (r *SongRepository) SetVideoID(id, videoID string) error {
	result, err := r.db.Exec(
		`UPDATE songs SET video_id = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		videoID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set video id: %w", err)
	}

	return checkAffected(result, shared.ErrTrackNotFound, id)
}

// Upsert creates the song, or refreshes the stored copy when a song with the same external id exists.
//
// A stored video id is kept when the incoming song has none.
func (r *SongRepository) Upsert(song *models.Song) error {
	if song.ExternalID == "" {
		return r.Create(song)
	}

	existing, err := r.GetByExternalID(song.ExternalID)
	if errors.Is(err, shared.ErrTrackNotFound) {
		return r.Create(song)
	}
	if err != nil {
		return err
	}

	song.ID = existing.ID
	song.Sequence = existing.Sequence
	song.CreatedAt = existing.CreatedAt
	if song.VideoID == "" {
		song.VideoID = existing.VideoID
	}
	return r.Update(song)
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return checkAffected(result, shared.ErrTrackNotFound, id)
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs.
//
// Supported criteria: "album_id" (string), "artist" (string), "unresolved" (bool) and "limit" (int).
// Album listings are ordered by track number; everything else by sequence.
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}
	order := " ORDER BY sequence ASC"

	if albumID, ok := criteria["album_id"].(string); ok && albumID != "" {
		query += " AND album_id = ?"
		args = append(args, albumID)
		order = " ORDER BY track_number ASC, sequence ASC"
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}

	if unresolved, ok := criteria["unresolved"].(bool); ok && unresolved {
		query += " AND video_id = ''"
	}

	query += order

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(query, args...)
}

// ListByIDs returns the live songs among ids in the order the ids were given. Unknown ids are skipped.
func (r *SongRepository) ListByIDs(ids []string) ([]*models.Song, error) {
	if len(ids) == 0 {
		return []*models.Song{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL AND id IN (` + placeholders(len(ids)) + `)`
	found, err := r.query(query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Song, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}

	songs := make([]*models.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			songs = append(songs, s)
		}
	}
	return songs, nil
}

func (r *SongRepository) query(query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scanSong scans a single row into a [models.Song]. [sql.ErrNoRows] is returned unwrapped.
func scanSong(row scanner) (*models.Song, error) {
	var (
		song       models.Song
		externalID sql.NullString
		albumID    sql.NullString
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&song.ID,
		&song.Sequence,
		&externalID,
		&song.Title,
		&song.Artist,
		&albumID,
		&song.TrackNumber,
		&song.Duration,
		&song.CoverURL,
		&song.VideoID,
		&song.CreatedAt,
		&song.UpdatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song.ExternalID = externalID.String
	song.AlbumID = albumID.String
	if deletedAt.Valid {
		song.DeletedAt = &deletedAt.Time
	}

	return &song, nil
}
