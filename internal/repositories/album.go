package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const albumColumns = `id, sequence, external_id, title, artist, cover_url, release_year, created_at, updated_at, deleted_at`

var _ models.Repository[*models.Album] = (*AlbumRepository)(nil)

// AlbumRepository implements models.Repository[*models.Album].
//
// Album tracks live in the songs table; [AlbumRepository.GetWithTracks] joins them in track order.
type AlbumRepository struct {
	db    *sql.DB
	songs *SongRepository
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db, songs: NewSongRepository(db)}
}

// Create inserts a new album into the database with generated ID and sequence
func (r *AlbumRepository) Create(album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "albums")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now()
	if album.CreatedAt.IsZero() {
		album.CreatedAt = now
	}
	album.UpdatedAt = now

	query := `
		INSERT INTO albums (id, sequence, external_id, title, artist, cover_url, release_year, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		album.ExternalID,
		album.Title,
		album.Artist,
		album.CoverURL,
		album.ReleaseYear,
		album.CreatedAt,
		album.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: album with external id %s", shared.ErrDuplicate, album.ExternalID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert album: %w", err)
	}

	album.ID = id
	album.Sequence = sequence
	return nil
}

// Get retrieves an album by ID without its tracks, excluding soft-deleted albums
func (r *AlbumRepository) Get(id string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE id = ? AND deleted_at IS NULL`

	album, err := scanAlbum(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrAlbumNotFound, id)
	}
	return album, err
}

// GetWithTracks retrieves an album and its songs ordered by track number
func (r *AlbumRepository) GetWithTracks(id string) (*models.Album, error) {
	album, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	songs, err := r.songs.List(map[string]any{"album_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to load album tracks: %w", err)
	}

	album.Tracks = make([]models.Song, 0, len(songs))
	for _, s := range songs {
		album.Tracks = append(album.Tracks, *s)
	}
	return album, nil
}

// GetByExternalID retrieves an album by the identifier the music-data service assigned it
func (r *AlbumRepository) GetByExternalID(externalID string) (*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE external_id = ? AND deleted_at IS NULL`

	album, err := scanAlbum(r.db.QueryRow(query, externalID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: external id %s", shared.ErrAlbumNotFound, externalID)
	}
	return album, err
}

// Update modifies an existing album in the database
func (r *AlbumRepository) Update(album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	album.UpdatedAt = now

	query := `
		UPDATE albums
		SET title = ?, artist = ?, cover_url = ?, release_year = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, album.Title, album.Artist, album.CoverURL, album.ReleaseYear, now, album.ID)
	if err != nil {
		return fmt.Errorf("failed to update album: %w", err)
	}

	return checkAffected(result, shared.ErrAlbumNotFound, album.ID)
}

// Upsert creates the album, or refreshes the stored copy when one with the same external id exists
func (r *AlbumRepository) Upsert(album *models.Album) error {
	if album.ExternalID == "" {
		return r.Create(album)
	}

	existing, err := r.GetByExternalID(album.ExternalID)
	if errors.Is(err, shared.ErrAlbumNotFound) {
		return r.Create(album)
	}
	if err != nil {
		return err
	}

	album.ID = existing.ID
	album.Sequence = existing.Sequence
	album.CreatedAt = existing.CreatedAt
	return r.Update(album)
}

// Delete soft-deletes an album by ID
func (r *AlbumRepository) Delete(id string) error {
	query := `
		UPDATE albums
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete album: %w", err)
	}

	return checkAffected(result, shared.ErrAlbumNotFound, id)
}

// List retrieves all albums matching the given criteria, excluding soft-deleted albums.
//
// Supported criteria: "artist" (string).
func (r *AlbumRepository) List(criteria map[string]any) ([]*models.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums WHERE deleted_at IS NULL`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := []*models.Album{}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// scanAlbum scans a single row into a [models.Album]. [sql.ErrNoRows] is returned unwrapped.
func scanAlbum(row scanner) (*models.Album, error) {
	var (
		album      models.Album
		externalID sql.NullString
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&album.ID,
		&album.Sequence,
		&externalID,
		&album.Title,
		&album.Artist,
		&album.CoverURL,
		&album.ReleaseYear,
		&album.CreatedAt,
		&album.UpdatedAt,
		&deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	album.ExternalID = externalID.String
	if deletedAt.Valid {
		album.DeletedAt = &deletedAt.Time
	}

	return &album, nil
}
