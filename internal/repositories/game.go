package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tuneup/internal/models"
	"github.com/desertthunder/tuneup/internal/shared"
)

const gameColumns = `id, sequence, name, category, thumbnail_url, created_at, updated_at, deleted_at`

var _ models.Repository[*models.Game] = (*GameRepository)(nil)

// GameRepository implements models.Repository[*models.Game].
type GameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository with the given database connection
func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts a new game into the database with generated ID and sequence
func (r *GameRepository) Create(game *models.Game) error {
	if err := game.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "games")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now()
	if game.CreatedAt.IsZero() {
		game.CreatedAt = now
	}
	game.UpdatedAt = now

	query := `
		INSERT INTO games (id, sequence, name, category, thumbnail_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, id, sequence, game.Name, game.Category, game.ThumbnailURL, game.CreatedAt, game.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	game.ID = id
	game.Sequence = sequence
	return nil
}

// Get retrieves a game by ID, excluding soft-deleted games
func (r *GameRepository) Get(id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ? AND deleted_at IS NULL`

	game, err := scanGame(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrGameNotFound, id)
	}
	return game, err
}

// Update modifies an existing game in the database
func (r *GameRepository) Update(game *models.Game) error {
	if err := game.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	game.UpdatedAt = now

	query := `
		UPDATE games
		SET name = ?, category = ?, thumbnail_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, game.Name, game.Category, game.ThumbnailURL, now, game.ID)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return checkAffected(result, shared.ErrGameNotFound, game.ID)
}

// Delete soft-deletes a game by ID
func (r *GameRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE games SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return checkAffected(result, shared.ErrGameNotFound, id)
}

// List retrieves all games matching the given criteria, excluding soft-deleted games.
//
// Supported criteria: "category" (string).
func (r *GameRepository) List(criteria map[string]any) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE deleted_at IS NULL`
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ? COLLATE NOCASE"
		args = append(args, category)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := []*models.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return games, nil
}

func scanGame(row scanner) (*models.Game, error) {
	var (
		game      models.Game
		deletedAt sql.NullTime
	)

	err := row.Scan(&game.ID, &game.Sequence, &game.Name, &game.Category, &game.ThumbnailURL, &game.CreatedAt, &game.UpdatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	if deletedAt.Valid {
		game.DeletedAt = &deletedAt.Time
	}
	return &game, nil
}
