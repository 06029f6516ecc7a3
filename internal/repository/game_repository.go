package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

const gameColumns = `id, home_team_id, away_team_id, season, kickoff, status,
	       home_score, away_score, created_at, updated_at`

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, home_team_id, away_team_id, season, kickoff, status, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.HomeTeamID, game.AwayTeamID, game.Season, game.Kickoff,
		game.Status, game.HomeScore, game.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game := &models.Game{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.HomeTeamID, &game.AwayTeamID, &game.Season, &game.Kickoff,
		&game.Status, &game.HomeScore, &game.AwayScore, &game.CreatedAt, &game.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// ListFinalByRange retrieves all final games with kickoff inside [start, end]
func (r *PostgresGameRepository) ListFinalByRange(ctx context.Context, start, end time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'final' AND kickoff >= $1 AND kickoff <= $2
		ORDER BY kickoff ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query final games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// ListScheduled retrieves scheduled games with kickoff up to the given time
func (r *PostgresGameRepository) ListScheduled(ctx context.Context, until time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'scheduled' AND kickoff <= $1
		ORDER BY kickoff ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled games: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// Update updates an existing game
func (r *PostgresGameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games SET
			status = $2, home_score = $3, away_score = $4, kickoff = $5, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.Status, game.HomeScore, game.AwayScore, game.Kickoff,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.ID, &game.HomeTeamID, &game.AwayTeamID, &game.Season, &game.Kickoff,
			&game.Status, &game.HomeScore, &game.AwayScore, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
