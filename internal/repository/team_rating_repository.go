package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresTeamRatingRepository implements TeamRatingRepository for PostgreSQL
type PostgresTeamRatingRepository struct {
	db *database.DB
}

// NewPostgresTeamRatingRepository creates a new team rating repository
func NewPostgresTeamRatingRepository(db *database.DB) TeamRatingRepository {
	return &PostgresTeamRatingRepository{db: db}
}

// Upsert inserts or overwrites a rating keyed on (team, season)
func (r *PostgresTeamRatingRepository) Upsert(ctx context.Context, rating *models.TeamRating) error {
	query := `
		INSERT INTO team_ratings (team_id, season, power_rating, offense_rating, defense_rating, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (team_id, season) DO UPDATE SET
			power_rating = EXCLUDED.power_rating,
			offense_rating = EXCLUDED.offense_rating,
			defense_rating = EXCLUDED.defense_rating,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		rating.TeamID, rating.Season, rating.PowerRating,
		rating.OffenseRating, rating.DefenseRating,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team rating: %w", err)
	}

	return nil
}

// Get retrieves the rating for one (team, season)
func (r *PostgresTeamRatingRepository) Get(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	query := `
		SELECT team_id, season, power_rating, offense_rating, defense_rating, updated_at
		FROM team_ratings
		WHERE team_id = $1 AND season = $2
	`

	rating := &models.TeamRating{}
	err := r.db.GetPool().QueryRow(ctx, query, teamID, season).Scan(
		&rating.TeamID, &rating.Season, &rating.PowerRating,
		&rating.OffenseRating, &rating.DefenseRating, &rating.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team rating: %w", err)
	}

	return rating, nil
}
