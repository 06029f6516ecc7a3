package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresCLVRepository implements CLVRepository for PostgreSQL
type PostgresCLVRepository struct {
	db *database.DB
}

// NewPostgresCLVRepository creates a new CLV repository
func NewPostgresCLVRepository(db *database.DB) CLVRepository {
	return &PostgresCLVRepository{db: db}
}

// Upsert writes a CLV record; recomputation over the same inputs rewrites
// identical values, so re-runs are safe.
func (r *PostgresCLVRepository) Upsert(ctx context.Context, record *models.CLVRecord) error {
	query := `
		INSERT INTO clv_records (bet_id, game_id, bet_line, closing_line, clv_points, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bet_id) DO UPDATE SET
			bet_line = EXCLUDED.bet_line,
			closing_line = EXCLUDED.closing_line,
			clv_points = EXCLUDED.clv_points,
			computed_at = EXCLUDED.computed_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		record.BetID, record.GameID, record.BetLine, record.ClosingLine,
		record.CLVPoints, record.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert CLV record: %w", err)
	}

	return nil
}

// GetByBetID retrieves the CLV record for one bet
func (r *PostgresCLVRepository) GetByBetID(ctx context.Context, betID uuid.UUID) (*models.CLVRecord, error) {
	query := `
		SELECT bet_id, game_id, bet_line, closing_line, clv_points, computed_at
		FROM clv_records
		WHERE bet_id = $1
	`

	record := &models.CLVRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, betID).Scan(
		&record.BetID, &record.GameID, &record.BetLine, &record.ClosingLine,
		&record.CLVPoints, &record.ComputedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get CLV record: %w", err)
	}

	return record, nil
}
