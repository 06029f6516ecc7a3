package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresLineSnapshotRepository implements LineSnapshotRepository for PostgreSQL
type PostgresLineSnapshotRepository struct {
	db *database.DB
}

// NewPostgresLineSnapshotRepository creates a new line snapshot repository
func NewPostgresLineSnapshotRepository(db *database.DB) LineSnapshotRepository {
	return &PostgresLineSnapshotRepository{db: db}
}

// Upsert inserts or replaces a snapshot keyed on (game, provider, market, label)
func (r *PostgresLineSnapshotRepository) Upsert(ctx context.Context, snapshot *models.LineSnapshot) error {
	query := `
		INSERT INTO line_snapshots (game_id, provider, market, label, line, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, provider, market, label) DO UPDATE SET
			line = EXCLUDED.line,
			captured_at = EXCLUDED.captured_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		snapshot.GameID, snapshot.Provider, snapshot.Market, snapshot.Label,
		snapshot.Line, snapshot.CapturedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert line snapshot: %w", err)
	}

	return nil
}

// Get retrieves the snapshot for one (game, provider, market, label)
func (r *PostgresLineSnapshotRepository) Get(ctx context.Context, gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) (*models.LineSnapshot, error) {
	query := `
		SELECT game_id, provider, market, label, line, captured_at
		FROM line_snapshots
		WHERE game_id = $1 AND provider = $2 AND market = $3 AND label = $4
	`

	snapshot := &models.LineSnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query, gameID, provider, market, label).Scan(
		&snapshot.GameID, &snapshot.Provider, &snapshot.Market, &snapshot.Label,
		&snapshot.Line, &snapshot.CapturedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrMissingLine
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get line snapshot: %w", err)
	}

	return snapshot, nil
}

// ListByGame retrieves all snapshots for a game ordered by capture time
func (r *PostgresLineSnapshotRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]*models.LineSnapshot, error) {
	query := `
		SELECT game_id, provider, market, label, line, captured_at
		FROM line_snapshots
		WHERE game_id = $1
		ORDER BY captured_at ASC, provider ASC, market ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query line snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.LineSnapshot
	for rows.Next() {
		snapshot := &models.LineSnapshot{}
		err := rows.Scan(
			&snapshot.GameID, &snapshot.Provider, &snapshot.Market, &snapshot.Label,
			&snapshot.Line, &snapshot.CapturedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}
