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

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

const betColumns = `id, game_id, market, provider, side, line, edge_points, stake,
	       outcome, clv_points, placed_at, graded_at, created_at, updated_at`

// Create inserts a new bet record
func (r *PostgresBetRepository) Create(ctx context.Context, bet *models.BetRecord) error {
	query := `
		INSERT INTO bet_records (id, game_id, market, provider, side, line, edge_points, stake, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		bet.ID, bet.GameID, bet.Market, bet.Provider, bet.Side,
		bet.Line, bet.EdgePoints, bet.Stake, bet.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet record: %w", err)
	}

	return nil
}

// GetByID retrieves a bet record by ID
func (r *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error) {
	query := `SELECT ` + betColumns + ` FROM bet_records WHERE id = $1`

	bet := &models.BetRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&bet.ID, &bet.GameID, &bet.Market, &bet.Provider, &bet.Side, &bet.Line,
		&bet.EdgePoints, &bet.Stake, &bet.Outcome, &bet.CLVPoints,
		&bet.PlacedAt, &bet.GradedAt, &bet.CreatedAt, &bet.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet record: %w", err)
	}

	return bet, nil
}

// ListPending retrieves all bets that have not been graded yet
func (r *PostgresBetRepository) ListPending(ctx context.Context) ([]*models.BetRecord, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bet_records
		WHERE outcome IS NULL
		ORDER BY placed_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets: %w", err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// ListGraded retrieves graded bets within a grading-time range
func (r *PostgresBetRepository) ListGraded(ctx context.Context, start, end time.Time) ([]*models.BetRecord, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bet_records
		WHERE outcome IS NOT NULL AND graded_at >= $1 AND graded_at <= $2
		ORDER BY graded_at ASC, id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query graded bets: %w", err)
	}
	defer rows.Close()

	return scanBets(rows)
}

// UpdateOutcome writes a graded outcome with compare-and-set semantics: the
// row is only touched while outcome is still null, so two concurrent grading
// passes cannot both win.
func (r *PostgresBetRepository) UpdateOutcome(ctx context.Context, id uuid.UUID, outcome models.Outcome, clv *float64) error {
	query := `
		UPDATE bet_records SET
			outcome = $2, clv_points = $3, graded_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND outcome IS NULL
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, outcome, clv)
	if err != nil {
		return fmt.Errorf("failed to update bet outcome: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		// Either the bet doesn't exist or it was graded by a concurrent pass.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return models.ErrAlreadyGraded
	}

	return nil
}

func scanBets(rows pgx.Rows) ([]*models.BetRecord, error) {
	var bets []*models.BetRecord
	for rows.Next() {
		bet := &models.BetRecord{}
		err := rows.Scan(
			&bet.ID, &bet.GameID, &bet.Market, &bet.Provider, &bet.Side, &bet.Line,
			&bet.EdgePoints, &bet.Stake, &bet.Outcome, &bet.CLVPoints,
			&bet.PlacedAt, &bet.GradedAt, &bet.CreatedAt, &bet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet record: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
