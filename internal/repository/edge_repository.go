package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/line-edge/internal/database"
	"github.com/yourusername/line-edge/internal/models"
)

// PostgresEdgeRepository implements EdgeRepository for PostgreSQL
type PostgresEdgeRepository struct {
	db *database.DB
}

// NewPostgresEdgeRepository creates a new edge repository
func NewPostgresEdgeRepository(db *database.DB) EdgeRepository {
	return &PostgresEdgeRepository{db: db}
}

// Upsert replaces the edge wholesale for its (game, market, provider) key.
// A partial update is never issued; every column comes from the new record.
func (r *PostgresEdgeRepository) Upsert(ctx context.Context, edge *models.Edge) error {
	breakdown, err := json.Marshal(edge.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal adjustment breakdown: %w", err)
	}

	query := `
		INSERT INTO edges (game_id, market, provider, model_line, market_line,
		                   raw_edge_points, edge_points, recommended_side, spread_size,
		                   qualifies, reason, breakdown, as_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (game_id, market, provider) DO UPDATE SET
			model_line = EXCLUDED.model_line,
			market_line = EXCLUDED.market_line,
			raw_edge_points = EXCLUDED.raw_edge_points,
			edge_points = EXCLUDED.edge_points,
			recommended_side = EXCLUDED.recommended_side,
			spread_size = EXCLUDED.spread_size,
			qualifies = EXCLUDED.qualifies,
			reason = EXCLUDED.reason,
			breakdown = EXCLUDED.breakdown,
			as_of = EXCLUDED.as_of
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		edge.GameID, edge.Market, edge.Provider, edge.ModelLine, edge.MarketLine,
		edge.RawEdgePoints, edge.EdgePoints, edge.RecommendedSide, edge.SpreadSize,
		edge.Qualifies, edge.Reason, breakdown, edge.AsOf,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert edge: %w", err)
	}

	return nil
}

// GetByGame retrieves all computed edges for a game
func (r *PostgresEdgeRepository) GetByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Edge, error) {
	query := `
		SELECT game_id, market, provider, model_line, market_line, raw_edge_points,
		       edge_points, recommended_side, spread_size, qualifies, reason, breakdown, as_of
		FROM edges
		WHERE game_id = $1
		ORDER BY market ASC, provider ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.Edge
	for rows.Next() {
		edge := &models.Edge{}
		var breakdown []byte
		err := rows.Scan(
			&edge.GameID, &edge.Market, &edge.Provider, &edge.ModelLine, &edge.MarketLine,
			&edge.RawEdgePoints, &edge.EdgePoints, &edge.RecommendedSide, &edge.SpreadSize,
			&edge.Qualifies, &edge.Reason, &breakdown, &edge.AsOf,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		if err := json.Unmarshal(breakdown, &edge.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal adjustment breakdown: %w", err)
		}
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}
