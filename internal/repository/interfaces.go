package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/line-edge/internal/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	ListFinalByRange(ctx context.Context, start, end time.Time) ([]*models.Game, error)
	ListScheduled(ctx context.Context, until time.Time) ([]*models.Game, error)
	Update(ctx context.Context, game *models.Game) error
}

// LineSnapshotRepository defines the interface for line snapshot data access
type LineSnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *models.LineSnapshot) error
	Get(ctx context.Context, gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) (*models.LineSnapshot, error)
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]*models.LineSnapshot, error)
}

// TeamRatingRepository defines the interface for team rating data access
type TeamRatingRepository interface {
	Upsert(ctx context.Context, rating *models.TeamRating) error
	Get(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error)
}

// EdgeRepository defines the interface for computed-edge persistence.
// Edges are replaced wholesale per (game, market, provider).
type EdgeRepository interface {
	Upsert(ctx context.Context, edge *models.Edge) error
	GetByGame(ctx context.Context, gameID uuid.UUID) ([]*models.Edge, error)
}

// BetRepository defines the interface for bet record data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.BetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BetRecord, error)
	ListPending(ctx context.Context) ([]*models.BetRecord, error)
	ListGraded(ctx context.Context, start, end time.Time) ([]*models.BetRecord, error)
	// UpdateOutcome writes the graded outcome only if the current outcome is
	// still null. Returns models.ErrAlreadyGraded when another pass won the
	// race, so concurrent grading sweeps cannot double-write.
	UpdateOutcome(ctx context.Context, id uuid.UUID, outcome models.Outcome, clv *float64) error
}

// CLVRepository defines the interface for closing-line-value persistence.
// Upsert is idempotent: recomputation over identical inputs is a no-op.
type CLVRepository interface {
	Upsert(ctx context.Context, record *models.CLVRecord) error
	GetByBetID(ctx context.Context, betID uuid.UUID) (*models.CLVRecord, error)
}
