package repository

import (
	"fmt"

	"github.com/yourusername/line-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game     GameRepository
	Snapshot LineSnapshotRepository
	Rating   TeamRatingRepository
	Edge     EdgeRepository
	Bet      BetRepository
	CLV      CLVRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:     NewPostgresGameRepository(db),
		Snapshot: NewPostgresLineSnapshotRepository(db),
		Rating:   NewPostgresTeamRatingRepository(db),
		Edge:     NewPostgresEdgeRepository(db),
		Bet:      NewPostgresBetRepository(db),
		CLV:      NewPostgresCLVRepository(db),
	}, nil
}
