package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle status of a game
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
)

// Game represents a scheduled or completed matchup
type Game struct {
	ID         uuid.UUID  `db:"id" json:"id" validate:"required,uuid"`
	HomeTeamID uuid.UUID  `db:"home_team_id" json:"home_team_id" validate:"required,uuid"`
	AwayTeamID uuid.UUID  `db:"away_team_id" json:"away_team_id" validate:"required,uuid"`
	Season     int        `db:"season" json:"season" validate:"required,gt=1900"`
	Kickoff    time.Time  `db:"kickoff" json:"kickoff" validate:"required"`
	Status     GameStatus `db:"status" json:"status" validate:"required,oneof=scheduled in_progress final"`
	HomeScore  *int       `db:"home_score" json:"home_score"`
	AwayScore  *int       `db:"away_score" json:"away_score"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// IsFinal checks whether the game has concluded with scores recorded
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal && g.HomeScore != nil && g.AwayScore != nil
}

// IsUpcoming checks whether the game hasn't started yet
func (g *Game) IsUpcoming() bool {
	return g.Status == GameStatusScheduled
}

// Margin returns homeScore - awayScore for a final game
func (g *Game) Margin() int {
	if !g.IsFinal() {
		return 0
	}
	return *g.HomeScore - *g.AwayScore
}

// CombinedScore returns homeScore + awayScore for a final game
func (g *Game) CombinedScore() int {
	if !g.IsFinal() {
		return 0
	}
	return *g.HomeScore + *g.AwayScore
}

// TimeToKickoff returns the duration until kickoff
func (g *Game) TimeToKickoff() time.Duration {
	return time.Until(g.Kickoff)
}
