package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamRating represents a team's strength ratings for one season
//
// PowerRating is an Elo-like scalar on the rating scale; OffenseRating and
// DefenseRating are points-per-game estimates (scored and allowed). One row
// exists per (team, season); later-arriving values overwrite via upsert.
type TeamRating struct {
	TeamID        uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid"`
	Season        int       `db:"season" json:"season" validate:"required,gt=1900"`
	PowerRating   float64   `db:"power_rating" json:"power_rating"`
	OffenseRating float64   `db:"offense_rating" json:"offense_rating"`
	DefenseRating float64   `db:"defense_rating" json:"defense_rating"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
