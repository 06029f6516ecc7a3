package models

import (
	"time"

	"github.com/google/uuid"
)

// CLVRecord represents closing-line value for one graded bet
//
// Derived from the graded bet and the game's close-label snapshot;
// recomputation over the same inputs yields the same record, so re-runs are
// safe. CLVPoints is side-normalized: positive always means the bettor got
// a better number than the closing price.
type CLVRecord struct {
	BetID       uuid.UUID `db:"bet_id" json:"bet_id" validate:"required,uuid"`
	GameID      uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid"`
	BetLine     float64   `db:"bet_line" json:"bet_line"`
	ClosingLine float64   `db:"closing_line" json:"closing_line"`
	CLVPoints   float64   `db:"clv_points" json:"clv_points"`
	ComputedAt  time.Time `db:"computed_at" json:"computed_at"`
}
