package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome represents the graded result of a bet
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// BetRecord represents one unit bet placed on a qualifying edge
//
// Created at qualification time with a nil outcome; graded exactly once when
// the game reaches final status; never deleted. Line is stored in the bet
// side's perspective (the points the bettor receives), so an away bet at a
// home line of -3 carries Line = +3.
type BetRecord struct {
	ID         uuid.UUID       `db:"id" json:"id" validate:"required,uuid"`
	GameID     uuid.UUID       `db:"game_id" json:"game_id" validate:"required,uuid"`
	Market     Market          `db:"market" json:"market" validate:"required,oneof=spread total"`
	Provider   string          `db:"provider" json:"provider" validate:"required"`
	Side       Side            `db:"side" json:"side" validate:"required,oneof=home away over under"`
	Line       float64         `db:"line" json:"line"`
	EdgePoints float64         `db:"edge_points" json:"edge_points"`
	Stake      decimal.Decimal `db:"stake" json:"stake"`
	Outcome    *Outcome        `db:"outcome" json:"outcome"`
	CLVPoints  *float64        `db:"clv_points" json:"clv_points"`
	PlacedAt   time.Time       `db:"placed_at" json:"placed_at" validate:"required"`
	GradedAt   *time.Time      `db:"graded_at" json:"graded_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// UnitStake is the stake convention for qualification-time bets
var UnitStake = decimal.NewFromInt(1)

// IsGraded checks if the bet has been graded
func (b *BetRecord) IsGraded() bool {
	return b.Outcome != nil
}

// Profit returns the unit profit for the graded outcome at the given
// decimal price (e.g. 1.909 for American -110). Pending bets return zero.
func (b *BetRecord) Profit(decimalPrice float64) decimal.Decimal {
	if b.Outcome == nil {
		return decimal.Zero
	}
	switch *b.Outcome {
	case OutcomeWin:
		return b.Stake.Mul(decimal.NewFromFloat(decimalPrice - 1.0))
	case OutcomeLoss:
		return b.Stake.Neg()
	default:
		return decimal.Zero
	}
}
