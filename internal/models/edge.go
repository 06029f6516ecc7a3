package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Side represents the recommended side of a market
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideNone  Side = ""
)

// BreakdownVersion tags the adjustment breakdown schema
const BreakdownVersion = 1

// Adjustment is one named contribution to the model line
type Adjustment struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

// AdjustmentBreakdown itemizes how the model line was built from a naive
// baseline. The contributions must sum to model_line - baseline.
type AdjustmentBreakdown struct {
	Version     int          `json:"version"`
	Baseline    float64      `json:"baseline"`
	Adjustments []Adjustment `json:"adjustments"`
}

// Sum returns the total of all contributions
func (b AdjustmentBreakdown) Sum() float64 {
	total := 0.0
	for _, adj := range b.Adjustments {
		total += adj.Points
	}
	return total
}

// Checks the sum-invariant against a computed model line within tolerance
func (b AdjustmentBreakdown) Reconciles(modelLine float64) bool {
	return math.Abs(b.Baseline+b.Sum()-modelLine) < 1e-9
}

// Edge represents the computed divergence between model and market for one
// (game, market, provider). Recomputed and replaced wholesale whenever
// inputs change, never partially updated.
//
// Sign convention: positive EdgePoints always favors the recommended side.
// For spreads, EdgePoints = marketLineHome - modelLineHome (positive = bet
// home); for totals, EdgePoints = modelTotal - marketTotal (positive = bet
// over).
type Edge struct {
	GameID          uuid.UUID           `db:"game_id" json:"game_id" validate:"required,uuid"`
	Market          Market              `db:"market" json:"market" validate:"required,oneof=spread total"`
	Provider        string              `db:"provider" json:"provider" validate:"required"`
	ModelLine       float64             `db:"model_line" json:"model_line"`
	MarketLine      float64             `db:"market_line" json:"market_line"`
	RawEdgePoints   float64             `db:"raw_edge_points" json:"raw_edge_points"`
	EdgePoints      float64             `db:"edge_points" json:"edge_points"`
	RecommendedSide Side                `db:"recommended_side" json:"recommended_side"`
	SpreadSize      float64             `db:"spread_size" json:"spread_size"`
	Qualifies       bool                `db:"qualifies" json:"qualifies"`
	Reason          string              `db:"reason" json:"reason"`
	Breakdown       AdjustmentBreakdown `db:"breakdown" json:"breakdown"`
	AsOf            time.Time           `db:"as_of" json:"as_of"`
}

// EdgeMagnitude returns the absolute capped edge
func (e *Edge) EdgeMagnitude() float64 {
	return math.Abs(e.EdgePoints)
}

// SideLine returns the market line expressed in the recommended side's
// perspective: the points the bettor receives. For home (and over/under)
// this is the quoted line; for away it is the mirrored spread.
func (e *Edge) SideLine() float64 {
	if e.Market == MarketSpread && e.RecommendedSide == SideAway {
		return -e.MarketLine
	}
	return e.MarketLine
}
