// Package edge compares model projections against market lines and decides
// bet eligibility.
package edge

import (
	"math"
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// Calculator turns a model line and a market snapshot into a signed edge.
//
// Sign convention, applied uniformly across live computation, backtesting
// and grading: for spreads edge = marketLineHome - modelLineHome (positive
// means the market is more favorable to home than the model believes, so
// bet home); for totals edge = modelTotal - marketTotal (positive = bet
// over). Inverting this convention anywhere silently flips win/loss
// attribution, which is why it lives in exactly one place.
type Calculator struct {
	capPoints float64
	qualifier *Qualifier
}

// NewCalculator creates an edge calculator. capPoints bounds the edge used
// for qualification; the raw edge is retained for diagnostics.
func NewCalculator(capPoints float64, qualifier *Qualifier) *Calculator {
	return &Calculator{capPoints: capPoints, qualifier: qualifier}
}

// Compute produces the edge for one (model line, market snapshot) pair.
// The snapshot's market decides which sign convention applies.
func (c *Calculator) Compute(modelLine float64, breakdown models.AdjustmentBreakdown, snapshot *models.LineSnapshot, asOf time.Time) *models.Edge {
	complete := snapshot != nil && isFinite(modelLine) && isFinite(snapshot.Line)

	e := &models.Edge{
		ModelLine: modelLine,
		Breakdown: breakdown,
		AsOf:      asOf,
	}
	if snapshot != nil {
		e.GameID = snapshot.GameID
		e.Market = snapshot.Market
		e.Provider = snapshot.Provider
		e.MarketLine = snapshot.Line
		e.SpreadSize = snapshot.SpreadSize()
	}

	// Without a finite model line and market line there is no edge to rank
	// against the thresholds, so the rule table never sees a phantom zero.
	if !complete {
		e.RecommendedSide = models.SideNone
		e.Reason = ReasonIncompleteData
		return e
	}

	switch snapshot.Market {
	case models.MarketTotal:
		e.RawEdgePoints = modelLine - snapshot.Line
	default:
		e.RawEdgePoints = snapshot.Line - modelLine
	}
	e.EdgePoints = clampEdge(e.RawEdgePoints, c.capPoints)
	e.RecommendedSide = sideFor(e.Market, e.EdgePoints)

	verdict := c.qualifier.Qualify(Input{
		EdgePoints: e.EdgePoints,
		SpreadSize: e.SpreadSize,
		Market:     e.Market,
		Complete:   true,
	})
	e.Qualifies = verdict.Qualifies && e.RecommendedSide != models.SideNone
	e.Reason = verdict.Reason

	return e
}

func sideFor(market models.Market, edgePoints float64) models.Side {
	switch {
	case edgePoints > 0 && market == models.MarketTotal:
		return models.SideOver
	case edgePoints > 0:
		return models.SideHome
	case edgePoints < 0 && market == models.MarketTotal:
		return models.SideUnder
	case edgePoints < 0:
		return models.SideAway
	default:
		return models.SideNone
	}
}

func clampEdge(v, cap float64) float64 {
	if cap <= 0 {
		return v
	}
	if v > cap {
		return cap
	}
	if v < -cap {
		return -cap
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
