package edge

import (
	"fmt"
	"math"

	"github.com/yourusername/line-edge/internal/models"
)

// Rejection reasons
const (
	ReasonBelowThreshold = "edge below threshold"
	ReasonOutsideBand    = "spread outside band"
	ReasonIncompleteData = "incomplete data"
)

// QualifierConfig holds the qualification thresholds
type QualifierConfig struct {
	MinEdgeThreshold float64
	SpreadBandMin    float64
	// SpreadBandMax is the blowout cutoff: spreads at or above it are
	// rejected since large favorites have unreliable market efficiency.
	SpreadBandMax float64
}

// DefaultQualifierConfig returns the standard thresholds
func DefaultQualifierConfig() QualifierConfig {
	return QualifierConfig{
		MinEdgeThreshold: 1.0,
		SpreadBandMin:    0.0,
		SpreadBandMax:    21.0,
	}
}

// Input is the evidence the rule table evaluates
type Input struct {
	EdgePoints float64
	SpreadSize float64
	Market     models.Market
	Complete   bool
}

// Verdict is the qualification decision with a human-readable reason
type Verdict struct {
	Qualifies bool   `json:"qualifies"`
	Reason    string `json:"reason"`
}

// Qualifier is a stateless ordered rule table. The same input always yields
// the same verdict, which reproducible backtests depend on.
type Qualifier struct {
	cfg QualifierConfig
}

// NewQualifier creates a qualifier with the given thresholds
func NewQualifier(cfg QualifierConfig) *Qualifier {
	return &Qualifier{cfg: cfg}
}

// Qualify evaluates the rule table in order; the first matching rule wins.
func (q *Qualifier) Qualify(in Input) Verdict {
	magnitude := math.Abs(in.EdgePoints)

	if magnitude < q.cfg.MinEdgeThreshold {
		return Verdict{Qualifies: false, Reason: ReasonBelowThreshold}
	}

	// The spread-size band is a liquidity proxy for point-spread markets;
	// totals carry the combined score as their line and are not banded.
	if in.Market == models.MarketSpread &&
		(in.SpreadSize < q.cfg.SpreadBandMin || in.SpreadSize >= q.cfg.SpreadBandMax) {
		return Verdict{Qualifies: false, Reason: ReasonOutsideBand}
	}

	if !in.Complete {
		return Verdict{Qualifies: false, Reason: ReasonIncompleteData}
	}

	return Verdict{
		Qualifies: true,
		Reason:    fmt.Sprintf("edge %.1f exceeds threshold %.1f", magnitude, q.cfg.MinEdgeThreshold),
	}
}
