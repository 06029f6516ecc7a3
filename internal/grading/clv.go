package grading

import (
	"time"

	"github.com/yourusername/line-edge/internal/models"
)

// ComputeCLV returns side-normalized closing-line value in points: positive
// always means the bettor got a better number than the closing price, for
// either side of either market.
//
// Returns nil when the close-label snapshot is absent. "Unavailable" and
// zero are distinct: averaging a missing CLV as zero would silently bias
// aggregates, so callers must skip nil values instead.
func ComputeCLV(bet *models.BetRecord, close *models.LineSnapshot) *float64 {
	if bet == nil || close == nil {
		return nil
	}

	var clv float64
	switch bet.Side {
	case models.SideOver:
		// Over bettors want the lowest total; the line moving up is value.
		clv = close.Line - bet.Line
	case models.SideUnder:
		clv = bet.Line - close.Line
	case models.SideAway:
		// Bet lines are stored side-perspective; mirror the quoted close.
		clv = bet.Line - (-close.Line)
	default:
		clv = bet.Line - close.Line
	}

	return &clv
}

// BuildCLVRecord materializes the CLV computation for persistence. Pure:
// identical inputs produce an identical record apart from the computed-at
// stamp supplied by the caller.
func BuildCLVRecord(bet *models.BetRecord, close *models.LineSnapshot, computedAt time.Time) *models.CLVRecord {
	clv := ComputeCLV(bet, close)
	if clv == nil {
		return nil
	}

	closingLine := close.Line
	if bet.Side == models.SideAway {
		closingLine = -close.Line
	}

	return &models.CLVRecord{
		BetID:       bet.ID,
		GameID:      bet.GameID,
		BetLine:     bet.Line,
		ClosingLine: closingLine,
		CLVPoints:   *clv,
		ComputedAt:  computedAt,
	}
}
