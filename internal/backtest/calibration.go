package backtest

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/yourusername/line-edge/internal/models"
)

// Pick is one qualifying bet the replay produced, graded against the real
// final score.
type Pick struct {
	GameID     uuid.UUID      `json:"game_id"`
	Kickoff    string         `json:"kickoff"`
	Market     models.Market  `json:"market"`
	Side       models.Side    `json:"side"`
	Line       float64        `json:"line"`
	ModelLine  float64        `json:"model_line"`
	MarketLine float64        `json:"market_line"`
	EdgePoints float64        `json:"edge_points"`
	Outcome    models.Outcome `json:"outcome"`
	Profit     float64        `json:"profit"`
	CLVPoints  *float64       `json:"clv_points,omitempty"`
}

// BucketStats aggregates graded picks
type BucketStats struct {
	Count   int     `json:"count"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pushes  int     `json:"pushes"`
	WinRate float64 `json:"win_rate"`
	ROI     float64 `json:"roi"`
}

// CalibrationBucket is one edge-magnitude range with its statistics
type CalibrationBucket struct {
	// Label like "[1.0,3.0)"; the last bucket is open-ended, e.g. "[7.0,+)".
	Label     string      `json:"label"`
	LowerEdge float64     `json:"lower_edge"`
	UpperEdge float64     `json:"upper_edge"`
	Stats     BucketStats `json:"stats"`
}

// Calibrate groups picks into edge-magnitude buckets of the given width
// starting at the threshold, plus overall statistics. Deterministic for a
// given pick list.
func Calibrate(picks []Pick, threshold, width float64) ([]CalibrationBucket, BucketStats) {
	overall := BucketStats{}
	maxMagnitude := threshold
	for _, pick := range picks {
		accumulate(&overall, pick)
		if m := math.Abs(pick.EdgePoints); m > maxMagnitude {
			maxMagnitude = m
		}
	}
	finalize(&overall)

	bucketCount := int(math.Ceil((maxMagnitude-threshold)/width)) + 1
	buckets := make([]CalibrationBucket, bucketCount)
	for i := range buckets {
		lower := threshold + float64(i)*width
		upper := lower + width
		label := fmt.Sprintf("[%.1f,%.1f)", lower, upper)
		if i == bucketCount-1 {
			label = fmt.Sprintf("[%.1f,+)", lower)
			upper = math.Inf(1)
		}
		buckets[i] = CalibrationBucket{Label: label, LowerEdge: lower, UpperEdge: upper}
	}

	for _, pick := range picks {
		idx := bucketIndex(math.Abs(pick.EdgePoints), threshold, width, bucketCount)
		accumulate(&buckets[idx].Stats, pick)
	}
	for i := range buckets {
		finalize(&buckets[i].Stats)
	}

	return buckets, overall
}

func bucketIndex(magnitude, threshold, width float64, bucketCount int) int {
	idx := int((magnitude - threshold) / width)
	if idx < 0 {
		idx = 0
	}
	if idx >= bucketCount {
		idx = bucketCount - 1
	}
	return idx
}

func accumulate(stats *BucketStats, pick Pick) {
	stats.Count++
	switch pick.Outcome {
	case models.OutcomeWin:
		stats.Wins++
	case models.OutcomeLoss:
		stats.Losses++
	case models.OutcomePush:
		stats.Pushes++
	}
	stats.ROI += pick.Profit
}

// finalize converts accumulated profit into return-per-unit-staked and
// computes the push-excluded win rate.
func finalize(stats *BucketStats) {
	if decided := stats.Wins + stats.Losses; decided > 0 {
		stats.WinRate = float64(stats.Wins) / float64(decided)
	}
	if stats.Count > 0 {
		stats.ROI = stats.ROI / float64(stats.Count)
	}
}

// UnitProfit returns profit in units for one graded outcome at the given
// decimal price: win pays price-1, loss costs the unit stake, push returns it.
func UnitProfit(outcome models.Outcome, decimalPrice float64) float64 {
	switch outcome {
	case models.OutcomeWin:
		return decimalPrice - 1.0
	case models.OutcomeLoss:
		return -1.0
	default:
		return 0.0
	}
}
