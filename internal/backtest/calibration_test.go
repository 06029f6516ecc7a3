package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-edge/internal/models"
)

func pick(edge float64, outcome models.Outcome, profit float64) Pick {
	return Pick{EdgePoints: edge, Outcome: outcome, Profit: profit}
}

func TestCalibrateBucketAssignment(t *testing.T) {
	picks := []Pick{
		pick(2.0, models.OutcomeWin, 0.909),
		pick(-2.5, models.OutcomeLoss, -1.0),
		pick(4.0, models.OutcomeWin, 0.909),
		pick(8.0, models.OutcomeLoss, -1.0),
	}

	buckets, overall := Calibrate(picks, 2.0, 2.0)
	require.Len(t, buckets, 4)

	assert.Equal(t, "[2.0,4.0)", buckets[0].Label)
	assert.Equal(t, "[4.0,6.0)", buckets[1].Label)
	assert.Equal(t, "[6.0,8.0)", buckets[2].Label)
	assert.Equal(t, "[8.0,+)", buckets[3].Label)
	assert.True(t, math.IsInf(buckets[3].UpperEdge, 1))

	// Negative edges bucket by magnitude.
	assert.Equal(t, 2, buckets[0].Stats.Count)
	assert.Equal(t, 1, buckets[1].Stats.Count)
	assert.Equal(t, 0, buckets[2].Stats.Count)
	assert.Equal(t, 1, buckets[3].Stats.Count)
	assert.Equal(t, 4, overall.Count)
}

func TestCalibrateWinRateExcludesPushes(t *testing.T) {
	picks := []Pick{
		pick(3.0, models.OutcomeWin, 0.909),
		pick(3.0, models.OutcomeWin, 0.909),
		pick(3.0, models.OutcomeLoss, -1.0),
		pick(3.0, models.OutcomePush, 0.0),
	}

	_, overall := Calibrate(picks, 2.0, 2.0)

	assert.Equal(t, 4, overall.Count)
	assert.Equal(t, 1, overall.Pushes)
	assert.InDelta(t, 2.0/3.0, overall.WinRate, 1e-9)
}

func TestCalibrateROIIsPerPick(t *testing.T) {
	picks := []Pick{
		pick(3.0, models.OutcomeWin, 0.909),
		pick(3.0, models.OutcomeLoss, -1.0),
		pick(3.0, models.OutcomePush, 0.0),
	}

	_, overall := Calibrate(picks, 2.0, 2.0)
	assert.InDelta(t, (0.909-1.0)/3.0, overall.ROI, 1e-9)
}

func TestCalibrateEmptyPicks(t *testing.T) {
	buckets, overall := Calibrate(nil, 2.0, 2.0)

	require.Len(t, buckets, 1)
	assert.Equal(t, "[2.0,+)", buckets[0].Label)
	assert.Zero(t, overall.Count)
	assert.Zero(t, overall.WinRate)
	assert.Zero(t, overall.ROI)
}

func TestCalibrateMagnitudeBelowThresholdClampsToFirstBucket(t *testing.T) {
	// Float rounding can leave a qualifying edge a hair under the threshold.
	picks := []Pick{pick(1.9999999, models.OutcomeWin, 0.909)}

	buckets, _ := Calibrate(picks, 2.0, 2.0)
	assert.Equal(t, 1, buckets[0].Stats.Count)
}

func TestUnitProfit(t *testing.T) {
	assert.InDelta(t, 0.909, UnitProfit(models.OutcomeWin, 1.909), 1e-9)
	assert.InDelta(t, -1.0, UnitProfit(models.OutcomeLoss, 1.909), 1e-9)
	assert.InDelta(t, 0.0, UnitProfit(models.OutcomePush, 1.909), 1e-9)
}
