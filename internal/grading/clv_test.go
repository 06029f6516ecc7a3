package grading

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-edge/internal/models"
)

func closeSnapshot(gameID uuid.UUID, market models.Market, line float64) *models.LineSnapshot {
	return &models.LineSnapshot{
		GameID:     gameID,
		Provider:   "consensus",
		Market:     market,
		Label:      models.LabelClose,
		Line:       line,
		CapturedAt: time.Date(2024, 11, 3, 17, 55, 0, 0, time.UTC),
	}
}

func TestComputeCLVSpread(t *testing.T) {
	gameID := uuid.New()

	tests := []struct {
		name      string
		side      models.Side
		betLine   float64
		closeLine float64
		want      float64
	}{
		// Bet home -3, line closes -4.5: the market moved toward home,
		// the bettor beat the close by 1.5 points.
		{"home bet beats the close", models.SideHome, -3.0, -4.5, 1.5},
		// The mirror bet on away at +3 got the worse number.
		{"away bet loses to the close", models.SideAway, 3.0, -4.5, -1.5},
		{"home bet loses to the close", models.SideHome, -4.5, -3.0, -1.5},
		{"away bet beats the close", models.SideAway, 4.5, -3.0, 1.5},
		{"no movement is zero", models.SideHome, -3.0, -3.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &models.BetRecord{
				ID:     uuid.New(),
				GameID: gameID,
				Market: models.MarketSpread,
				Side:   tt.side,
				Line:   tt.betLine,
			}

			clv := ComputeCLV(b, closeSnapshot(gameID, models.MarketSpread, tt.closeLine))
			require.NotNil(t, clv)
			assert.InDelta(t, tt.want, *clv, 1e-9)
		})
	}
}

func TestComputeCLVTotal(t *testing.T) {
	gameID := uuid.New()

	tests := []struct {
		name      string
		side      models.Side
		betLine   float64
		closeLine float64
		want      float64
	}{
		{"over bet beats a rising total", models.SideOver, 44.5, 46.0, 1.5},
		{"over bet loses to a falling total", models.SideOver, 44.5, 43.0, -1.5},
		{"under bet beats a falling total", models.SideUnder, 44.5, 43.0, 1.5},
		{"under bet loses to a rising total", models.SideUnder, 44.5, 46.0, -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &models.BetRecord{
				ID:     uuid.New(),
				GameID: gameID,
				Market: models.MarketTotal,
				Side:   tt.side,
				Line:   tt.betLine,
			}

			clv := ComputeCLV(b, closeSnapshot(gameID, models.MarketTotal, tt.closeLine))
			require.NotNil(t, clv)
			assert.InDelta(t, tt.want, *clv, 1e-9)
		})
	}
}

func TestComputeCLVMissingClose(t *testing.T) {
	b := &models.BetRecord{ID: uuid.New(), GameID: uuid.New(), Market: models.MarketSpread, Side: models.SideHome, Line: -3.0}

	assert.Nil(t, ComputeCLV(b, nil))
	assert.Nil(t, ComputeCLV(nil, closeSnapshot(b.GameID, models.MarketSpread, -4.5)))
}

func TestBuildCLVRecord(t *testing.T) {
	gameID := uuid.New()
	b := &models.BetRecord{
		ID:     uuid.New(),
		GameID: gameID,
		Market: models.MarketSpread,
		Side:   models.SideAway,
		Line:   3.0,
	}
	computedAt := time.Date(2024, 11, 3, 22, 0, 0, 0, time.UTC)

	record := BuildCLVRecord(b, closeSnapshot(gameID, models.MarketSpread, -4.5), computedAt)
	require.NotNil(t, record)

	assert.Equal(t, b.ID, record.BetID)
	assert.Equal(t, gameID, record.GameID)
	assert.InDelta(t, 3.0, record.BetLine, 1e-9)
	// Closing line mirrored into the away perspective.
	assert.InDelta(t, 4.5, record.ClosingLine, 1e-9)
	assert.InDelta(t, -1.5, record.CLVPoints, 1e-9)
	assert.Equal(t, computedAt, record.ComputedAt)

	assert.Nil(t, BuildCLVRecord(b, nil, computedAt))
}
