package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/line-edge/internal/config"
	"github.com/yourusername/line-edge/internal/models"
)

// Config holds one backtest run's parameters
type Config struct {
	StartDate     time.Time
	EndDate       time.Time
	EdgeThreshold float64
	// DecisionLabel selects the snapshot used for the simulated bet, e.g.
	// t-60 places the bet one hour before kickoff.
	DecisionLabel  models.SnapshotLabel
	Provider       string
	Markets        []models.Market
	AmericanPrice  int
	BucketWidth    float64
	MaxConcurrency int
	OutputPath     string
}

// FromConfig converts app config to a backtest run config
func FromConfig(cfg *config.BacktestConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("%w: backtest config is required", models.ErrInvalidConfig)
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid start date: %v", models.ErrInvalidConfig, err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return Config{}, fmt.Errorf("%w: invalid end date: %v", models.ErrInvalidConfig, err)
	}

	bt := Config{
		StartDate:      start,
		EndDate:        end,
		EdgeThreshold:  cfg.EdgeThreshold,
		DecisionLabel:  models.SnapshotLabel(cfg.DecisionLabel),
		Provider:       cfg.Provider,
		Markets:        []models.Market{models.MarketSpread, models.MarketTotal},
		AmericanPrice:  cfg.AmericanPrice,
		BucketWidth:    cfg.BucketWidth,
		MaxConcurrency: cfg.MaxConcurrency,
		OutputPath:     cfg.OutputPath,
	}

	return bt, bt.Validate()
}

// Validate checks run parameters. Failures wrap models.ErrInvalidConfig and
// abort before any computation starts.
func (c Config) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("%w: start date must be before end date", models.ErrInvalidConfig)
	}
	if c.EdgeThreshold <= 0 {
		return fmt.Errorf("%w: edge threshold must be positive", models.ErrInvalidConfig)
	}
	if !validLabel(c.DecisionLabel) {
		return fmt.Errorf("%w: unknown decision label %q", models.ErrInvalidConfig, c.DecisionLabel)
	}
	if c.AmericanPrice > -100 && c.AmericanPrice < 100 {
		return fmt.Errorf("%w: american price %d is not a valid price", models.ErrInvalidConfig, c.AmericanPrice)
	}
	if c.BucketWidth <= 0 {
		return fmt.Errorf("%w: bucket width must be positive", models.ErrInvalidConfig)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: max concurrency must be positive", models.ErrInvalidConfig)
	}
	if len(c.Markets) == 0 {
		return fmt.Errorf("%w: at least one market is required", models.ErrInvalidConfig)
	}
	return nil
}

// DecimalPrice converts the configured American price to decimal odds,
// e.g. -110 becomes 1.909...
func (c Config) DecimalPrice() float64 {
	return americanToDecimal(c.AmericanPrice)
}

func americanToDecimal(american int) float64 {
	if american > 0 {
		return float64(american)/100.0 + 1.0
	}
	return 100.0/float64(-american) + 1.0
}

func validLabel(label models.SnapshotLabel) bool {
	for _, known := range models.SnapshotLabels {
		if label == known {
			return true
		}
	}
	return false
}
