// Package projector computes model-implied spreads and totals from team
// ratings and situational adjustments.
package projector

import (
	"fmt"
	"math"

	"github.com/yourusername/line-edge/internal/models"
)

// Breakdown adjustment names
const (
	AdjRatingDifferential = "rating_differential"
	AdjHomeField          = "home_field"
	AdjRest               = "rest"
	AdjTravel             = "travel"
	AdjHomeScoring        = "home_scoring"
	AdjAwayScoring        = "away_scoring"
)

// Config holds the numeric constants of the projection model
type Config struct {
	// RatingScale converts power-rating differential to points
	// (e.g. 25 Elo-like units per point).
	RatingScale      float64
	HomeFieldPoints  float64
	RestPointsPerDay float64
	RestCapPoints    float64
	TravelCapPoints  float64
}

// DefaultConfig returns the standard projection constants
func DefaultConfig() Config {
	return Config{
		RatingScale:      25.0,
		HomeFieldPoints:  2.5,
		RestPointsPerDay: 0.5,
		RestCapPoints:    1.5,
		TravelCapPoints:  1.0,
	}
}

// Situational carries optional game-context adjustments
type Situational struct {
	RestDaysHome float64
	RestDaysAway float64
	TravelMiles  float64
}

// Projection is the model's view of a matchup. SpreadHome is quoted from the
// home team's perspective: negative means the model favors home.
type Projection struct {
	SpreadHome      float64
	Total           float64
	SpreadBreakdown models.AdjustmentBreakdown
	TotalBreakdown  models.AdjustmentBreakdown
}

// Projector derives model lines from ratings. Pure with respect to any
// shared state; safe to call concurrently across games.
type Projector struct {
	cfg Config
}

// NewProjector creates a projector with the given model constants
func NewProjector(cfg Config) *Projector {
	if cfg.RatingScale == 0 {
		cfg.RatingScale = DefaultConfig().RatingScale
	}
	return &Projector{cfg: cfg}
}

// Project computes the model spread and total for one matchup.
// Each situational term is capped individually so outlier inputs (absurd
// travel distances, long layoffs) cannot dominate the projection.
func (p *Projector) Project(game *models.Game, home, away *models.TeamRating, sit Situational) (Projection, error) {
	if game == nil {
		return Projection{}, fmt.Errorf("game is required")
	}
	if home == nil || away == nil {
		return Projection{}, models.ErrMissingRating
	}

	ratingPoints := (home.PowerRating - away.PowerRating) / p.cfg.RatingScale
	restPoints := clamp((sit.RestDaysHome-sit.RestDaysAway)*p.cfg.RestPointsPerDay,
		-p.cfg.RestCapPoints, p.cfg.RestCapPoints)
	travelPoints := clamp(sit.TravelMiles/1000.0, 0, p.cfg.TravelCapPoints)

	// Home-advantage points flip sign in spread space: negative = home favored.
	spreadBreakdown := models.AdjustmentBreakdown{
		Version:  models.BreakdownVersion,
		Baseline: 0,
		Adjustments: []models.Adjustment{
			{Name: AdjRatingDifferential, Points: -ratingPoints},
			{Name: AdjHomeField, Points: -p.cfg.HomeFieldPoints},
			{Name: AdjRest, Points: -restPoints},
			{Name: AdjTravel, Points: -travelPoints},
		},
	}
	spread := spreadBreakdown.Baseline + spreadBreakdown.Sum()

	homeScoring := (home.OffenseRating + away.DefenseRating) / 2.0
	awayScoring := (away.OffenseRating + home.DefenseRating) / 2.0
	totalBreakdown := models.AdjustmentBreakdown{
		Version:  models.BreakdownVersion,
		Baseline: 0,
		Adjustments: []models.Adjustment{
			{Name: AdjHomeScoring, Points: homeScoring},
			{Name: AdjAwayScoring, Points: awayScoring},
		},
	}
	total := totalBreakdown.Baseline + totalBreakdown.Sum()

	if !isFinite(spread) || !isFinite(total) {
		return Projection{}, fmt.Errorf("projection produced non-finite line for game %s", game.ID)
	}

	return Projection{
		SpreadHome:      spread,
		Total:           total,
		SpreadBreakdown: spreadBreakdown,
		TotalBreakdown:  totalBreakdown,
	}, nil
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
