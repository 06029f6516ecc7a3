package backtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
)

const testProvider = "oddsfeed"

type fakeGameRepo struct {
	games []*models.Game
}

func (f *fakeGameRepo) Create(_ context.Context, game *models.Game) error {
	f.games = append(f.games, game)
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Game, error) {
	for _, g := range f.games {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeGameRepo) ListFinalByRange(_ context.Context, start, end time.Time) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusFinal && !g.Kickoff.Before(start) && !g.Kickoff.After(end) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) ListScheduled(_ context.Context, until time.Time) ([]*models.Game, error) {
	var out []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusScheduled && g.Kickoff.Before(until) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) Update(_ context.Context, game *models.Game) error {
	for i, g := range f.games {
		if g.ID == game.ID {
			f.games[i] = game
			return nil
		}
	}
	return models.ErrNotFound
}

type fakeLineRepo struct {
	snapshots map[string]*models.LineSnapshot
}

func newFakeLineRepo() *fakeLineRepo {
	return &fakeLineRepo{snapshots: make(map[string]*models.LineSnapshot)}
}

func lineKey(gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) string {
	return fmt.Sprintf("%s:%s:%s:%s", gameID, provider, market, label)
}

func (f *fakeLineRepo) Upsert(_ context.Context, s *models.LineSnapshot) error {
	f.snapshots[lineKey(s.GameID, s.Provider, s.Market, s.Label)] = s
	return nil
}

func (f *fakeLineRepo) Get(_ context.Context, gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) (*models.LineSnapshot, error) {
	if s, ok := f.snapshots[lineKey(gameID, provider, market, label)]; ok {
		return s, nil
	}
	return nil, models.ErrMissingLine
}

func (f *fakeLineRepo) ListByGame(_ context.Context, gameID uuid.UUID) ([]*models.LineSnapshot, error) {
	var out []*models.LineSnapshot
	for _, s := range f.snapshots {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	ratings map[string]*models.TeamRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*models.TeamRating)}
}

func (f *fakeRatingRepo) Upsert(_ context.Context, rating *models.TeamRating) error {
	f.ratings[fmt.Sprintf("%s:%d", rating.TeamID, rating.Season)] = rating
	return nil
}

func (f *fakeRatingRepo) Get(_ context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	if r, ok := f.ratings[fmt.Sprintf("%s:%d", teamID, season)]; ok {
		return r, nil
	}
	return nil, models.ErrNotFound
}

type fixture struct {
	games   *fakeGameRepo
	lines   *fakeLineRepo
	ratings *fakeRatingRepo
}

func newFixture() *fixture {
	return &fixture{
		games:   &fakeGameRepo{},
		lines:   newFakeLineRepo(),
		ratings: newFakeRatingRepo(),
	}
}

// addFinalGame seeds a final game with equal-rated teams so the projected
// spread is the home-field points alone (-2.5).
func (fx *fixture) addFinalGame(t *testing.T, kickoff time.Time, homeScore, awayScore int) *models.Game {
	t.Helper()
	game := &models.Game{
		ID:         uuid.New(),
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		Season:     2024,
		Kickoff:    kickoff,
		Status:     models.GameStatusFinal,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
	}
	require.NoError(t, fx.games.Create(context.Background(), game))
	for _, teamID := range []uuid.UUID{game.HomeTeamID, game.AwayTeamID} {
		require.NoError(t, fx.ratings.Upsert(context.Background(), &models.TeamRating{
			TeamID:        teamID,
			Season:        2024,
			PowerRating:   1500,
			OffenseRating: 21,
			DefenseRating: 21,
			UpdatedAt:     time.Now().UTC(),
		}))
	}
	return game
}

func (fx *fixture) addSnapshot(t *testing.T, game *models.Game, market models.Market, label models.SnapshotLabel, line float64, capturedAt time.Time) {
	t.Helper()
	require.NoError(t, fx.lines.Upsert(context.Background(), &models.LineSnapshot{
		GameID:     game.ID,
		Provider:   testProvider,
		Market:     market,
		Label:      label,
		Line:       line,
		CapturedAt: capturedAt,
	}))
}

func testRunConfig() Config {
	return Config{
		StartDate:      time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		EdgeThreshold:  2.0,
		DecisionLabel:  models.LabelT60,
		Provider:       testProvider,
		Markets:        []models.Market{models.MarketSpread, models.MarketTotal},
		AmericanPrice:  -110,
		BucketWidth:    2.0,
		MaxConcurrency: 4,
	}
}

func newTestRunner(t *testing.T, fx *fixture, cfg Config) *Runner {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	lookup := projector.NewRatingLookup(fx.ratings, time.Minute)
	proj := projector.NewProjector(projector.DefaultConfig())
	qualifier := edge.NewQualifier(edge.QualifierConfig{
		MinEdgeThreshold: cfg.EdgeThreshold,
		SpreadBandMin:    0,
		SpreadBandMax:    21,
	})
	calc := edge.NewCalculator(7.0, qualifier)

	runner, err := NewRunner(cfg, fx.games, fx.lines, lookup, proj, calc, logger)
	require.NoError(t, err)
	return runner
}

func TestRunProducesGradedPicks(t *testing.T) {
	fx := newFixture()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	// Model says home -2.5; market has home -6, so the edge is -3.5 (bet away
	// at +6). Home wins by 3, the away bet covers.
	game := fx.addFinalGame(t, kickoff, 24, 21)
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.0, kickoff.Add(-time.Hour))
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelClose, -4.0, kickoff.Add(-5*time.Minute))

	result, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TotalGames)
	assert.Equal(t, 1, result.Evaluated)
	require.Len(t, result.Picks, 1)

	pick := result.Picks[0]
	assert.Equal(t, models.MarketSpread, pick.Market)
	assert.Equal(t, models.SideAway, pick.Side)
	assert.InDelta(t, 6.0, pick.Line, 1e-9)
	assert.InDelta(t, -3.5, pick.EdgePoints, 1e-9)
	assert.Equal(t, models.OutcomeWin, pick.Outcome)
	assert.InDelta(t, 100.0/110.0, pick.Profit, 1e-6)

	// Away bet at +6 closed at +4: beat the close by 2.
	require.NotNil(t, pick.CLVPoints)
	assert.InDelta(t, 2.0, *pick.CLVPoints, 1e-9)

	// The total market had no snapshot.
	assert.Equal(t, 1, result.Skipped[SkipMissingLine])
}

func TestRunIsDeterministic(t *testing.T) {
	fx := newFixture()
	base := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		kickoff := base.Add(time.Duration(i) * time.Hour)
		game := fx.addFinalGame(t, kickoff, 20+i, 17)
		fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.5, kickoff.Add(-time.Hour))
		fx.addSnapshot(t, game, models.MarketTotal, models.LabelT60, 48.5, kickoff.Add(-time.Hour))
	}

	first, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)
	second, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Picks, second.Picks)
	assert.Equal(t, first.Buckets, second.Buckets)
	assert.Equal(t, first.Overall, second.Overall)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestRunSkipsLookaheadSnapshot(t *testing.T) {
	fx := newFixture()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	game := fx.addFinalGame(t, kickoff, 30, 10)
	// Captured after kickoff; using it would leak in-game information.
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.0, kickoff.Add(10*time.Minute))

	result, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Picks)
	assert.Equal(t, 1, result.Skipped[SkipLookaheadLine])
	assert.Equal(t, 0, result.Evaluated)
}

func TestRunSkipsMissingRating(t *testing.T) {
	fx := newFixture()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	game := fx.addFinalGame(t, kickoff, 24, 21)
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.0, kickoff.Add(-time.Hour))
	fx.ratings.ratings = make(map[string]*models.TeamRating)

	result, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Picks)
	assert.Equal(t, 1, result.Skipped[SkipMissingRating])
}

func TestRunTalliesNotQualified(t *testing.T) {
	fx := newFixture()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	// Market -3 vs model -2.5 is only half a point of edge.
	game := fx.addFinalGame(t, kickoff, 24, 21)
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -3.0, kickoff.Add(-time.Hour))

	result, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, result.Picks)
	assert.Equal(t, 1, result.NotQualified)
	assert.Equal(t, 1, result.Evaluated)
}

func TestRunWithoutCloseSnapshotLeavesCLVNil(t *testing.T) {
	fx := newFixture()
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	game := fx.addFinalGame(t, kickoff, 24, 21)
	fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.0, kickoff.Add(-time.Hour))

	result, err := newTestRunner(t, fx, testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Picks, 1)
	assert.Nil(t, result.Picks[0].CLVPoints)
}

// The decision must depend only on data available at the decision label: a
// close snapshot may change the CLV annotation but never the pick itself.
func TestRunCloseSnapshotDoesNotAffectDecision(t *testing.T) {
	kickoff := time.Date(2024, 10, 6, 17, 0, 0, 0, time.UTC)

	seed := func(withClose bool) *fixture {
		fx := newFixture()
		game := fx.addFinalGame(t, kickoff, 24, 21)
		fx.addSnapshot(t, game, models.MarketSpread, models.LabelT60, -6.0, kickoff.Add(-time.Hour))
		if withClose {
			fx.addSnapshot(t, game, models.MarketSpread, models.LabelClose, -4.0, kickoff.Add(-5*time.Minute))
		}
		return fx
	}

	withClose, err := newTestRunner(t, seed(true), testRunConfig()).Run(context.Background())
	require.NoError(t, err)
	withoutClose, err := newTestRunner(t, seed(false), testRunConfig()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, withClose.Picks, 1)
	require.Len(t, withoutClose.Picks, 1)

	a, b := withClose.Picks[0], withoutClose.Picks[0]
	assert.Equal(t, a.Market, b.Market)
	assert.Equal(t, a.Side, b.Side)
	assert.InDelta(t, a.Line, b.Line, 1e-9)
	assert.InDelta(t, a.EdgePoints, b.EdgePoints, 1e-9)
	assert.Equal(t, a.Outcome, b.Outcome)
	assert.InDelta(t, a.Profit, b.Profit, 1e-9)

	require.NotNil(t, a.CLVPoints)
	assert.Nil(t, b.CLVPoints)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"start after end", func(c *Config) { c.StartDate = c.EndDate.Add(24 * time.Hour) }},
		{"zero threshold", func(c *Config) { c.EdgeThreshold = 0 }},
		{"unknown label", func(c *Config) { c.DecisionLabel = "halftime" }},
		{"invalid american price", func(c *Config) { c.AmericanPrice = -50 }},
		{"zero bucket width", func(c *Config) { c.BucketWidth = 0 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }},
		{"no markets", func(c *Config) { c.Markets = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testRunConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidConfig)
		})
	}

	assert.NoError(t, testRunConfig().Validate())
}

func TestDecimalPrice(t *testing.T) {
	cfg := testRunConfig()
	assert.InDelta(t, 1.0+100.0/110.0, cfg.DecimalPrice(), 1e-9)

	cfg.AmericanPrice = 150
	assert.InDelta(t, 2.5, cfg.DecimalPrice(), 1e-9)

	cfg.AmericanPrice = 100
	assert.InDelta(t, 2.0, cfg.DecimalPrice(), 1e-9)
}
