package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/grading"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
)

// Skip tally reasons
const (
	SkipMissingRating   = "missing_rating"
	SkipMissingLine     = "missing_line"
	SkipLookaheadLine   = "lookahead_snapshot"
	SkipProjectionError = "projection_error"
	SkipStoreError      = "store_error"
)

// Result is the ephemeral backtest report: per-pick detail plus calibration
// statistics. Returned to the caller, never persisted by the engine.
type Result struct {
	StartDate    string               `json:"start_date"`
	EndDate      string               `json:"end_date"`
	Threshold    float64              `json:"threshold"`
	Label        models.SnapshotLabel `json:"decision_label"`
	TotalGames   int                  `json:"total_games"`
	Evaluated    int                  `json:"evaluated"`
	NotQualified int                  `json:"not_qualified"`
	// Skipped counts games excluded per reason so consumers can judge
	// sample completeness.
	Skipped map[string]int      `json:"skipped"`
	Picks   []Pick              `json:"picks"`
	Buckets []CalibrationBucket `json:"buckets"`
	Overall BucketStats         `json:"overall"`
}

// SkippedTotal sums the per-reason tallies
func (r *Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// Runner replays the edge pipeline over historical games
type Runner struct {
	cfg     Config
	games   repository.GameRepository
	lines   repository.LineSnapshotRepository
	ratings *projector.RatingLookup
	proj    *projector.Projector
	calc    *edge.Calculator
	grader  *grading.Grader
	logger  *logrus.Logger
}

// NewRunner creates a backtest runner
func NewRunner(cfg Config, games repository.GameRepository, lines repository.LineSnapshotRepository, ratings *projector.RatingLookup, proj *projector.Projector, calc *edge.Calculator, logger *logrus.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if games == nil || lines == nil || ratings == nil || proj == nil || calc == nil {
		return nil, fmt.Errorf("%w: all collaborators are required", models.ErrInvalidConfig)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		cfg:     cfg,
		games:   games,
		lines:   lines,
		ratings: ratings,
		proj:    proj,
		calc:    calc,
		grader:  grading.NewGrader(),
		logger:  logger,
	}, nil
}

type gameOutcome struct {
	picks        []Pick
	skips        map[string]int
	notQualified int
	evaluated    bool
}

// Run replays all final games in range and aggregates calibration buckets.
// The per-game fan-out is bounded by MaxConcurrency; the merge is
// deterministic (picks sorted by kickoff, then game id, then market) so
// repeated runs over identical inputs produce identical reports.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.logger.WithFields(logrus.Fields{
		"start": r.cfg.StartDate.Format("2006-01-02"),
		"end":   r.cfg.EndDate.Format("2006-01-02"),
		"label": r.cfg.DecisionLabel,
	}).Info("Starting backtest run")

	games, err := r.games.ListFinalByRange(ctx, r.cfg.StartDate, r.cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load final games: %w", err)
	}

	outcomes := make([]gameOutcome, len(games))
	sem := make(chan struct{}, r.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, game := range games {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, game *models.Game) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = r.evaluateGame(ctx, game)
		}(i, game)
	}
	wg.Wait()

	result := &Result{
		StartDate: r.cfg.StartDate.Format("2006-01-02"),
		EndDate:   r.cfg.EndDate.Format("2006-01-02"),
		Threshold: r.cfg.EdgeThreshold,
		Label:     r.cfg.DecisionLabel,
		Skipped:   make(map[string]int),
	}
	result.TotalGames = len(games)

	for _, outcome := range outcomes {
		if outcome.evaluated {
			result.Evaluated++
		}
		result.NotQualified += outcome.notQualified
		for reason, n := range outcome.skips {
			result.Skipped[reason] += n
		}
		result.Picks = append(result.Picks, outcome.picks...)
	}

	sort.Slice(result.Picks, func(a, b int) bool {
		pa, pb := result.Picks[a], result.Picks[b]
		if pa.Kickoff != pb.Kickoff {
			return pa.Kickoff < pb.Kickoff
		}
		if pa.GameID != pb.GameID {
			return pa.GameID.String() < pb.GameID.String()
		}
		return pa.Market < pb.Market
	})

	result.Buckets, result.Overall = Calibrate(result.Picks, r.cfg.EdgeThreshold, r.cfg.BucketWidth)

	r.logger.WithFields(logrus.Fields{
		"games":    result.TotalGames,
		"picks":    len(result.Picks),
		"skipped":  result.SkippedTotal(),
		"win_rate": result.Overall.WinRate,
	}).Info("Backtest run complete")

	return result, nil
}

// evaluateGame runs the decision pipeline for one game using only
// information available at the decision-time snapshot: no closing lines and
// no final scores enter until the grading step. Per-game failures are
// tallied and skipped, never fatal for the run.
func (r *Runner) evaluateGame(ctx context.Context, game *models.Game) gameOutcome {
	outcome := gameOutcome{skips: make(map[string]int)}

	homeRating, err := r.ratings.Get(ctx, game.HomeTeamID, game.Season)
	if err != nil {
		outcome.skips[skipReason(err)]++
		return outcome
	}
	awayRating, err := r.ratings.Get(ctx, game.AwayTeamID, game.Season)
	if err != nil {
		outcome.skips[skipReason(err)]++
		return outcome
	}

	projection, err := r.proj.Project(game, homeRating, awayRating, projector.Situational{})
	if err != nil {
		outcome.skips[SkipProjectionError]++
		return outcome
	}

	for _, market := range r.cfg.Markets {
		snapshot, err := r.lines.Get(ctx, game.ID, r.cfg.Provider, market, r.cfg.DecisionLabel)
		if err != nil {
			outcome.skips[skipReason(err)]++
			continue
		}
		// The decision snapshot must predate kickoff; anything later would
		// leak post-game information into the decision.
		if snapshot.CapturedAt.After(game.Kickoff) {
			outcome.skips[SkipLookaheadLine]++
			continue
		}

		modelLine := projection.SpreadHome
		breakdown := projection.SpreadBreakdown
		if market == models.MarketTotal {
			modelLine = projection.Total
			breakdown = projection.TotalBreakdown
		}

		computed := r.calc.Compute(modelLine, breakdown, snapshot, snapshot.CapturedAt)
		outcome.evaluated = true
		if !computed.Qualifies {
			outcome.notQualified++
			continue
		}

		pick, err := r.gradePick(ctx, game, computed)
		if err != nil {
			outcome.skips[SkipStoreError]++
			continue
		}
		outcome.picks = append(outcome.picks, pick)
	}

	return outcome
}

// gradePick settles a qualifying pick against the actual final score.
func (r *Runner) gradePick(ctx context.Context, game *models.Game, computed *models.Edge) (Pick, error) {
	bet := &models.BetRecord{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(game.ID.String()+":"+string(computed.Market))),
		GameID:     game.ID,
		Market:     computed.Market,
		Provider:   computed.Provider,
		Side:       computed.RecommendedSide,
		Line:       computed.SideLine(),
		EdgePoints: computed.EdgePoints,
		Stake:      models.UnitStake,
		PlacedAt:   computed.AsOf,
	}

	outcome, err := r.grader.Grade(bet, game)
	if err != nil {
		return Pick{}, err
	}

	pick := Pick{
		GameID:     game.ID,
		Kickoff:    game.Kickoff.UTC().Format(time.RFC3339),
		Market:     computed.Market,
		Side:       computed.RecommendedSide,
		Line:       bet.Line,
		ModelLine:  computed.ModelLine,
		MarketLine: computed.MarketLine,
		EdgePoints: computed.EdgePoints,
		Outcome:    outcome,
		Profit:     UnitProfit(outcome, r.cfg.DecimalPrice()),
	}

	// The close snapshot is only consulted after the decision was made.
	if close, err := r.lines.Get(ctx, game.ID, computed.Provider, computed.Market, models.LabelClose); err == nil {
		bet.Outcome = &outcome
		pick.CLVPoints = grading.ComputeCLV(bet, close)
	}

	return pick, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingRating):
		return SkipMissingRating
	case errors.Is(err, models.ErrMissingLine):
		return SkipMissingLine
	default:
		return SkipStoreError
	}
}
