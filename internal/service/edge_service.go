package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/edge"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
)

// ScanSummary reports the outcome of one live scan sweep
type ScanSummary struct {
	GamesScanned  int
	EdgesComputed int
	Qualified     int
	BetsCreated   int
	Skipped       int
}

// EdgeService runs the live pipeline: project upcoming games, compare against
// the decision-label market line, persist edges and open unit bets for
// qualifying ones.
type EdgeService struct {
	games         repository.GameRepository
	lines         repository.LineSnapshotRepository
	edges         repository.EdgeRepository
	bets          repository.BetRepository
	lookup        *projector.RatingLookup
	proj          *projector.Projector
	calc          *edge.Calculator
	provider      string
	decisionLabel models.SnapshotLabel
	logger        *logrus.Logger
}

// NewEdgeService creates a new edge scanning service
func NewEdgeService(
	games repository.GameRepository,
	lines repository.LineSnapshotRepository,
	edges repository.EdgeRepository,
	bets repository.BetRepository,
	lookup *projector.RatingLookup,
	proj *projector.Projector,
	calc *edge.Calculator,
	provider string,
	decisionLabel models.SnapshotLabel,
	logger *logrus.Logger,
) *EdgeService {
	if logger == nil {
		logger = logrus.New()
	}
	return &EdgeService{
		games:         games,
		lines:         lines,
		edges:         edges,
		bets:          bets,
		lookup:        lookup,
		proj:          proj,
		calc:          calc,
		provider:      provider,
		decisionLabel: decisionLabel,
		logger:        logger,
	}
}

// ScanUpcoming evaluates every scheduled game with kickoff inside the horizon
// and records edges for both markets. Games missing ratings or the decision
// snapshot are skipped, not failed; the sweep continues.
func (s *EdgeService) ScanUpcoming(ctx context.Context, horizon time.Duration) (*ScanSummary, error) {
	until := time.Now().Add(horizon)
	games, err := s.games.ListScheduled(ctx, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled games: %w", err)
	}

	summary := &ScanSummary{GamesScanned: len(games)}

	for _, game := range games {
		if err := s.scanGame(ctx, game, summary); err != nil {
			summary.Skipped++
			s.logger.WithError(err).WithField("game_id", game.ID).Debug("Skipping game")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"scanned":   summary.GamesScanned,
		"computed":  summary.EdgesComputed,
		"qualified": summary.Qualified,
		"bets":      summary.BetsCreated,
		"skipped":   summary.Skipped,
	}).Info("Scan sweep complete")

	return summary, nil
}

// scanGame projects one game and evaluates both markets
func (s *EdgeService) scanGame(ctx context.Context, game *models.Game, summary *ScanSummary) error {
	home, err := s.lookup.Get(ctx, game.HomeTeamID, game.Season)
	if err != nil {
		return err
	}
	away, err := s.lookup.Get(ctx, game.AwayTeamID, game.Season)
	if err != nil {
		return err
	}

	proj, err := s.proj.Project(game, home, away, projector.Situational{})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, market := range []models.Market{models.MarketSpread, models.MarketTotal} {
		modelLine := proj.SpreadHome
		breakdown := proj.SpreadBreakdown
		if market == models.MarketTotal {
			modelLine = proj.Total
			breakdown = proj.TotalBreakdown
		}

		snapshot, err := s.lines.Get(ctx, game.ID, s.provider, market, s.decisionLabel)
		if errors.Is(err, models.ErrMissingLine) {
			continue
		}
		if err != nil {
			return err
		}

		// Snapshots captured after kickoff carry information the bettor
		// could not have had.
		if snapshot.CapturedAt.After(game.Kickoff) {
			continue
		}

		computed := s.calc.Compute(modelLine, breakdown, snapshot, now)
		if err := s.edges.Upsert(ctx, computed); err != nil {
			return fmt.Errorf("failed to store edge: %w", err)
		}

		summary.EdgesComputed++
		metrics.RecordEdgeComputed(string(market), computed.EdgeMagnitude())
		metrics.RecordQualification(computed.Qualifies)

		if !computed.Qualifies {
			continue
		}
		summary.Qualified++

		created, err := s.openBet(ctx, game, computed, now)
		if err != nil {
			return err
		}
		if created {
			summary.BetsCreated++
			metrics.BetsCreatedTotal.Inc()
		}
	}

	return nil
}

// openBet creates the unit bet record for a qualifying edge. The bet ID is
// derived from (game, market) so a rescan after a line move updates the edge
// but never opens a second position.
func (s *EdgeService) openBet(ctx context.Context, game *models.Game, computed *models.Edge, now time.Time) (bool, error) {
	betID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(game.ID.String()+":"+string(computed.Market)))

	_, err := s.bets.GetByID(ctx, betID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("failed to check existing bet: %w", err)
	}

	bet := &models.BetRecord{
		ID:         betID,
		GameID:     game.ID,
		Market:     computed.Market,
		Provider:   computed.Provider,
		Side:       computed.RecommendedSide,
		Line:       computed.SideLine(),
		EdgePoints: computed.EdgePoints,
		Stake:      models.UnitStake,
		PlacedAt:   now,
	}

	if err := s.bets.Create(ctx, bet); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create bet: %w", err)
	}

	return true, nil
}
