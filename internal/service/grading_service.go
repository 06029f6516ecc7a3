package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/grading"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
)

// GradeSummary reports the outcome of one grading sweep
type GradeSummary struct {
	Pending       int
	Graded        int
	NotFinal      int
	AlreadyGraded int
	MissingCLV    int
	Errors        int
}

// GradingService settles pending bets once their games go final and records
// closing-line value when the close snapshot exists.
type GradingService struct {
	games  repository.GameRepository
	lines  repository.LineSnapshotRepository
	bets   repository.BetRepository
	clv    repository.CLVRepository
	grader *grading.Grader
	logger *logrus.Logger
}

// NewGradingService creates a new grading service
func NewGradingService(
	games repository.GameRepository,
	lines repository.LineSnapshotRepository,
	bets repository.BetRepository,
	clv repository.CLVRepository,
	grader *grading.Grader,
	logger *logrus.Logger,
) *GradingService {
	if logger == nil {
		logger = logrus.New()
	}
	return &GradingService{
		games:  games,
		lines:  lines,
		bets:   bets,
		clv:    clv,
		grader: grader,
		logger: logger,
	}
}

// GradePending sweeps all pending bets. Bets whose game is not yet final stay
// pending for the next sweep; bets concurrently graded elsewhere are counted
// and left untouched.
func (s *GradingService) GradePending(ctx context.Context) (*GradeSummary, error) {
	pending, err := s.bets.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %w", err)
	}

	summary := &GradeSummary{Pending: len(pending)}

	for _, bet := range pending {
		if err := s.gradeBet(ctx, bet, summary); err != nil {
			summary.Errors++
			s.logger.WithError(err).WithField("bet_id", bet.ID).Warn("Failed to grade bet")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"pending":        summary.Pending,
		"graded":         summary.Graded,
		"not_final":      summary.NotFinal,
		"already_graded": summary.AlreadyGraded,
		"errors":         summary.Errors,
	}).Info("Grading sweep complete")

	metrics.PendingBets.Set(float64(summary.Pending - summary.Graded))

	return summary, nil
}

// gradeBet settles one bet and persists the outcome with CLV
func (s *GradingService) gradeBet(ctx context.Context, bet *models.BetRecord, summary *GradeSummary) error {
	game, err := s.games.GetByID(ctx, bet.GameID)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}

	outcome, err := s.grader.Grade(bet, game)
	if errors.Is(err, models.ErrGameNotFinal) {
		summary.NotFinal++
		metrics.GradingSkipsTotal.WithLabelValues("not_final").Inc()
		return nil
	}
	if errors.Is(err, models.ErrAlreadyGraded) {
		summary.AlreadyGraded++
		metrics.GradingSkipsTotal.WithLabelValues("already_graded").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	clvPoints := s.computeCLV(ctx, bet, summary)

	err = s.bets.UpdateOutcome(ctx, bet.ID, outcome, clvPoints)
	if errors.Is(err, models.ErrAlreadyGraded) {
		summary.AlreadyGraded++
		metrics.GradingSkipsTotal.WithLabelValues("already_graded").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to store outcome: %w", err)
	}

	summary.Graded++
	metrics.RecordBetGraded(string(outcome))
	if clvPoints != nil {
		metrics.RecordCLV(*clvPoints)
	}

	return nil
}

// computeCLV derives closing-line value for the bet when the close snapshot
// exists, persisting the detail record alongside. A missing close is normal
// for thin markets and never blocks grading.
func (s *GradingService) computeCLV(ctx context.Context, bet *models.BetRecord, summary *GradeSummary) *float64 {
	close, err := s.lines.Get(ctx, bet.GameID, bet.Provider, bet.Market, models.LabelClose)
	if err != nil {
		summary.MissingCLV++
		return nil
	}

	record := grading.BuildCLVRecord(bet, close, time.Now().UTC())
	if record == nil {
		summary.MissingCLV++
		return nil
	}

	if err := s.clv.Upsert(ctx, record); err != nil {
		s.logger.WithError(err).WithField("bet_id", bet.ID).Warn("Failed to store CLV record")
	}

	clv := record.CLVPoints
	return &clv
}
