package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/metrics"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/projector"
	"github.com/yourusername/line-edge/internal/repository"
)

// IngestionService pulls games, line snapshots and team ratings from the feed
// into the repositories
type IngestionService struct {
	source     datasource.FeedSource
	games      repository.GameRepository
	lines      repository.LineSnapshotRepository
	ratings    repository.TeamRatingRepository
	lookup     *projector.RatingLookup
	normalizer *FeedNormalizer
	metrics    *IngestionMetrics
	logger     *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.FeedSource,
	games repository.GameRepository,
	lines repository.LineSnapshotRepository,
	ratings repository.TeamRatingRepository,
	lookup *projector.RatingLookup,
	normalizer *FeedNormalizer,
	logger *logrus.Logger,
) *IngestionService {
	if logger == nil {
		logger = logrus.New()
	}
	return &IngestionService{
		source:     source,
		games:      games,
		lines:      lines,
		ratings:    ratings,
		lookup:     lookup,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     logger,
	}
}

// IngestGames fetches and upserts games within the date range, along with the
// current line snapshots for each
func (s *IngestionService) IngestGames(ctx context.Context, startDate, endDate time.Time) (*IngestionMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	s.logger.WithFields(logrus.Fields{
		"source": s.source.Name(),
		"from":   startDate.Format("2006-01-02"),
		"to":     endDate.Format("2006-01-02"),
	}).Info("Starting game ingestion")

	feedGames, err := s.source.FetchGames(ctx, startDate, endDate)
	if err != nil {
		s.metrics.RecordError()
		return s.metrics, fmt.Errorf("failed to fetch games: %w", err)
	}

	s.metrics.TotalGames = len(feedGames)

	for i := range feedGames {
		if err := s.processGame(ctx, &feedGames[i]); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("source_id", feedGames[i].SourceID).Warn("Failed to ingest game")
		}
	}

	s.metrics.Duration = time.Since(startTime)
	s.logger.WithField("metrics", s.metrics.String()).Info("Game ingestion complete")

	return s.metrics, nil
}

// IngestRatings fetches and upserts team ratings for a season. Cached lookup
// entries for upserted teams are invalidated so scans see fresh values.
func (s *IngestionService) IngestRatings(ctx context.Context, season int) (int, error) {
	feedRatings, err := s.source.FetchRatings(ctx, season)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	stored := 0
	for i := range feedRatings {
		rating, err := s.normalizer.NormalizeRating(&feedRatings[i])
		if err != nil {
			s.metrics.RecordValidationError()
			s.logger.WithError(err).WithField("team", feedRatings[i].TeamName).Warn("Skipping invalid rating")
			continue
		}

		if err := s.ratings.Upsert(ctx, rating); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("team_id", rating.TeamID).Warn("Failed to upsert rating")
			continue
		}

		if s.lookup != nil {
			s.lookup.Invalidate(rating.TeamID, rating.Season)
		}
		s.metrics.RecordRating()
		stored++
	}

	s.logger.WithFields(logrus.Fields{"season": season, "stored": stored}).Info("Rating ingestion complete")
	return stored, nil
}

// processGame upserts one game and ingests its line snapshots
func (s *IngestionService) processGame(ctx context.Context, src *datasource.GameData) error {
	game, err := s.normalizer.NormalizeGame(src)
	if err != nil {
		s.metrics.RecordValidationError()
		return fmt.Errorf("failed to normalize game: %w", err)
	}

	existing, err := s.games.GetByID(ctx, game.ID)
	switch {
	case err == nil:
		// Preserve creation time on re-ingestion; only status, scores and
		// kickoff can move.
		game.CreatedAt = existing.CreatedAt
		if err := s.games.Update(ctx, game); err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
		s.metrics.RecordDuplicate()
	case errors.Is(err, models.ErrNotFound):
		if err := s.games.Create(ctx, game); err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up game: %w", err)
	}

	if err := s.ingestLines(ctx, src.SourceID, game); err != nil {
		return err
	}

	s.metrics.RecordGame()
	return nil
}

// ingestLines fetches and upserts the current line snapshots for one game
func (s *IngestionService) ingestLines(ctx context.Context, sourceID string, game *models.Game) error {
	feedLines, err := s.source.FetchLines(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to fetch lines: %w", err)
	}

	for i := range feedLines {
		snapshot, err := s.normalizer.NormalizeLine(&feedLines[i], game.ID, game.Kickoff)
		if err != nil {
			s.metrics.RecordValidationError()
			s.logger.WithError(err).WithField("game_id", game.ID).Warn("Skipping invalid line")
			continue
		}

		if err := s.lines.Upsert(ctx, snapshot); err != nil {
			s.metrics.RecordError()
			s.logger.WithError(err).WithField("game_id", game.ID).Warn("Failed to upsert snapshot")
			continue
		}

		s.metrics.RecordSnapshot()
		metrics.SnapshotsIngestedTotal.Inc()
	}

	return nil
}

// HandleLineMove applies a single streamed line movement as a snapshot upsert.
// Wired as a datasource.LineMoveHandler on the stream client.
func (s *IngestionService) HandleLineMove(move datasource.LineMove) error {
	capturedAt, err := time.Parse(time.RFC3339, move.CapturedAt)
	if err != nil {
		capturedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gameID := GameID(move.GameSourceID)
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("stream move for unknown game %s: %w", move.GameSourceID, err)
	}

	snapshot, err := s.normalizer.NormalizeLine(&datasource.LineData{
		GameSourceID: move.GameSourceID,
		Provider:     move.Provider,
		Market:       move.Market,
		Line:         move.Line,
		CapturedAt:   capturedAt,
	}, gameID, game.Kickoff)
	if err != nil {
		return err
	}

	if err := s.lines.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to upsert streamed snapshot: %w", err)
	}

	metrics.SnapshotsIngestedTotal.Inc()
	return nil
}

// GetMetrics returns the current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}
