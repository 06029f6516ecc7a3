// Package service wires the feed, the projection model and the repositories
// into the live scanning, grading and ingestion workflows.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/line-edge/internal/datasource"
	"github.com/yourusername/line-edge/internal/models"
)

// FeedNormalizer converts feed payloads into internal models. IDs are derived
// deterministically from provider source IDs so repeated ingestion of the
// same entity resolves to the same row.
type FeedNormalizer struct {
	logger *logrus.Logger
}

// NewFeedNormalizer creates a feed normalizer
func NewFeedNormalizer(logger *logrus.Logger) *FeedNormalizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &FeedNormalizer{logger: logger}
}

// GameID derives the internal game ID from the provider's source ID
func GameID(sourceID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("game:"+sourceID))
}

// TeamID derives the internal team ID from the provider's team identifier
func TeamID(teamSourceID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("team:"+teamSourceID))
}

// NormalizeGame converts feed game data to the internal Game model
func (n *FeedNormalizer) NormalizeGame(src *datasource.GameData) (*models.Game, error) {
	if src == nil {
		return nil, fmt.Errorf("source game is nil")
	}
	if src.SourceID == "" {
		return nil, models.NewValidationError("source_id", "is required")
	}
	if src.HomeTeam == "" || src.AwayTeam == "" {
		return nil, models.NewValidationError("teams", "home and away are required")
	}

	now := time.Now().UTC()
	return &models.Game{
		ID:         GameID(src.SourceID),
		HomeTeamID: TeamID(src.HomeTeam),
		AwayTeamID: TeamID(src.AwayTeam),
		Season:     src.Season,
		Kickoff:    src.Kickoff.UTC(),
		Status:     normalizeStatus(src.Status),
		HomeScore:  src.HomeScore,
		AwayScore:  src.AwayScore,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// NormalizeLine converts feed line data to a line snapshot. The capture label
// is derived from proximity to kickoff.
func (n *FeedNormalizer) NormalizeLine(src *datasource.LineData, gameID uuid.UUID, kickoff time.Time) (*models.LineSnapshot, error) {
	if src == nil {
		return nil, fmt.Errorf("source line is nil")
	}

	market := models.Market(strings.ToLower(src.Market))
	if market != models.MarketSpread && market != models.MarketTotal {
		return nil, models.NewValidationError("market", fmt.Sprintf("unknown market %q", src.Market))
	}

	return &models.LineSnapshot{
		GameID:     gameID,
		Provider:   src.Provider,
		Market:     market,
		Label:      labelFor(src.CapturedAt, kickoff),
		Line:       src.Line,
		CapturedAt: src.CapturedAt.UTC(),
	}, nil
}

// NormalizeRating converts feed rating data to the internal TeamRating model.
// Entries missing the power rating are rejected; offense and defense default
// to zero when the provider omits them.
func (n *FeedNormalizer) NormalizeRating(src *datasource.RatingData) (*models.TeamRating, error) {
	if src == nil {
		return nil, fmt.Errorf("source rating is nil")
	}
	if src.PowerRating == nil {
		return nil, models.NewValidationError("power_rating", "is required")
	}

	rating := &models.TeamRating{
		TeamID:      TeamID(src.TeamSourceID),
		Season:      src.Season,
		PowerRating: *src.PowerRating,
		UpdatedAt:   src.UpdatedAt.UTC(),
	}
	if src.OffenseRating != nil {
		rating.OffenseRating = *src.OffenseRating
	}
	if src.DefenseRating != nil {
		rating.DefenseRating = *src.DefenseRating
	}
	return rating, nil
}

// labelFor buckets a capture time into the nearest snapshot label.
// Captures after kickoff still label as close; the no-lookahead guard in
// decision paths rejects them separately.
func labelFor(capturedAt, kickoff time.Time) models.SnapshotLabel {
	toKickoff := kickoff.Sub(capturedAt)
	switch {
	case toKickoff <= 15*time.Minute:
		return models.LabelClose
	case toKickoff <= 45*time.Minute:
		return models.LabelT30
	case toKickoff <= 120*time.Minute:
		return models.LabelT60
	default:
		return models.LabelOpen
	}
}

func normalizeStatus(status string) models.GameStatus {
	switch strings.ToLower(status) {
	case "final", "complete", "completed":
		return models.GameStatusFinal
	case "in_progress", "live":
		return models.GameStatusInProgress
	default:
		return models.GameStatusScheduled
	}
}
