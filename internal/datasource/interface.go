package datasource

import (
	"context"
	"errors"
	"time"
)

// FeedSource defines the interface for fetching games, lines and ratings
// from an external odds provider
type FeedSource interface {
	// FetchGames retrieves games scheduled within the specified date range
	FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error)

	// FetchLines retrieves the current line snapshots for a game
	FetchLines(ctx context.Context, gameSourceID string) ([]LineData, error)

	// FetchRatings retrieves team power ratings for a season
	FetchRatings(ctx context.Context, season int) ([]RatingData, error)

	// Name returns the name of the feed source
	Name() string

	// IsEnabled returns whether this feed source is currently enabled
	IsEnabled() bool
}

// GameData represents normalized game data from any feed source
type GameData struct {
	SourceID  string    `json:"source_id"` // Provider's unique game ID
	Season    int       `json:"season"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Kickoff   time.Time `json:"kickoff"` // Scheduled kickoff UTC
	Status    string    `json:"status"`
	HomeScore *int      `json:"home_score"`
	AwayScore *int      `json:"away_score"`
	CreatedAt time.Time `json:"created_at"` // When data was fetched
}

// LineData represents a normalized line quote from any feed source
type LineData struct {
	GameSourceID string    `json:"game_source_id"`
	Provider     string    `json:"provider"`
	Market       string    `json:"market"` // spread or total
	Line         float64   `json:"line"`   // home-perspective for spreads
	CapturedAt   time.Time `json:"captured_at"`
}

// RatingData represents normalized team rating data from any feed source
type RatingData struct {
	TeamSourceID  string    `json:"team_source_id"`
	TeamName      string    `json:"team_name"`
	Season        int       `json:"season"`
	PowerRating   *float64  `json:"power_rating"`
	OffenseRating *float64  `json:"offense_rating"`
	DefenseRating *float64  `json:"defense_rating"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FeedError represents errors from feed source operations
type FeedError struct {
	Source  string // Feed source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e FeedError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewFeedError creates a new feed source error
func NewFeedError(source, code, message string, err error) FeedError {
	return FeedError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
