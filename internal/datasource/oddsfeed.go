package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// OddsFeedClient implements FeedSource for a JSON odds feed API
type OddsFeedClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// oddsFeedGame represents a game from the odds feed API
type oddsFeedGame struct {
	ID        string `json:"id"`
	Season    int    `json:"season"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	Kickoff   string `json:"kickoff"`
	Status    string `json:"status"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
}

// oddsFeedLine represents a line quote from the odds feed API
type oddsFeedLine struct {
	GameID     string  `json:"gameId"`
	Book       string  `json:"book"`
	Market     string  `json:"market"`
	Line       float64 `json:"line"`
	CapturedAt string  `json:"capturedAt"`
}

// oddsFeedRating represents a team rating entry from the odds feed API
type oddsFeedRating struct {
	TeamID    string   `json:"teamId"`
	TeamName  string   `json:"teamName"`
	Season    int      `json:"season"`
	Power     *float64 `json:"power"`
	Offense   *float64 `json:"offense"`
	Defense   *float64 `json:"defense"`
	UpdatedAt string   `json:"updatedAt"`
}

// NewOddsFeedClient creates a new odds feed API client
func NewOddsFeedClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *OddsFeedClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &OddsFeedClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchGames retrieves games scheduled within the specified date range
func (c *OddsFeedClient) FetchGames(ctx context.Context, startDate, endDate time.Time) ([]GameData, error) {
	if !c.enabled {
		return nil, NewFeedError("odds_feed", ErrCodeNetworkError, "feed source is disabled", nil)
	}

	url := fmt.Sprintf("%s/games?from=%s&to=%s", c.baseURL, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))

	var feedGames []oddsFeedGame
	if err := c.getJSON(ctx, url, &feedGames); err != nil {
		return nil, err
	}

	games := make([]GameData, 0, len(feedGames))
	for _, fg := range feedGames {
		kickoff, err := time.Parse(time.RFC3339, fg.Kickoff)
		if err != nil {
			c.logger.Printf("Failed to parse kickoff for game %s: %v", fg.ID, err)
			continue
		}
		games = append(games, GameData{
			SourceID:  fg.ID,
			Season:    fg.Season,
			HomeTeam:  fg.HomeTeam,
			AwayTeam:  fg.AwayTeam,
			Kickoff:   kickoff,
			Status:    fg.Status,
			HomeScore: fg.HomeScore,
			AwayScore: fg.AwayScore,
			CreatedAt: time.Now().UTC(),
		})
	}

	return games, nil
}

// FetchLines retrieves the current line snapshots for a game
func (c *OddsFeedClient) FetchLines(ctx context.Context, gameSourceID string) ([]LineData, error) {
	if !c.enabled {
		return nil, NewFeedError("odds_feed", ErrCodeNetworkError, "feed source is disabled", nil)
	}

	url := fmt.Sprintf("%s/games/%s/lines", c.baseURL, gameSourceID)

	var feedLines []oddsFeedLine
	if err := c.getJSON(ctx, url, &feedLines); err != nil {
		return nil, err
	}

	lines := make([]LineData, 0, len(feedLines))
	for _, fl := range feedLines {
		capturedAt, err := time.Parse(time.RFC3339, fl.CapturedAt)
		if err != nil {
			c.logger.Printf("Failed to parse capture time for game %s line: %v", fl.GameID, err)
			continue
		}
		lines = append(lines, LineData{
			GameSourceID: fl.GameID,
			Provider:     fl.Book,
			Market:       fl.Market,
			Line:         fl.Line,
			CapturedAt:   capturedAt,
		})
	}

	return lines, nil
}

// FetchRatings retrieves team power ratings for a season
func (c *OddsFeedClient) FetchRatings(ctx context.Context, season int) ([]RatingData, error) {
	if !c.enabled {
		return nil, NewFeedError("odds_feed", ErrCodeNetworkError, "feed source is disabled", nil)
	}

	url := fmt.Sprintf("%s/ratings?season=%d", c.baseURL, season)

	var feedRatings []oddsFeedRating
	if err := c.getJSON(ctx, url, &feedRatings); err != nil {
		return nil, err
	}

	ratings := make([]RatingData, 0, len(feedRatings))
	for _, fr := range feedRatings {
		updatedAt, err := time.Parse(time.RFC3339, fr.UpdatedAt)
		if err != nil {
			updatedAt = time.Now().UTC()
		}
		ratings = append(ratings, RatingData{
			TeamSourceID:  fr.TeamID,
			TeamName:      fr.TeamName,
			Season:        fr.Season,
			PowerRating:   fr.Power,
			OffenseRating: fr.Offense,
			DefenseRating: fr.Defense,
			UpdatedAt:     updatedAt,
		})
	}

	return ratings, nil
}

// Name returns the feed source name
func (c *OddsFeedClient) Name() string {
	return "odds_feed"
}

// IsEnabled returns whether this feed source is enabled
func (c *OddsFeedClient) IsEnabled() bool {
	return c.enabled
}

// getJSON executes an authenticated GET request and decodes the JSON response
func (c *OddsFeedClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewFeedError("odds_feed", ErrCodeNetworkError, "failed to create request", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewFeedError("odds_feed", ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewFeedError("odds_feed", ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewFeedError("odds_feed", ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return NewFeedError("odds_feed", ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewFeedError("odds_feed", ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewFeedError("odds_feed", ErrCodeInvalidData, "failed to parse response", err)
	}

	return nil
}
