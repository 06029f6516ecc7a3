package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, nil)
}

func newTestFeed(serverURL string) *OddsFeedClient {
	return NewOddsFeedClient(newTestHTTPClient(), serverURL, "test-key", true, nil)
}

func TestFetchGames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2024-09-01", r.URL.Query().Get("from"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"g1","season":2024,"homeTeam":"BUF","awayTeam":"KC","kickoff":"2024-11-03T18:00:00Z","status":"scheduled"},
			{"id":"g2","season":2024,"homeTeam":"DAL","awayTeam":"PHI","kickoff":"not-a-time","status":"scheduled"}
		]`))
	}))
	defer server.Close()

	games, err := newTestFeed(server.URL).FetchGames(context.Background(),
		time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 9, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// The unparseable kickoff is dropped, not fatal.
	require.Len(t, games, 1)
	assert.Equal(t, "g1", games[0].SourceID)
	assert.Equal(t, "BUF", games[0].HomeTeam)
	assert.Equal(t, 2024, games[0].Season)
}

func TestFetchLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/g1/lines", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"gameId":"g1","book":"oddsfeed","market":"spread","line":-3.5,"capturedAt":"2024-11-03T17:00:00Z"},
			{"gameId":"g1","book":"oddsfeed","market":"total","line":47.5,"capturedAt":"2024-11-03T17:00:00Z"}
		]`))
	}))
	defer server.Close()

	lines, err := newTestFeed(server.URL).FetchLines(context.Background(), "g1")
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, "spread", lines[0].Market)
	assert.InDelta(t, -3.5, lines[0].Line, 1e-9)
	assert.Equal(t, "oddsfeed", lines[0].Provider)
}

func TestFetchRatings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ratings", r.URL.Path)
		assert.Equal(t, "2024", r.URL.Query().Get("season"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"teamId":"KC","teamName":"Kansas City","season":2024,"power":1612.5,"offense":28.1,"defense":19.4,"updatedAt":"2024-11-01T00:00:00Z"}
		]`))
	}))
	defer server.Close()

	ratings, err := newTestFeed(server.URL).FetchRatings(context.Background(), 2024)
	require.NoError(t, err)

	require.Len(t, ratings, 1)
	assert.Equal(t, "KC", ratings[0].TeamSourceID)
	require.NotNil(t, ratings[0].PowerRating)
	assert.InDelta(t, 1612.5, *ratings[0].PowerRating, 1e-9)
}

func TestFetchGamesAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestFeed(server.URL).FetchGames(context.Background(), time.Now(), time.Now())
	require.Error(t, err)

	feedErr, ok := err.(FeedError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeAuthenticationFailed, feedErr.Code)
}

func TestFetchGamesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFeed(server.URL).FetchGames(context.Background(), time.Now(), time.Now())
	require.Error(t, err)

	feedErr, ok := err.(FeedError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeNotFound, feedErr.Code)
}

func TestFetchGamesInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"`))
	}))
	defer server.Close()

	_, err := newTestFeed(server.URL).FetchGames(context.Background(), time.Now(), time.Now())
	require.Error(t, err)

	feedErr, ok := err.(FeedError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidData, feedErr.Code)
}

func TestDisabledFeedRejectsFetches(t *testing.T) {
	feed := NewOddsFeedClient(newTestHTTPClient(), "http://unused", "key", false, nil)

	assert.False(t, feed.IsEnabled())

	_, err := feed.FetchGames(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)

	_, err = feed.FetchLines(context.Background(), "g1")
	assert.Error(t, err)

	_, err = feed.FetchRatings(context.Background(), 2024)
	assert.Error(t, err)
}

func TestFeedName(t *testing.T) {
	assert.Equal(t, "odds_feed", newTestFeed("http://unused").Name())
}
