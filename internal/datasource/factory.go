package datasource

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/line-edge/internal/config"
)

// SourceType represents the type of feed source
type SourceType string

const (
	// OddsFeedSourceType is the primary JSON odds feed
	OddsFeedSourceType SourceType = "odds_feed"
)

// Factory creates FeedSource implementations based on configuration
type Factory struct {
	logger *log.Logger
	config *config.Config
}

// NewFactory creates a new feed source factory
func NewFactory(cfg *config.Config, logger *log.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewHTTPClient builds a rate-limited HTTP client from feed configuration
func (f *Factory) NewHTTPClient() *RateLimitedHTTPClient {
	httpCfg := DefaultHTTPClientConfig()
	if f.config != nil {
		if f.config.Feed.TimeoutSeconds > 0 {
			httpCfg.Timeout = time.Duration(f.config.Feed.TimeoutSeconds) * time.Second
		}
		if f.config.Feed.MaxRetries > 0 {
			httpCfg.MaxRetries = f.config.Feed.MaxRetries
		}
		if f.config.Feed.RateLimitPerSecond > 0 {
			httpCfg.RateLimit = f.config.Feed.RateLimitPerSecond
		}
	}
	return NewRateLimitedHTTPClient(httpCfg, f.logger)
}

// NewFeedSource creates a FeedSource for the given source type
func (f *Factory) NewFeedSource(sourceType SourceType, httpClient *RateLimitedHTTPClient) (FeedSource, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("HTTP client is required")
	}

	switch sourceType {
	case OddsFeedSourceType:
		if f.config.Feed.APIKey == "" {
			return nil, fmt.Errorf("odds feed API key is required")
		}
		return NewOddsFeedClient(httpClient, f.config.Feed.BaseURL, f.config.Feed.APIKey, true, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown feed source: %s", sourceType)
	}
}
