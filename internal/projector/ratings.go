package projector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/line-edge/internal/models"
	"github.com/yourusername/line-edge/internal/repository"
)

// RatingLookup is a read-through cache over the team rating repository.
// It is an explicit object passed into callers, never a process-wide
// singleton, so separate backtest runs cannot leak state into each other.
type RatingLookup struct {
	repo  repository.TeamRatingRepository
	cache *cache.Cache
}

// NewRatingLookup creates a rating lookup with the given cache TTL
func NewRatingLookup(repo repository.TeamRatingRepository, ttl time.Duration) *RatingLookup {
	return &RatingLookup{
		repo:  repo,
		cache: cache.New(ttl, ttl*2),
	}
}

// Get retrieves the rating for (team, season), falling back to the prior
// season when the current one is absent. Returns models.ErrMissingRating
// when neither exists.
func (l *RatingLookup) Get(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	rating, err := l.getOne(ctx, teamID, season)
	if err == nil {
		return rating, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	rating, err = l.getOne(ctx, teamID, season-1)
	if err == nil {
		return rating, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	return nil, fmt.Errorf("team %s season %d: %w", teamID, season, models.ErrMissingRating)
}

func (l *RatingLookup) getOne(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	key := cacheKey(teamID, season)
	if cached, found := l.cache.Get(key); found {
		if rating, ok := cached.(*models.TeamRating); ok {
			return rating, nil
		}
	}

	rating, err := l.repo.Get(ctx, teamID, season)
	if err != nil {
		return nil, err
	}

	l.cache.Set(key, rating, cache.DefaultExpiration)
	return rating, nil
}

// Invalidate drops the cached entry for (team, season), e.g. after an
// ingestion upsert.
func (l *RatingLookup) Invalidate(teamID uuid.UUID, season int) {
	l.cache.Delete(cacheKey(teamID, season))
}

func cacheKey(teamID uuid.UUID, season int) string {
	return fmt.Sprintf("%s:%d", teamID, season)
}
