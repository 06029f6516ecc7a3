package projector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/line-edge/internal/models"
)

type fakeRatingRepo struct {
	ratings map[string]*models.TeamRating
	gets    int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*models.TeamRating)}
}

func (f *fakeRatingRepo) key(teamID uuid.UUID, season int) string {
	return fmt.Sprintf("%s:%d", teamID, season)
}

func (f *fakeRatingRepo) Upsert(_ context.Context, rating *models.TeamRating) error {
	f.ratings[f.key(rating.TeamID, rating.Season)] = rating
	return nil
}

func (f *fakeRatingRepo) Get(_ context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	f.gets++
	if r, ok := f.ratings[f.key(teamID, season)]; ok {
		return r, nil
	}
	return nil, models.ErrNotFound
}

func storedRating(teamID uuid.UUID, season int, power float64) *models.TeamRating {
	return &models.TeamRating{
		TeamID:      teamID,
		Season:      season,
		PowerRating: power,
		UpdatedAt:   time.Now().UTC(),
	}
}

func TestRatingLookupCurrentSeason(t *testing.T) {
	repo := newFakeRatingRepo()
	teamID := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), storedRating(teamID, 2024, 1580)))

	lookup := NewRatingLookup(repo, time.Minute)

	rating, err := lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, rating.Season)
	assert.InDelta(t, 1580.0, rating.PowerRating, 1e-9)
}

func TestRatingLookupPriorSeasonFallback(t *testing.T) {
	repo := newFakeRatingRepo()
	teamID := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), storedRating(teamID, 2023, 1470)))

	lookup := NewRatingLookup(repo, time.Minute)

	rating, err := lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2023, rating.Season)
}

func TestRatingLookupMissingBothSeasons(t *testing.T) {
	lookup := NewRatingLookup(newFakeRatingRepo(), time.Minute)

	_, err := lookup.Get(context.Background(), uuid.New(), 2024)
	assert.ErrorIs(t, err, models.ErrMissingRating)
}

func TestRatingLookupCachesHits(t *testing.T) {
	repo := newFakeRatingRepo()
	teamID := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), storedRating(teamID, 2024, 1510)))

	lookup := NewRatingLookup(repo, time.Minute)

	_, err := lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)
	_, err = lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets)
}

func TestRatingLookupInvalidateForcesRefetch(t *testing.T) {
	repo := newFakeRatingRepo()
	teamID := uuid.New()
	require.NoError(t, repo.Upsert(context.Background(), storedRating(teamID, 2024, 1510)))

	lookup := NewRatingLookup(repo, time.Minute)

	_, err := lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(context.Background(), storedRating(teamID, 2024, 1560)))
	lookup.Invalidate(teamID, 2024)

	rating, err := lookup.Get(context.Background(), teamID, 2024)
	require.NoError(t, err)
	assert.InDelta(t, 1560.0, rating.PowerRating, 1e-9)
	assert.Equal(t, 2, repo.gets)
}
