package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/line-edge/internal/models"
)

// In-memory repository fakes shared by the service tests. All maps are
// mutex-guarded since the services may be exercised concurrently.

type fakeGameRepo struct {
	mu    sync.Mutex
	games map[uuid.UUID]*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: make(map[uuid.UUID]*models.Game)}
}

func (f *fakeGameRepo) Create(_ context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.games[game.ID]; exists {
		return models.ErrDuplicateKey
	}
	f.games[game.ID] = game
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[id]; ok {
		return g, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeGameRepo) ListFinalByRange(_ context.Context, start, end time.Time) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusFinal && !g.Kickoff.Before(start) && !g.Kickoff.After(end) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) ListScheduled(_ context.Context, until time.Time) ([]*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Game
	for _, g := range f.games {
		if g.Status == models.GameStatusScheduled && g.Kickoff.Before(until) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) Update(_ context.Context, game *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[game.ID]; !ok {
		return models.ErrNotFound
	}
	f.games[game.ID] = game
	return nil
}

type fakeLineRepo struct {
	mu        sync.Mutex
	snapshots map[string]*models.LineSnapshot
}

func newFakeLineRepo() *fakeLineRepo {
	return &fakeLineRepo{snapshots: make(map[string]*models.LineSnapshot)}
}

func snapshotKey(gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) string {
	return fmt.Sprintf("%s:%s:%s:%s", gameID, provider, market, label)
}

func (f *fakeLineRepo) Upsert(_ context.Context, s *models.LineSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshotKey(s.GameID, s.Provider, s.Market, s.Label)] = s
	return nil
}

func (f *fakeLineRepo) Get(_ context.Context, gameID uuid.UUID, provider string, market models.Market, label models.SnapshotLabel) (*models.LineSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.snapshots[snapshotKey(gameID, provider, market, label)]; ok {
		return s, nil
	}
	return nil, models.ErrMissingLine
}

func (f *fakeLineRepo) ListByGame(_ context.Context, gameID uuid.UUID) ([]*models.LineSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.LineSnapshot
	for _, s := range f.snapshots {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]*models.TeamRating
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[string]*models.TeamRating)}
}

func ratingKey(teamID uuid.UUID, season int) string {
	return fmt.Sprintf("%s:%d", teamID, season)
}

func (f *fakeRatingRepo) Upsert(_ context.Context, rating *models.TeamRating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[ratingKey(rating.TeamID, rating.Season)] = rating
	return nil
}

func (f *fakeRatingRepo) Get(_ context.Context, teamID uuid.UUID, season int) (*models.TeamRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.ratings[ratingKey(teamID, season)]; ok {
		return r, nil
	}
	return nil, models.ErrNotFound
}

type fakeEdgeRepo struct {
	mu    sync.Mutex
	edges map[string]*models.Edge
}

func newFakeEdgeRepo() *fakeEdgeRepo {
	return &fakeEdgeRepo{edges: make(map[string]*models.Edge)}
}

func (f *fakeEdgeRepo) Upsert(_ context.Context, e *models.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[fmt.Sprintf("%s:%s:%s", e.GameID, e.Market, e.Provider)] = e
	return nil
}

func (f *fakeEdgeRepo) GetByGame(_ context.Context, gameID uuid.UUID) ([]*models.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Edge
	for _, e := range f.edges {
		if e.GameID == gameID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeBetRepo struct {
	mu   sync.Mutex
	bets map[uuid.UUID]*models.BetRecord
}

func newFakeBetRepo() *fakeBetRepo {
	return &fakeBetRepo{bets: make(map[uuid.UUID]*models.BetRecord)}
}

func (f *fakeBetRepo) Create(_ context.Context, bet *models.BetRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.bets[bet.ID]; exists {
		return models.ErrDuplicateKey
	}
	copied := *bet
	f.bets[bet.ID] = &copied
	return nil
}

func (f *fakeBetRepo) GetByID(_ context.Context, id uuid.UUID) (*models.BetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bets[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeBetRepo) ListPending(_ context.Context) ([]*models.BetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BetRecord
	for _, b := range f.bets {
		if b.Outcome == nil {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBetRepo) ListGraded(_ context.Context, start, end time.Time) ([]*models.BetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.BetRecord
	for _, b := range f.bets {
		if b.GradedAt != nil && !b.GradedAt.Before(start) && !b.GradedAt.After(end) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBetRepo) UpdateOutcome(_ context.Context, id uuid.UUID, outcome models.Outcome, clv *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bets[id]
	if !ok {
		return models.ErrNotFound
	}
	if b.Outcome != nil {
		return models.ErrAlreadyGraded
	}
	now := time.Now().UTC()
	b.Outcome = &outcome
	b.CLVPoints = clv
	b.GradedAt = &now
	return nil
}

type fakeCLVRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.CLVRecord
}

func newFakeCLVRepo() *fakeCLVRepo {
	return &fakeCLVRepo{records: make(map[uuid.UUID]*models.CLVRecord)}
}

func (f *fakeCLVRepo) Upsert(_ context.Context, record *models.CLVRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.BetID] = record
	return nil
}

func (f *fakeCLVRepo) GetByBetID(_ context.Context, betID uuid.UUID) (*models.CLVRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[betID]; ok {
		return r, nil
	}
	return nil, models.ErrNotFound
}
