package upload

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kapu/ikusa-server/internal/domain"
	"github.com/kapu/ikusa-server/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	uploads      map[string]*domain.Upload
	stats        map[string]*domain.GuildStats
	saveStatsErr error
	getCalls     int
	statsCalls   int
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		uploads: make(map[string]*domain.Upload),
		stats:   make(map[string]*domain.GuildStats),
	}
}

func (f *fakeStore) Create(_ context.Context, req domain.UploadRequest) (*domain.Upload, error) {
	f.nextID++
	id := string(rune('a' + f.nextID - 1))
	u := &domain.Upload{ID: id, Guild: req.Guild, Label: req.Label, UploadedAt: time.Now(), Players: req.Players, PlayerCount: len(req.Players)}
	f.uploads[id] = u
	return u, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*domain.Upload, error) {
	f.getCalls++
	u, ok := f.uploads[id]
	if !ok {
		return nil, errors.NewNotFoundError("upload", id)
	}
	return u, nil
}

func (f *fakeStore) List(_ context.Context, limit int) ([]*domain.Upload, error) {
	out := make([]*domain.Upload, 0, len(f.uploads))
	for _, u := range f.uploads {
		out = append(out, u)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) SaveStats(_ context.Context, id string, stats *domain.GuildStats) error {
	if f.saveStatsErr != nil {
		return f.saveStatsErr
	}
	f.stats[id] = stats
	return nil
}

func (f *fakeStore) GetStats(_ context.Context, id string) (*domain.GuildStats, error) {
	f.statsCalls++
	s, ok := f.stats[id]
	if !ok {
		return nil, errors.NewNotFoundError("upload stats", id)
	}
	return s, nil
}

type fakeStatsCache struct {
	entries map[string]*domain.GuildStats
}

func (f *fakeStatsCache) GetStats(_ context.Context, id string) (*domain.GuildStats, bool) {
	s, ok := f.entries[id]
	return s, ok
}

func (f *fakeStatsCache) SetStats(_ context.Context, id string, stats *domain.GuildStats) {
	f.entries[id] = stats
}

func sampleRoster() []domain.PlayerRecord {
	return []domain.PlayerRecord{
		{CharacterName: "Akame", MainClass: "Ninja", AP: 300, DP: 400},
		{CharacterName: "LagSwitch", MainClass: "Warrior", AP: 250, DP: 450},
	}
}

func TestServiceCreateComputesAndStoresStats(t *testing.T) {
	store := newFakeStore()
	cache := &fakeStatsCache{entries: map[string]*domain.GuildStats{}}
	svc := NewService(store, cache, zap.NewNop())

	upload, stats, err := svc.Create(context.Background(), domain.UploadRequest{Guild: "Ikusa", Players: sampleRoster()})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPlayers)
	assert.Equal(t, 1, stats.EligiblePlayers)
	assert.Equal(t, 700.0, stats.AverageGearscore)
	assert.Same(t, stats, store.stats[upload.ID])
	assert.Same(t, stats, cache.entries[upload.ID])
}

func TestServiceCreateToleratesStatsPersistFailure(t *testing.T) {
	store := newFakeStore()
	store.saveStatsErr = stderrors.New("disk full")
	svc := NewService(store, nil, zap.NewNop())

	_, stats, err := svc.Create(context.Background(), domain.UploadRequest{Guild: "Ikusa", Players: sampleRoster()})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EligiblePlayers)
}

func TestServiceStatsPrefersCache(t *testing.T) {
	store := newFakeStore()
	cached := &domain.GuildStats{Guild: "cached"}
	cache := &fakeStatsCache{entries: map[string]*domain.GuildStats{"x": cached}}
	svc := NewService(store, cache, zap.NewNop())

	stats, err := svc.Stats(context.Background(), "x")
	require.NoError(t, err)
	assert.Same(t, cached, stats)
	assert.Zero(t, store.statsCalls)
}

func TestServiceStatsRecomputesWhenSnapshotMissing(t *testing.T) {
	store := newFakeStore()
	store.uploads["u1"] = &domain.Upload{ID: "u1", Guild: "Ikusa", Players: sampleRoster()}
	svc := NewService(store, nil, zap.NewNop())

	stats, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ikusa", stats.Guild)
	assert.Equal(t, 1, stats.EligiblePlayers)
	assert.Contains(t, store.stats, "u1")
}

func TestServiceStatsUnknownUpload(t *testing.T) {
	svc := NewService(newFakeStore(), nil, zap.NewNop())

	_, err := svc.Stats(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestServiceCompare(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, zap.NewNop())
	ctx := context.Background()

	a, _, err := svc.Create(ctx, domain.UploadRequest{Guild: "A", Players: sampleRoster()})
	require.NoError(t, err)
	b, _, err := svc.Create(ctx, domain.UploadRequest{Guild: "B", Players: []domain.PlayerRecord{
		{CharacterName: "One", MainClass: "Ninja", AP: 320, DP: 400},
		{CharacterName: "Two", MainClass: "Ninja", AP: 300, DP: 400},
	}})
	require.NoError(t, err)

	cmp, err := svc.Compare(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp.EligibleDelta)
	assert.Equal(t, 10.0, cmp.AverageGearscoreDelta)
	assert.Equal(t, 1, cmp.ClassDeltas["ninja"])

	_, err = svc.Compare(ctx, a.ID, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "upload b")
}
