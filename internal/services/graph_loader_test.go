package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/eqprep/assessment-engine/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryCache is a map-backed CacheService with the same miss semantics as
// the Redis implementation.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = payload
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func TestGraphLoader_CachesAfterFirstLoad(t *testing.T) {
	repo := newMockRepository()
	loader := newGraphLoader(repo, newMemoryCache(), testLogger())

	sections, keyRows := fixtureGraph()
	repo.testRepo.On("GetByID", mock.Anything, uint(5)).Return(fixtureTest(), nil).Once()
	repo.testRepo.On("GetGraph", mock.Anything, uint(5)).Return(sections, keyRows, nil).Once()

	ctx := context.Background()
	first, err := loader.Load(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "EQ Fundamentals", first.Test.Title)
	assert.Len(t, first.Sections, 2)
	assert.Len(t, first.KeyRows, 4)

	// Second load is served from the cache; the Once() expectations above
	// fail the test if Postgres is hit again.
	second, err := loader.Load(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, first.Test.ID, second.Test.ID)
	assert.Len(t, second.Sections, 2)

	repo.testRepo.AssertExpectations(t)
}

func TestGraphLoader_InvalidateForcesReload(t *testing.T) {
	repo := newMockRepository()
	loader := newGraphLoader(repo, newMemoryCache(), testLogger())

	sections, keyRows := fixtureGraph()
	repo.testRepo.On("GetByID", mock.Anything, uint(5)).Return(fixtureTest(), nil).Twice()
	repo.testRepo.On("GetGraph", mock.Anything, uint(5)).Return(sections, keyRows, nil).Twice()

	ctx := context.Background()
	_, err := loader.Load(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, loader.Invalidate(ctx, 5))

	_, err = loader.Load(ctx, 5)
	require.NoError(t, err)

	repo.testRepo.AssertExpectations(t)
}

func TestGraphLoader_NoopCacheAlwaysMisses(t *testing.T) {
	repo := newMockRepository()
	loader := newGraphLoader(repo, cache.NoopCache{}, testLogger())

	sections, keyRows := fixtureGraph()
	repo.testRepo.On("GetByID", mock.Anything, uint(5)).Return(fixtureTest(), nil).Twice()
	repo.testRepo.On("GetGraph", mock.Anything, uint(5)).Return(sections, keyRows, nil).Twice()

	ctx := context.Background()
	_, err := loader.Load(ctx, 5)
	require.NoError(t, err)
	_, err = loader.Load(ctx, 5)
	require.NoError(t, err)

	repo.testRepo.AssertExpectations(t)
}
