package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eqprep/assessment-engine/internal/cache"
	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
)

const graphCacheTTL = 10 * time.Minute

// testGraph is everything the engine needs from the content side, loaded once
// per test and cached. Read-only after normalization.
type testGraph struct {
	Test     *models.Test           `json:"test"`
	Sections []*models.Section      `json:"sections"`
	KeyRows  []*models.AnswerKeyRow `json:"key_rows"`
}

// graphLoader fetches the Test/Section/Question/Option/AnswerKey graph,
// consulting Redis before Postgres. Any persistence failure here is fatal to
// session start; the lenient swallow-and-continue rule only applies to writes
// after the session is running.
type graphLoader struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func newGraphLoader(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) *graphLoader {
	return &graphLoader{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func graphCacheKey(testID uint) string {
	return fmt.Sprintf("assessment-engine:test-graph:%d", testID)
}

func (l *graphLoader) Load(ctx context.Context, testID uint) (*testGraph, error) {
	key := graphCacheKey(testID)

	var cached testGraph
	err := l.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// A broken cache is not a broken load; fall through to Postgres.
		l.logger.Warn("Test graph cache read failed", "test_id", testID, "error", err)
	}

	test, err := l.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	sections, keyRows, err := l.repo.Test().GetGraph(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	graph := &testGraph{Test: test, Sections: sections, KeyRows: keyRows}

	if err := l.cache.Set(ctx, key, graph, graphCacheTTL); err != nil {
		l.logger.Warn("Test graph cache write failed", "test_id", testID, "error", err)
	}

	return graph, nil
}

// Invalidate drops a cached graph, for when authoring publishes a new
// version of the test.
func (l *graphLoader) Invalidate(ctx context.Context, testID uint) error {
	return l.cache.Delete(ctx, graphCacheKey(testID))
}
