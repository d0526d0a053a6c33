package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eqprep/assessment-engine/internal/engine"
	"github.com/eqprep/assessment-engine/internal/legacy"
	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
)

// ReviewService re-opens completed sessions read-only. Reconstruction replays
// persisted responses into a fresh store; it never re-runs scoring — the
// score shown is the one written at completion.
type ReviewService interface {
	Reconstruct(ctx context.Context, sessionID uint) (*SessionView, error)
}

type reviewService struct {
	repo     repositories.Repository
	loader   *graphLoader
	registry *sessionRegistry
	logger   *slog.Logger
}

func NewReviewService(
	repo repositories.Repository,
	loader *graphLoader,
	registry *sessionRegistry,
	logger *slog.Logger,
) ReviewService {
	return &reviewService{
		repo:     repo,
		loader:   loader,
		registry: registry,
		logger:   logger,
	}
}

func (s *reviewService) Reconstruct(ctx context.Context, sessionID uint) (*SessionView, error) {
	s.logger.Info("Reconstructing session for review", "session_id", sessionID)

	// A session that completed in this process is still registered with its
	// full working set. Entering review on it directly avoids re-reading rows
	// the detached write queue may not have landed yet.
	if ls, ok := s.registry.get(sessionID); ok {
		switch ls.attempt.Phase() {
		case engine.PhaseCompleted:
			if err := ls.attempt.EnterReview(); err != nil {
				return nil, err
			}
			return buildSessionView(ls), nil
		case engine.PhaseReviewing:
			return buildSessionView(ls), nil
		}
		return nil, ErrSessionNotCompleted
	}

	session, sections, store, err := materializeSession(ctx, s.repo, s.loader, sessionID)
	if err != nil {
		return nil, err
	}

	attempt := engine.NewReview(sections, store, persistedResult(session))

	ls := &liveSession{session: session, sections: sections, attempt: attempt}
	s.registry.put(session.ID, ls)

	s.logger.Info("Session reconstructed",
		"session_id", sessionID,
		"questions", len(engine.FlattenQuestions(sections)),
		"answers", store.Len())

	return buildSessionView(ls), nil
}

// materializeSession fetches the session row, its content graph and its
// persisted responses, and rebuilds the in-memory working set. Legacy
// sessions (tests with no structured sections) go through the snapshot
// adapter instead of the primary path. Shared with the export service.
func materializeSession(ctx context.Context, repo repositories.Repository, loader *graphLoader, sessionID uint) (*models.Session, []*models.Section, *engine.ResponseStore, error) {
	session, err := repo.Session().GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil, ErrSessionNotFound
		}
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	if session.Status != models.SessionCompleted {
		return nil, nil, nil, ErrSessionNotCompleted
	}

	graph, err := loader.Load(ctx, session.TestID)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(graph.Sections) == 0 {
		sections, store, err := legacy.Reconstruct(session)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("legacy reconstruction failed: %w", err)
		}
		return session, sections, store, nil
	}

	if err := engine.NormalizeGraph(graph.Sections); err != nil {
		return nil, nil, nil, err
	}

	rows, err := repo.Response().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	store, err := engine.DecodeResponses(graph.Sections, rows)
	if err != nil {
		return nil, nil, nil, err
	}

	return session, graph.Sections, store, nil
}

// persistedResult reads the score the scoring pass wrote at completion time.
func persistedResult(session *models.Session) engine.ScoreResult {
	var result engine.ScoreResult
	if session.Score != nil {
		result.Percentage = *session.Score
	}
	if session.EarnedPoints != nil {
		result.EarnedPoints = *session.EarnedPoints
	}
	if session.PossiblePoints != nil {
		result.PossiblePoints = *session.PossiblePoints
	}
	return result
}
