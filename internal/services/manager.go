package services

import (
	"context"
	"log/slog"

	"github.com/eqprep/assessment-engine/internal/cache"
	"github.com/eqprep/assessment-engine/internal/events"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"github.com/eqprep/assessment-engine/internal/utils"
)

// ServiceManager hands the handler layer its service dependencies.
type ServiceManager interface {
	Session() SessionService
	Review() ReviewService
	Export() ExportService

	// InvalidateTestGraph drops a cached content graph after authoring
	// publishes a new version.
	InvalidateTestGraph(ctx context.Context, testID uint) error

	// Close drains the write queue.
	Close()
}

type serviceManager struct {
	session SessionService
	review  ReviewService
	export  ExportService
	loader  *graphLoader
	queue   *WriteQueue
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) ServiceManager {
	loader := newGraphLoader(repo, cacheService, logger)
	registry := newSessionRegistry()
	queue := NewWriteQueue(repo, publisher, logger)

	return &serviceManager{
		session: NewSessionService(repo, loader, registry, queue, publisher, logger, validator),
		review:  NewReviewService(repo, loader, registry, logger),
		export:  NewExportService(repo, loader, logger),
		loader:  loader,
		queue:   queue,
	}
}

func (m *serviceManager) Session() SessionService {
	return m.session
}

func (m *serviceManager) Review() ReviewService {
	return m.review
}

func (m *serviceManager) Export() ExportService {
	return m.export
}

func (m *serviceManager) InvalidateTestGraph(ctx context.Context, testID uint) error {
	return m.loader.Invalidate(ctx, testID)
}

func (m *serviceManager) Close() {
	m.queue.Close()
}
