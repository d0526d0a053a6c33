package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eqprep/assessment-engine/internal/events"
	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"github.com/google/uuid"
)

const writeQueueDepth = 256

type jobKind int

const (
	jobInsertResponses jobKind = iota
	jobCompleteSession
)

type writeJob struct {
	kind       jobKind
	sessionID  uint
	questionID uint
	responses  []models.Response
	session    *models.Session
}

// WriteQueue detaches persistence from navigation: advance() hands its rows
// over and returns immediately. One delivery attempt per job, no retry;
// failures are logged, published on the events topic, and otherwise
// swallowed so the user keeps moving.
type WriteQueue struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger

	jobs chan writeJob
	wg   sync.WaitGroup
}

func NewWriteQueue(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) *WriteQueue {
	q := &WriteQueue{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		jobs:      make(chan writeJob, writeQueueDepth),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// EnqueueResponses schedules an append of response rows. Never blocks; a full
// queue is treated like a failed write.
func (q *WriteQueue) EnqueueResponses(sessionID, questionID uint, responses []models.Response) {
	q.enqueue(writeJob{
		kind:       jobInsertResponses,
		sessionID:  sessionID,
		questionID: questionID,
		responses:  responses,
	})
}

// EnqueueCompletion schedules the final session update.
func (q *WriteQueue) EnqueueCompletion(session *models.Session) {
	q.enqueue(writeJob{
		kind:      jobCompleteSession,
		sessionID: session.ID,
		session:   session,
	})
}

func (q *WriteQueue) enqueue(job writeJob) {
	select {
	case q.jobs <- job:
	default:
		q.reportFailure(job, fmt.Errorf("write queue full (depth %d)", writeQueueDepth))
	}
}

// Close drains outstanding jobs and stops the worker.
func (q *WriteQueue) Close() {
	close(q.jobs)
	q.wg.Wait()
}

func (q *WriteQueue) run() {
	defer q.wg.Done()
	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var err error
		switch job.kind {
		case jobInsertResponses:
			err = q.repo.Response().Insert(ctx, job.responses)
		case jobCompleteSession:
			err = q.repo.Session().Complete(ctx, job.session)
		}
		cancel()

		if err != nil {
			q.reportFailure(job, err)
		}
	}
}

func (q *WriteQueue) reportFailure(job writeJob, err error) {
	switch job.kind {
	case jobInsertResponses:
		q.logger.Error("Failed to persist response",
			"session_id", job.sessionID,
			"question_id", job.questionID,
			"error", err)
		q.publish(events.EventResponseWriteFailed, &events.ResponseWriteFailedEvent{
			SessionID:  job.sessionID,
			QuestionID: job.questionID,
			Error:      err.Error(),
		})
	case jobCompleteSession:
		q.logger.Error("Failed to persist session completion",
			"session_id", job.sessionID,
			"error", err)
		q.publish(events.EventCompletionSaveFailed, &events.CompletionSaveFailedEvent{
			SessionID: job.sessionID,
			Error:     err.Error(),
		})
	}
}

func (q *WriteQueue) publish(eventType events.EventType, data interface{}) {
	event := &events.SessionEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "assessment-engine",
		Version:   "1.0",
		Data:      data,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.publisher.PublishSessionEvent(ctx, event); err != nil {
		q.logger.Error("Failed to publish write failure event", "error", err)
	}
}
