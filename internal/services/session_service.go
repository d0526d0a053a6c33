package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eqprep/assessment-engine/internal/engine"
	"github.com/eqprep/assessment-engine/internal/events"
	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"github.com/eqprep/assessment-engine/internal/utils"
	"github.com/google/uuid"
)

// SessionService drives live attempts: it owns the registry of in-process
// attempts and is the only writer of session state. All methods are meant to
// be called from the owning user's event stream; concurrent multi-tab use of
// one session is undefined behavior and not guarded against.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error)
	Answer(ctx context.Context, sessionID uint, req *AnswerRequest) error
	Advance(ctx context.Context, sessionID uint) (*SessionView, error)
	Retreat(ctx context.Context, sessionID uint) (*SessionView, error)
	Current(ctx context.Context, sessionID uint) (*SessionView, error)
	Result(ctx context.Context, sessionID uint) (*engine.ScoreResult, error)
	List(ctx context.Context, filters repositories.SessionFilters) ([]*models.Session, int64, error)
}

// ===== REQUEST / VIEW SHAPES =====

type StartSessionRequest struct {
	TestID uint   `json:"test_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

// AnswerRequest carries exactly one of the four value shapes; which one must
// match the question's type.
type AnswerRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	OptionID   *uint           `json:"option_id,omitempty"`
	Ratings    map[uint]string `json:"ratings,omitempty"`
	Order      []uint          `json:"order,omitempty"`
	Number     *float64        `json:"number,omitempty"`
}

func (r *AnswerRequest) toValue() (engine.Value, error) {
	switch {
	case r.OptionID != nil:
		return engine.ChoiceValue{OptionID: *r.OptionID}, nil
	case r.Ratings != nil:
		return engine.MatrixValue{Ratings: r.Ratings}, nil
	case r.Order != nil:
		return engine.OrderValue{Order: r.Order}, nil
	case r.Number != nil:
		return engine.ScaleValue{Number: *r.Number}, nil
	}
	return nil, fmt.Errorf("%w: answer carries no value", ErrBadRequest)
}

// OptionView is the taker-facing shape of an option.
type OptionView struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuestionView is the taker-facing shape of a question. The answer key
// (credited options, correct order, correct value) never appears here.
type QuestionView struct {
	ID                  uint                `json:"id"`
	Type                models.QuestionType `json:"type"`
	Prompt              string              `json:"prompt"`
	Scenario            *string             `json:"scenario,omitempty"`
	MediaURL            *string             `json:"media_url,omitempty"`
	Explanation         *string             `json:"explanation,omitempty"`
	ScaleMin            *int                `json:"scale_min,omitempty"`
	ScaleMax            *int                `json:"scale_max,omitempty"`
	SectionTitle        string              `json:"section_title"`
	SectionInstructions string              `json:"section_instructions"`
	Options             []OptionView        `json:"options"`
}

// SessionView is what the surrounding UI renders after any navigation call.
type SessionView struct {
	SessionID      uint                `json:"session_id"`
	Phase          string              `json:"phase"`
	Position       engine.Position     `json:"position"`
	QuestionCount  int                 `json:"question_count"`
	AnsweredCount  int                 `json:"answered_count"`
	Question       *QuestionView       `json:"question,omitempty"`
	Result         *engine.ScoreResult `json:"result,omitempty"`
	CurrentAnswer  engine.Value        `json:"current_answer,omitempty"`
}

// ===== SERVICE =====

type sessionService struct {
	repo      repositories.Repository
	loader    *graphLoader
	registry  *sessionRegistry
	queue     *WriteQueue
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSessionService(
	repo repositories.Repository,
	loader *graphLoader,
	registry *sessionRegistry,
	queue *WriteQueue,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		loader:    loader,
		registry:  registry,
		queue:     queue,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionView, error) {
	s.logger.Info("Starting assessment session",
		"test_id", req.TestID,
		"user_id", req.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	// Sessions attribute to a real account; an unknown user fails the start
	// before anything is loaded or persisted.
	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	graph, err := s.loader.Load(ctx, req.TestID)
	if err != nil {
		return nil, err
	}
	if len(graph.Sections) == 0 {
		return nil, ErrTestEmpty
	}

	// MalformedQuestion aborts the start; nothing is persisted yet.
	if err := engine.NormalizeGraph(graph.Sections); err != nil {
		return nil, err
	}

	keys, err := engine.BuildAnswerKeyIndex(graph.Sections, graph.KeyRows)
	if err != nil {
		return nil, err
	}

	if unkeyed := keys.UnkeyedQuestionIDs(); len(unkeyed) > 0 {
		// Authoring-side warning only; the taker never sees it and the
		// questions still count toward the denominator.
		s.logger.Warn("Test contains unkeyed questions",
			"test_id", req.TestID,
			"question_ids", unkeyed)
		s.publishEvent(events.EventUnkeyedQuestions, &events.UnkeyedQuestionsEvent{
			TestID:      req.TestID,
			QuestionIDs: unkeyed,
		})
	}

	session := &models.Session{
		UserID:    req.UserID,
		TestID:    req.TestID,
		Status:    models.SessionInProgress,
		StartedAt: time.Now(),
	}
	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}

	attempt := engine.NewAttempt(
		graph.Sections,
		keys,
		s.persistHook(session),
		s.completeHook(session, graph.Test),
	)
	attempt.Begin()

	ls := &liveSession{session: session, sections: graph.Sections, attempt: attempt}
	s.registry.put(session.ID, ls)

	s.publishEvent(events.EventSessionStarted, &events.SessionStartedEvent{
		SessionID: session.ID,
		TestID:    graph.Test.ID,
		TestTitle: graph.Test.Title,
		UserID:    req.UserID,
		StartedAt: session.StartedAt,
		TimeLimit: graph.Test.TimeLimit,
	})

	s.logger.Info("Assessment session started",
		"session_id", session.ID,
		"test_id", req.TestID,
		"user_id", req.UserID)

	return buildSessionView(ls), nil
}

// persistHook returns the fire-once side effect the navigator runs on each
// advance. It must not block: rows go onto the detached queue and the user
// keeps moving whether or not the write lands.
func (s *sessionService) persistHook(session *models.Session) engine.PersistFunc {
	return func(q *models.Question, value engine.Value) {
		rows, err := engine.EncodeResponse(session.ID, q, value)
		if err != nil {
			s.logger.Error("Failed to encode response",
				"session_id", session.ID,
				"question_id", q.ID,
				"error", err)
			return
		}
		s.queue.EnqueueResponses(session.ID, q.ID, rows)
	}
}

// completeHook fires exactly once, at the Active -> Completed transition.
// The session row update rides the same swallow-on-failure queue as response
// writes; the in-memory result stays authoritative for this process either
// way.
func (s *sessionService) completeHook(session *models.Session, test *models.Test) engine.CompleteFunc {
	return func(result engine.ScoreResult) {
		now := time.Now()
		score := result.Percentage
		earned := result.EarnedPoints
		possible := result.PossiblePoints

		session.Status = models.SessionCompleted
		session.CompletedAt = &now
		session.Score = &score
		session.EarnedPoints = &earned
		session.PossiblePoints = &possible

		s.queue.EnqueueCompletion(session)

		s.publishEvent(events.EventSessionCompleted, &events.SessionCompletedEvent{
			SessionID:      session.ID,
			TestID:         test.ID,
			UserID:         session.UserID,
			Score:          result.Percentage,
			EarnedPoints:   result.EarnedPoints,
			PossiblePoints: result.PossiblePoints,
			CompletedAt:    now,
		})

		s.logger.Info("Assessment session completed",
			"session_id", session.ID,
			"score", result.Percentage,
			"earned", result.EarnedPoints,
			"possible", result.PossiblePoints)
	}
}

func (s *sessionService) Answer(ctx context.Context, sessionID uint, req *AnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	ls, ok := s.registry.get(sessionID)
	if !ok {
		return ErrSessionNotLive
	}

	value, err := req.toValue()
	if err != nil {
		return err
	}

	return ls.attempt.Answer(req.QuestionID, value)
}

func (s *sessionService) Advance(ctx context.Context, sessionID uint) (*SessionView, error) {
	ls, ok := s.registry.get(sessionID)
	if !ok {
		return nil, ErrSessionNotLive
	}
	if err := ls.attempt.Advance(); err != nil {
		return nil, err
	}
	return buildSessionView(ls), nil
}

func (s *sessionService) Retreat(ctx context.Context, sessionID uint) (*SessionView, error) {
	ls, ok := s.registry.get(sessionID)
	if !ok {
		return nil, ErrSessionNotLive
	}
	if err := ls.attempt.Retreat(); err != nil {
		return nil, err
	}
	return buildSessionView(ls), nil
}

func (s *sessionService) Current(ctx context.Context, sessionID uint) (*SessionView, error) {
	ls, ok := s.registry.get(sessionID)
	if !ok {
		return nil, ErrSessionNotLive
	}
	return buildSessionView(ls), nil
}

func (s *sessionService) Result(ctx context.Context, sessionID uint) (*engine.ScoreResult, error) {
	ls, ok := s.registry.get(sessionID)
	if !ok {
		return nil, ErrSessionNotLive
	}
	result, err := ls.attempt.Result()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.Session, int64, error) {
	sessions, total, err := s.repo.Session().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPersistenceUnavailable, err)
	}
	return sessions, total, nil
}

func (s *sessionService) publishEvent(eventType events.EventType, data interface{}) {
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
	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", eventType,
			"error", err)
	}
}

// buildSessionView renders the attempt's current state for the UI layer.
func buildSessionView(ls *liveSession) *SessionView {
	attempt := ls.attempt
	view := &SessionView{
		SessionID:     ls.session.ID,
		Phase:         attempt.Phase().String(),
		Position:      attempt.CurrentPosition(),
		AnsweredCount: attempt.Store().Len(),
	}

	sections := ls.sections
	for _, section := range sections {
		view.QuestionCount += len(section.Questions)
	}

	if result, err := attempt.Result(); err == nil {
		view.Result = &result
	}

	if q := attempt.CurrentQuestion(); q != nil {
		view.Question = buildQuestionView(sections, attempt.CurrentPosition(), q)
		if value, ok := attempt.Store().Get(q.ID); ok {
			view.CurrentAnswer = value
		}
	}
	return view
}

func buildQuestionView(sections []*models.Section, pos engine.Position, q *models.Question) *QuestionView {
	qv := &QuestionView{
		ID:          q.ID,
		Type:        q.Type,
		Prompt:      q.Prompt,
		Scenario:    q.Scenario,
		MediaURL:    q.MediaURL,
		Explanation: q.Explanation,
		ScaleMin:    q.ScaleMin,
		ScaleMax:    q.ScaleMax,
	}
	if pos.SectionIndex < len(sections) {
		qv.SectionTitle = sections[pos.SectionIndex].Title
		qv.SectionInstructions = sections[pos.SectionIndex].Instructions
	}
	for _, opt := range q.Options {
		qv.Options = append(qv.Options, OptionView{
			ID:    opt.ID,
			Label: opt.Label,
			Value: opt.Value,
		})
	}
	return qv
}
