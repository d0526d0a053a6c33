package engine

import (
	"github.com/eqprep/assessment-engine/internal/models"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseActive
	PhaseCompleted
	PhaseReviewing
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	case PhaseReviewing:
		return "reviewing"
	}
	return "unknown"
}

// Position locates a question inside the section structure.
type Position struct {
	SectionIndex  int `json:"section_index"`
	QuestionIndex int `json:"question_index"`
}

// PersistFunc receives the question and its final in-memory value when the
// user advances past it. Called exactly once per advance; implementations
// must not block the caller.
type PersistFunc func(q *models.Question, value Value)

// CompleteFunc fires once, on the transition into PhaseCompleted.
type CompleteFunc func(result ScoreResult)

// Attempt drives one live or replayed session through the navigation state
// machine: Loading -> Active -> Completed -> Reviewing. Forward-only while
// Active; bidirectional and read-only while Reviewing. Not safe for
// concurrent use: a session is driven by a single user event stream.
type Attempt struct {
	sections  []*models.Section
	flat      []*models.Question
	positions []Position
	store     *ResponseStore
	keys      *AnswerKeyIndex

	phase     Phase
	cursor    int // flat index of the current question while Active
	reviewIdx int
	result    *ScoreResult

	onPersist  PersistFunc
	onComplete CompleteFunc
}

// NewAttempt builds an attempt over a normalized graph, starting in
// PhaseLoading. Call Begin to enter PhaseActive.
func NewAttempt(sections []*models.Section, keys *AnswerKeyIndex, onPersist PersistFunc, onComplete CompleteFunc) *Attempt {
	flat := FlattenQuestions(sections)
	positions := make([]Position, 0, len(flat))
	for si, section := range sections {
		for qi := range section.Questions {
			positions = append(positions, Position{SectionIndex: si, QuestionIndex: qi})
		}
	}
	return &Attempt{
		sections:   sections,
		flat:       flat,
		positions:  positions,
		store:      NewResponseStore(),
		keys:       keys,
		phase:      PhaseLoading,
		onPersist:  onPersist,
		onComplete: onComplete,
	}
}

// NewReview builds an attempt directly in PhaseReviewing over an already
// populated store, for re-opening a completed session. No scoring runs; the
// caller passes the score persisted at completion time.
func NewReview(sections []*models.Section, store *ResponseStore, result ScoreResult) *Attempt {
	a := NewAttempt(sections, nil, nil, nil)
	a.store = store
	a.result = &result
	a.phase = PhaseReviewing
	a.reviewIdx = 0
	return a
}

// Begin transitions Loading -> Active at the first question. A test with no
// questions completes immediately with a zero score.
func (a *Attempt) Begin() {
	if a.phase != PhaseLoading {
		return
	}
	if len(a.flat) == 0 {
		a.complete()
		return
	}
	a.phase = PhaseActive
	a.cursor = 0
}

func (a *Attempt) Phase() Phase {
	return a.phase
}

// Store exposes the working set, primarily for scoring and review equality
// checks.
func (a *Attempt) Store() *ResponseStore {
	return a.store
}

// CurrentQuestion returns the question the user is looking at, or nil when
// the attempt is not positioned on one.
func (a *Attempt) CurrentQuestion() *models.Question {
	switch a.phase {
	case PhaseActive:
		return a.flat[a.cursor]
	case PhaseReviewing:
		if len(a.flat) == 0 {
			return nil
		}
		return a.flat[a.reviewIdx]
	}
	return nil
}

// CurrentPosition reports the section/question indices of the current
// question.
func (a *Attempt) CurrentPosition() Position {
	switch a.phase {
	case PhaseActive:
		return a.positions[a.cursor]
	case PhaseReviewing:
		if len(a.positions) == 0 {
			return Position{}
		}
		return a.positions[a.reviewIdx]
	}
	return Position{}
}

// Answer records the user's current value for a question. Legal only while
// Active; review mode never writes.
func (a *Attempt) Answer(questionID uint, value Value) error {
	if a.phase != PhaseActive {
		return ErrSessionNotActive
	}
	q := a.question(questionID)
	if q == nil {
		return ErrUnknownQuestion
	}
	if !MatchesType(q, value) {
		return ErrValueTypeMismatch
	}
	a.store.Set(questionID, value)
	return nil
}

// Advance moves forward one question. While Active it is gated on the current
// question's completeness, persists that question's response through the
// fire-once hook, and on the last question runs scoring exactly once and
// transitions to Completed. While Reviewing it only moves the index.
func (a *Attempt) Advance() error {
	switch a.phase {
	case PhaseActive:
		current := a.flat[a.cursor]
		if !a.store.IsComplete(current) {
			return ErrAnswerIncomplete
		}
		if a.onPersist != nil {
			value, _ := a.store.Get(current.ID)
			a.onPersist(current, value)
		}
		if a.cursor == len(a.flat)-1 {
			a.complete()
			return nil
		}
		a.cursor++
		return nil

	case PhaseReviewing:
		if a.reviewIdx >= len(a.flat)-1 {
			return ErrAtLastQuestion
		}
		a.reviewIdx++
		return nil
	}
	return ErrSessionNotActive
}

// Retreat moves back one question. Only review mode allows it; a live attempt
// is forward-only.
func (a *Attempt) Retreat() error {
	switch a.phase {
	case PhaseActive:
		return ErrNoRetreatWhileLive
	case PhaseReviewing:
		if a.reviewIdx == 0 {
			return ErrAtFirstQuestion
		}
		a.reviewIdx--
		return nil
	}
	return ErrSessionNotActive
}

// Result is valid only once the attempt has completed (or was reconstructed
// from a completed session).
func (a *Attempt) Result() (ScoreResult, error) {
	if a.result == nil {
		return ScoreResult{}, ErrSessionNotCompleted
	}
	return *a.result, nil
}

// EnterReview transitions Completed -> Reviewing at the first question.
func (a *Attempt) EnterReview() error {
	if a.phase != PhaseCompleted {
		return ErrSessionNotCompleted
	}
	a.phase = PhaseReviewing
	a.reviewIdx = 0
	return nil
}

func (a *Attempt) complete() {
	result := Score(a.sections, a.store, a.keys)
	a.result = &result
	a.phase = PhaseCompleted
	if a.onComplete != nil {
		a.onComplete(result)
	}
}

func (a *Attempt) question(id uint) *models.Question {
	for _, q := range a.flat {
		if q.ID == id {
			return q
		}
	}
	return nil
}
