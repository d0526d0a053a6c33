package events

import (
	"time"
)

// EventType labels the engine's asynchronous notifications. None of these are
// shown to the test taker mid-session; they exist so write failures and
// authoring problems are visible without blocking the attempt.
type EventType string

const (
	// Session lifecycle
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// Fire-and-forget persistence visibility
	EventResponseWriteFailed  EventType = "session.response_write_failed"
	EventCompletionSaveFailed EventType = "session.completion_save_failed"

	// Authoring-side warnings
	EventUnkeyedQuestions EventType = "content.unkeyed_questions"
)

// SessionEvent is the envelope every published event shares.
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID uint      `json:"session_id"`
	TestID    uint      `json:"test_id"`
	TestTitle string    `json:"test_title"`
	UserID    string    `json:"user_id"`
	StartedAt time.Time `json:"started_at"`
	TimeLimit *int      `json:"time_limit,omitempty"` // minutes
}

type SessionCompletedEvent struct {
	SessionID      uint      `json:"session_id"`
	TestID         uint      `json:"test_id"`
	UserID         string    `json:"user_id"`
	Score          int       `json:"score"`
	EarnedPoints   float64   `json:"earned_points"`
	PossiblePoints int       `json:"possible_points"`
	CompletedAt    time.Time `json:"completed_at"`
}

type ResponseWriteFailedEvent struct {
	SessionID  uint   `json:"session_id"`
	QuestionID uint   `json:"question_id"`
	Error      string `json:"error"`
}

type CompletionSaveFailedEvent struct {
	SessionID uint   `json:"session_id"`
	Error     string `json:"error"`
}

type UnkeyedQuestionsEvent struct {
	TestID      uint   `json:"test_id"`
	QuestionIDs []uint `json:"question_ids"`
}
