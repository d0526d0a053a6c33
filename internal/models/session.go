package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Session is one user's single attempt at one test. Created at start, written
// exactly once more by the scoring pass at completion. Abandoned sessions stay
// in_progress; nothing in this service reaps them.
type Session struct {
	ID     uint          `json:"id" gorm:"primaryKey"`
	UserID string        `json:"user_id" gorm:"not null;size:255;index"`
	TestID uint          `json:"test_id" gorm:"not null;index"`
	Status SessionStatus `json:"status" gorm:"not null;default:in_progress;index"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at"`

	// Set by the scoring pass at completion.
	Score          *int     `json:"score"` // Percentage, 0-100
	EarnedPoints   *float64 `json:"earned_points"`
	PossiblePoints *int     `json:"possible_points"`

	// Pre-sectioned tests stored their full question/response view as one
	// denormalized blob. Only the legacy review adapter reads this.
	LegacySnapshot datatypes.JSON `json:"-" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
	Test Test `json:"test" gorm:"foreignKey:TestID"`
}

// Response is one persisted answer observation: one row per (session,
// question), or per (session, question, row option) for matrix_rating.
// Append-only. Re-answering a question inserts a fresh row; readers resolve
// duplicates in memory by keeping the newest row per key.
type Response struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	SessionID  uint   `json:"session_id" gorm:"not null;index"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	OptionID   *uint  `json:"option_id"`
	Value      string `json:"value" gorm:"size:2000"`

	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (Response) TableName() string {
	return "responses"
}
