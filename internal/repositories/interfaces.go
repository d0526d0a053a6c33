package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/eqprep/assessment-engine/internal/models"
	"gorm.io/gorm"
)

// Repository bundles the per-aggregate repositories behind one handle so
// services take a single dependency.
type Repository interface {
	Test() TestRepository
	Session() SessionRepository
	Response() ResponseRepository
	User() UserRepository
}

// TestRepository reads the authored content graph. This service never writes
// it; the authoring tool owns it.
type TestRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Test, error)

	// GetGraph loads the full Section/Question/Option tree for a test plus
	// every answer key row of its questions, in one shot at session start.
	GetGraph(ctx context.Context, testID uint) ([]*models.Section, []*models.AnswerKeyRow, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uint) (*models.Session, error)

	// Complete writes the one-and-only mutation a session receives after
	// creation: status, timestamps and final score.
	Complete(ctx context.Context, session *models.Session) error

	List(ctx context.Context, filters SessionFilters) ([]*models.Session, int64, error)
}

type ResponseRepository interface {
	// Insert appends response rows. Never updates: storage is an
	// append-only observation log.
	Insert(ctx context.Context, responses []models.Response) error

	ListBySession(ctx context.Context, sessionID uint) ([]*models.Response, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	Status    *models.SessionStatus `json:"status"`
	UserID    *string               `json:"user_id"`
	TestID    *uint                 `json:"test_id"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "completed_at", "score"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// IsNotFoundError reports whether a repository error means the row does not
// exist, as opposed to the store being unreachable.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
