package services

import (
	"errors"

	"github.com/eqprep/assessment-engine/internal/engine"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound = errors.New("test not found")
	ErrTestEmpty    = errors.New("test has no sections")

	// Session specific errors
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionNotLive          = errors.New("session is not loaded in this process")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrSessionNotCompleted     = errors.New("session is not completed")
	ErrSessionAccessDenied     = errors.New("access denied to session")

	// Persistence collaborator errors. Fatal at load; logged and swallowed
	// on per-question and completion writes.
	ErrPersistenceUnavailable = errors.New("persistence collaborator unavailable")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionNotLive) ||
		errors.Is(err, ErrUserNotFound)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionAlreadyCompleted) ||
		errors.Is(err, ErrSessionNotCompleted) ||
		errors.Is(err, engine.ErrSessionNotActive) ||
		errors.Is(err, engine.ErrSessionNotCompleted) ||
		errors.Is(err, engine.ErrAnswerIncomplete) ||
		errors.Is(err, engine.ErrNoRetreatWhileLive) ||
		errors.Is(err, engine.ErrAtFirstQuestion) ||
		errors.Is(err, engine.ErrAtLastQuestion)
}

// IsValidation checks if error represents a validation or schema failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, engine.ErrValueTypeMismatch) ||
		errors.Is(err, engine.ErrUnknownQuestion) ||
		engine.IsMalformedQuestion(err)
}

// IsUnavailable checks if error represents a persistence outage
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrPersistenceUnavailable)
}
