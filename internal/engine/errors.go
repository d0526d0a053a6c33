package engine

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotActive    = errors.New("session is not active")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrNotReviewing        = errors.New("session is not in review mode")
	ErrAnswerIncomplete    = errors.New("current question is not completely answered")
	ErrNoRetreatWhileLive  = errors.New("cannot move backward during a live attempt")
	ErrAtFirstQuestion     = errors.New("already at the first question")
	ErrAtLastQuestion      = errors.New("already at the last question")
	ErrUnknownQuestion     = errors.New("question does not belong to this session")
	ErrValueTypeMismatch   = errors.New("answer value does not match question type")
)

// MalformedQuestionError aborts session start: the persisted question graph
// violates the schema (unknown type tag, choice question without options, ...).
type MalformedQuestionError struct {
	QuestionID uint   `json:"question_id"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
}

func (e *MalformedQuestionError) Error() string {
	return fmt.Sprintf("malformed question %d (%s): %s", e.QuestionID, e.Type, e.Reason)
}

func NewMalformedQuestionError(questionID uint, qType, reason string) *MalformedQuestionError {
	return &MalformedQuestionError{
		QuestionID: questionID,
		Type:       qType,
		Reason:     reason,
	}
}

// IsMalformedQuestion reports whether err is a schema violation at load.
func IsMalformedQuestion(err error) bool {
	var mqe *MalformedQuestionError
	return errors.As(err, &mqe)
}
