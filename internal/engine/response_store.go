package engine

import (
	"github.com/eqprep/assessment-engine/internal/models"
)

// ResponseStore is the session's in-memory working set of answers, keyed by
// question id. Set overwrites: re-answering a question replaces the previous
// value here even though storage keeps every observation as its own row.
type ResponseStore struct {
	values map[uint]Value
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{values: make(map[uint]Value)}
}

// Set records the current answer for a question, replacing any prior value.
func (s *ResponseStore) Set(questionID uint, value Value) {
	s.values[questionID] = value
}

// Get returns the current value for a question, or (nil, false).
func (s *ResponseStore) Get(questionID uint) (Value, bool) {
	v, ok := s.values[questionID]
	return v, ok
}

// Len reports how many questions currently hold a value.
func (s *ResponseStore) Len() int {
	return len(s.values)
}

// IsComplete reports whether the stored value satisfies the question type's
// completeness rule. This is a shape check only; it gates forward navigation
// and says nothing about correctness.
func (s *ResponseStore) IsComplete(q *models.Question) bool {
	v, ok := s.values[q.ID]
	if !ok {
		return false
	}

	switch q.Type {
	case models.SingleChoice:
		choice, ok := v.(ChoiceValue)
		return ok && choice.OptionID != 0

	case models.MatrixRating:
		matrix, ok := v.(MatrixValue)
		if !ok {
			return false
		}
		// Full grid: every row needs a rating.
		for _, row := range q.Options {
			if rating, ok := matrix.Ratings[row.ID]; !ok || rating == "" {
				return false
			}
		}
		return true

	case models.RankedSequence:
		order, ok := v.(OrderValue)
		// The UI only produces permutations, so length equality is the
		// whole membership check.
		return ok && len(order.Order) == len(q.Options)

	case models.NumericScale:
		scale, ok := v.(ScaleValue)
		if !ok {
			return false
		}
		min, max := q.ScaleBounds()
		return scale.Number >= float64(min) && scale.Number <= float64(max)
	}
	return false
}

// MatchesType reports whether a value has the shape the question expects.
// Used at the answer() boundary so a mismatched payload fails loudly instead
// of silently never completing.
func MatchesType(q *models.Question, v Value) bool {
	switch q.Type {
	case models.SingleChoice:
		_, ok := v.(ChoiceValue)
		return ok
	case models.MatrixRating:
		_, ok := v.(MatrixValue)
		return ok
	case models.RankedSequence:
		_, ok := v.(OrderValue)
		return ok
	case models.NumericScale:
		_, ok := v.(ScaleValue)
		return ok
	}
	return false
}
