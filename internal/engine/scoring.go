package engine

import (
	"math"

	"github.com/eqprep/assessment-engine/internal/models"
)

// ScoreResult is the single outcome of scoring one session.
type ScoreResult struct {
	Percentage     int     `json:"percentage"`
	EarnedPoints   float64 `json:"earned_points"`
	PossiblePoints int     `json:"possible_points"`
}

// Score walks every question of every section exactly once and produces the
// final result. Pure: same inputs, same output, no side effects.
//
// Every question weighs exactly 1 toward PossiblePoints regardless of how
// many key entries it carries, so no type dominates the total. Earned points
// follow the per-type rules; consensus-weighted keys are taken as authored
// (expected to sum to at most 1 per question), except ranked_sequence which
// is hard all-or-nothing.
func Score(sections []*models.Section, store *ResponseStore, keys *AnswerKeyIndex) ScoreResult {
	var earned float64
	var possible int

	for _, q := range FlattenQuestions(sections) {
		possible++

		value, answered := store.Get(q.ID)
		if !answered {
			continue
		}
		key, ok := keys.Lookup(q.ID)
		if !ok || key.Kind == KeyUnkeyed {
			continue
		}
		earned += scoreQuestion(value, key)
	}

	percentage := 0
	if possible > 0 {
		percentage = int(math.Round(100 * earned / float64(possible)))
	}

	return ScoreResult{
		Percentage:     percentage,
		EarnedPoints:   earned,
		PossiblePoints: possible,
	}
}

func scoreQuestion(value Value, key *QuestionKey) float64 {
	switch key.Kind {
	case KeySingleChoice:
		choice, ok := value.(ChoiceValue)
		if !ok {
			return 0
		}
		return key.OptionPoints[choice.OptionID]

	case KeyMatrixRating:
		matrix, ok := value.(MatrixValue)
		if !ok {
			return 0
		}
		// Each row is an independent observation; sum row credits.
		var sum float64
		for rowID, rating := range matrix.Ratings {
			if ratings, ok := key.RowPoints[rowID]; ok {
				sum += ratings[rating]
			}
		}
		return sum

	case KeyRankedSequence:
		order, ok := value.(OrderValue)
		if !ok {
			return 0
		}
		if sequencesEqual(order.Order, key.CorrectOrder) {
			return 1
		}
		return 0

	case KeyNumericScale:
		scale, ok := value.(ScaleValue)
		if !ok {
			return 0
		}
		if scale.Number == key.CorrectValue {
			return key.Points
		}
		return 0
	}
	return 0
}

func sequencesEqual(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
