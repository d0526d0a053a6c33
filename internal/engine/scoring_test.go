package engine

import (
	"testing"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// emotionalGraph builds a two-section test covering all four question types,
// already in position order.
func emotionalGraph() []*models.Section {
	return []*models.Section{
		{
			ID:       1,
			Title:    "Reading emotions",
			Position: 0,
			Questions: []models.Question{
				{
					ID:       1,
					Type:     models.SingleChoice,
					Prompt:   "Your teammate goes quiet after feedback. What do you do?",
					Position: 0,
					Options: []models.Option{
						{ID: 11, Label: "Move on", Value: "a", Position: 0},
						{ID: 12, Label: "Check in privately", Value: "b", Position: 1},
						{ID: 13, Label: "Repeat the feedback", Value: "c", Position: 2},
					},
				},
				{
					ID:       2,
					Type:     models.MatrixRating,
					Prompt:   "Rate how often you notice these cues.",
					Position: 1,
					Options: []models.Option{
						{ID: 21, Label: "Tone shifts", Position: 0},
						{ID: 22, Label: "Body language", Position: 1},
					},
				},
			},
		},
		{
			ID:       2,
			Title:    "Responding under pressure",
			Position: 1,
			Questions: []models.Question{
				{
					ID:           3,
					Type:         models.RankedSequence,
					Prompt:       "Order the de-escalation steps.",
					Position:     0,
					CorrectOrder: datatypes.JSON([]byte(`[31,32,33]`)),
					Options: []models.Option{
						{ID: 31, Label: "Listen", Position: 0},
						{ID: 32, Label: "Acknowledge", Position: 1},
						{ID: 33, Label: "Respond", Position: 2},
					},
				},
				{
					ID:       4,
					Type:     models.NumericScale,
					Prompt:   "How many seconds do you pause before replying when angry?",
					Position: 1,
					ScaleMin: intPtr(1),
					ScaleMax: intPtr(10),
				},
			},
		},
	}
}

func emotionalKeyRows() []*models.AnswerKeyRow {
	return []*models.AnswerKeyRow{
		{ID: 1, QuestionID: 1, OptionID: uintPtr(12), Points: 1},
		{ID: 2, QuestionID: 2, OptionID: uintPtr(21), RatingValue: strPtr("5"), Points: 0.5},
		{ID: 3, QuestionID: 2, OptionID: uintPtr(22), RatingValue: strPtr("4"), Points: 0.5},
		{ID: 4, QuestionID: 4, CorrectValue: floatPtr(7), Points: 1},
	}
}

func buildKeys(t *testing.T, sections []*models.Section, rows []*models.AnswerKeyRow) *AnswerKeyIndex {
	t.Helper()
	keys, err := BuildAnswerKeyIndex(sections, rows)
	require.NoError(t, err)
	return keys
}

func TestScore_EveryQuestionWeighsOne(t *testing.T) {
	sections := emotionalGraph()
	keys := buildKeys(t, sections, emotionalKeyRows())

	result := Score(sections, NewResponseStore(), keys)

	// Four questions, four possible points, regardless of how many key rows
	// each one carries.
	assert.Equal(t, 4, result.PossiblePoints)
	assert.Equal(t, float64(0), result.EarnedPoints)
	assert.Equal(t, 0, result.Percentage)
}

func TestScore_PerfectRun(t *testing.T) {
	sections := emotionalGraph()
	keys := buildKeys(t, sections, emotionalKeyRows())

	store := NewResponseStore()
	store.Set(1, ChoiceValue{OptionID: 12})
	store.Set(2, MatrixValue{Ratings: map[uint]string{21: "5", 22: "4"}})
	store.Set(3, OrderValue{Order: []uint{31, 32, 33}})
	store.Set(4, ScaleValue{Number: 7})

	result := Score(sections, store, keys)

	assert.Equal(t, float64(4), result.EarnedPoints)
	assert.Equal(t, 4, result.PossiblePoints)
	assert.Equal(t, 100, result.Percentage)
}

func TestScore_Deterministic(t *testing.T) {
	sections := emotionalGraph()
	keys := buildKeys(t, sections, emotionalKeyRows())

	store := NewResponseStore()
	store.Set(1, ChoiceValue{OptionID: 12})
	store.Set(2, MatrixValue{Ratings: map[uint]string{21: "5", 22: "2"}})
	store.Set(3, OrderValue{Order: []uint{32, 31, 33}})
	store.Set(4, ScaleValue{Number: 3})

	first := Score(sections, store, keys)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(sections, store, keys))
	}
}

func TestScore_SingleChoicePlusNumeric(t *testing.T) {
	// One keyed single_choice answered correctly, one numeric answered wrong:
	// 1 earned of 2 possible, 50%.
	sections := []*models.Section{
		{
			ID: 1,
			Questions: []models.Question{
				{
					ID:   1,
					Type: models.SingleChoice,
					Options: []models.Option{
						{ID: 11, Value: "a"},
						{ID: 12, Value: "b"},
					},
				},
				{
					ID:       2,
					Type:     models.NumericScale,
					ScaleMin: intPtr(1),
					ScaleMax: intPtr(10),
				},
			},
		},
	}
	keys := buildKeys(t, sections, []*models.AnswerKeyRow{
		{QuestionID: 1, OptionID: uintPtr(11), Points: 1},
		{QuestionID: 2, CorrectValue: floatPtr(8), Points: 1},
	})

	store := NewResponseStore()
	store.Set(1, ChoiceValue{OptionID: 11})
	store.Set(2, ScaleValue{Number: 3})

	result := Score(sections, store, keys)

	assert.Equal(t, float64(1), result.EarnedPoints)
	assert.Equal(t, 2, result.PossiblePoints)
	assert.Equal(t, 50, result.Percentage)
}

func TestScore_MatrixSumsRowCredits(t *testing.T) {
	sections := []*models.Section{
		{
			ID: 1,
			Questions: []models.Question{
				{
					ID:   1,
					Type: models.MatrixRating,
					Options: []models.Option{
						{ID: 21, Position: 0},
						{ID: 22, Position: 1},
					},
				},
			},
		},
	}
	keys := buildKeys(t, sections, []*models.AnswerKeyRow{
		{QuestionID: 1, OptionID: uintPtr(21), RatingValue: strPtr("5"), Points: 1},
		{QuestionID: 1, OptionID: uintPtr(22), RatingValue: strPtr("3"), Points: 1},
	})

	// First row matches its keyed rating, second does not. Only the matching
	// row earns; the question still weighs 1 toward the possible total.
	store := NewResponseStore()
	store.Set(1, MatrixValue{Ratings: map[uint]string{21: "5", 22: "2"}})

	result := Score(sections, store, keys)

	assert.Equal(t, float64(1), result.EarnedPoints)
	assert.Equal(t, 1, result.PossiblePoints)
	assert.Equal(t, 100, result.Percentage)
}

func TestScore_RankedAllOrNothing(t *testing.T) {
	sections := emotionalGraph()
	keys := buildKeys(t, sections, emotionalKeyRows())

	tests := []struct {
		name   string
		order  []uint
		earned float64
	}{
		{"exact order", []uint{31, 32, 33}, 1},
		{"adjacent swap", []uint{32, 31, 33}, 0},
		{"reversed", []uint{33, 32, 31}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewResponseStore()
			store.Set(3, OrderValue{Order: tt.order})
			result := Score(sections, store, keys)
			assert.Equal(t, tt.earned, result.EarnedPoints)
		})
	}
}

func TestScore_NumericExactMatchOnly(t *testing.T) {
	sections := emotionalGraph()
	keys := buildKeys(t, sections, emotionalKeyRows())

	store := NewResponseStore()
	store.Set(4, ScaleValue{Number: 6.99})
	assert.Equal(t, float64(0), Score(sections, store, keys).EarnedPoints)

	store.Set(4, ScaleValue{Number: 7})
	assert.Equal(t, float64(1), Score(sections, store, keys).EarnedPoints)
}

func TestScore_UnkeyedQuestionsCountTowardPossible(t *testing.T) {
	sections := emotionalGraph()
	// No key rows at all: everything except the ranked question (keyed on the
	// question itself) is unkeyed.
	keys := buildKeys(t, sections, nil)

	store := NewResponseStore()
	store.Set(1, ChoiceValue{OptionID: 12})
	store.Set(2, MatrixValue{Ratings: map[uint]string{21: "5", 22: "4"}})
	store.Set(3, OrderValue{Order: []uint{31, 32, 33}})
	store.Set(4, ScaleValue{Number: 7})

	result := Score(sections, store, keys)

	assert.Equal(t, 4, result.PossiblePoints)
	assert.Equal(t, float64(1), result.EarnedPoints) // only the ranked question
	assert.Equal(t, 25, result.Percentage)
}

func TestScore_EmptyTest(t *testing.T) {
	keys := buildKeys(t, nil, nil)
	result := Score(nil, NewResponseStore(), keys)

	assert.Equal(t, 0, result.Percentage)
	assert.Equal(t, float64(0), result.EarnedPoints)
	assert.Equal(t, 0, result.PossiblePoints)
}

func TestScore_PercentageRounds(t *testing.T) {
	// 1 of 3 is 33.33..., which rounds to 33; 2 of 3 rounds to 67.
	sections := []*models.Section{
		{
			ID: 1,
			Questions: []models.Question{
				{ID: 1, Type: models.SingleChoice, Options: []models.Option{{ID: 11}}},
				{ID: 2, Type: models.SingleChoice, Options: []models.Option{{ID: 21}}},
				{ID: 3, Type: models.SingleChoice, Options: []models.Option{{ID: 31}}},
			},
		},
	}
	keys := buildKeys(t, sections, []*models.AnswerKeyRow{
		{QuestionID: 1, OptionID: uintPtr(11), Points: 1},
		{QuestionID: 2, OptionID: uintPtr(21), Points: 1},
		{QuestionID: 3, OptionID: uintPtr(31), Points: 1},
	})

	store := NewResponseStore()
	store.Set(1, ChoiceValue{OptionID: 11})
	assert.Equal(t, 33, Score(sections, store, keys).Percentage)

	store.Set(2, ChoiceValue{OptionID: 21})
	assert.Equal(t, 67, Score(sections, store, keys).Percentage)
}

func uintPtr(v uint) *uint        { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }
