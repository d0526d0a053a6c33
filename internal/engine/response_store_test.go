package engine

import (
	"testing"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestResponseStore_SetOverwrites(t *testing.T) {
	store := NewResponseStore()

	store.Set(1, ChoiceValue{OptionID: 11})
	store.Set(1, ChoiceValue{OptionID: 12})

	v, ok := store.Get(1)
	assert.True(t, ok)
	assert.Equal(t, ChoiceValue{OptionID: 12}, v)
	assert.Equal(t, 1, store.Len())
}

func TestResponseStore_GetMissing(t *testing.T) {
	store := NewResponseStore()

	v, ok := store.Get(42)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestResponseStore_IsComplete_SingleChoice(t *testing.T) {
	q := &models.Question{
		ID:   1,
		Type: models.SingleChoice,
		Options: []models.Option{
			{ID: 11}, {ID: 12},
		},
	}

	store := NewResponseStore()
	assert.False(t, store.IsComplete(q), "unanswered")

	store.Set(1, ChoiceValue{OptionID: 0})
	assert.False(t, store.IsComplete(q), "zero option id")

	store.Set(1, ChoiceValue{OptionID: 11})
	assert.True(t, store.IsComplete(q))
}

func TestResponseStore_IsComplete_MatrixNeedsEveryRow(t *testing.T) {
	q := &models.Question{
		ID:   2,
		Type: models.MatrixRating,
		Options: []models.Option{
			{ID: 21}, {ID: 22}, {ID: 23},
		},
	}

	tests := []struct {
		name     string
		ratings  map[uint]string
		complete bool
	}{
		{"no rows", map[uint]string{}, false},
		{"two of three", map[uint]string{21: "5", 22: "3"}, false},
		{"empty rating", map[uint]string{21: "5", 22: "3", 23: ""}, false},
		{"all three", map[uint]string{21: "5", 22: "3", 23: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewResponseStore()
			store.Set(2, MatrixValue{Ratings: tt.ratings})
			assert.Equal(t, tt.complete, store.IsComplete(q))
		})
	}
}

func TestResponseStore_IsComplete_RankedNeedsFullPermutation(t *testing.T) {
	q := &models.Question{
		ID:   3,
		Type: models.RankedSequence,
		Options: []models.Option{
			{ID: 31}, {ID: 32}, {ID: 33},
		},
	}

	store := NewResponseStore()
	store.Set(3, OrderValue{Order: []uint{31, 32}})
	assert.False(t, store.IsComplete(q))

	store.Set(3, OrderValue{Order: []uint{33, 31, 32}})
	assert.True(t, store.IsComplete(q))
}

func TestResponseStore_IsComplete_NumericBounds(t *testing.T) {
	tests := []struct {
		name     string
		q        *models.Question
		number   float64
		complete bool
	}{
		{
			name:     "within explicit bounds",
			q:        &models.Question{ID: 4, Type: models.NumericScale, ScaleMin: intPtr(1), ScaleMax: intPtr(10)},
			number:   10,
			complete: true,
		},
		{
			name:     "above explicit bounds",
			q:        &models.Question{ID: 4, Type: models.NumericScale, ScaleMin: intPtr(1), ScaleMax: intPtr(10)},
			number:   11,
			complete: false,
		},
		{
			name:     "default bounds accept 1..5",
			q:        &models.Question{ID: 4, Type: models.NumericScale},
			number:   5,
			complete: true,
		},
		{
			name:     "default bounds reject 6",
			q:        &models.Question{ID: 4, Type: models.NumericScale},
			number:   6,
			complete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewResponseStore()
			store.Set(tt.q.ID, ScaleValue{Number: tt.number})
			assert.Equal(t, tt.complete, store.IsComplete(tt.q))
		})
	}
}

func TestResponseStore_IsComplete_WrongShape(t *testing.T) {
	q := &models.Question{ID: 5, Type: models.SingleChoice, Options: []models.Option{{ID: 51}}}

	store := NewResponseStore()
	store.Set(5, ScaleValue{Number: 3})
	assert.False(t, store.IsComplete(q))
}

func TestMatchesType(t *testing.T) {
	tests := []struct {
		name    string
		qType   models.QuestionType
		value   Value
		matches bool
	}{
		{"choice ok", models.SingleChoice, ChoiceValue{OptionID: 1}, true},
		{"choice vs scale", models.SingleChoice, ScaleValue{Number: 1}, false},
		{"matrix ok", models.MatrixRating, MatrixValue{}, true},
		{"matrix vs order", models.MatrixRating, OrderValue{}, false},
		{"ranked ok", models.RankedSequence, OrderValue{}, true},
		{"numeric ok", models.NumericScale, ScaleValue{}, true},
		{"numeric vs choice", models.NumericScale, ChoiceValue{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &models.Question{ID: 1, Type: tt.qType}
			assert.Equal(t, tt.matches, MatchesType(q, tt.value))
		})
	}
}
