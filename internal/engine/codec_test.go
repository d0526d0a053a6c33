package engine

import (
	"testing"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResponse_ChoiceCarriesOptionToken(t *testing.T) {
	q := &models.Question{
		ID:   1,
		Type: models.SingleChoice,
		Options: []models.Option{
			{ID: 11, Value: "a"},
			{ID: 12, Value: "b"},
		},
	}

	rows, err := EncodeResponse(7, q, ChoiceValue{OptionID: 12})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, uint(7), rows[0].SessionID)
	assert.Equal(t, uint(1), rows[0].QuestionID)
	require.NotNil(t, rows[0].OptionID)
	assert.Equal(t, uint(12), *rows[0].OptionID)
	assert.Equal(t, "b", rows[0].Value)
}

func TestEncodeResponse_MatrixOneRowPerRating(t *testing.T) {
	q := &models.Question{
		ID:      2,
		Type:    models.MatrixRating,
		Options: []models.Option{{ID: 21}, {ID: 22}},
	}

	rows, err := EncodeResponse(7, q, MatrixValue{Ratings: map[uint]string{22: "4", 21: "5"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Rows come out in ascending row-id order regardless of map iteration.
	assert.Equal(t, uint(21), *rows[0].OptionID)
	assert.Equal(t, "5", rows[0].Value)
	assert.Equal(t, uint(22), *rows[1].OptionID)
	assert.Equal(t, "4", rows[1].Value)
}

func TestEncodeResponse_RankedAndScale(t *testing.T) {
	ranked := &models.Question{ID: 3, Type: models.RankedSequence, Options: []models.Option{{ID: 31}, {ID: 32}}}
	rows, err := EncodeResponse(7, ranked, OrderValue{Order: []uint{32, 31}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].OptionID)
	assert.JSONEq(t, `[32,31]`, rows[0].Value)

	scale := &models.Question{ID: 4, Type: models.NumericScale}
	rows, err = EncodeResponse(7, scale, ScaleValue{Number: 7})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "7", rows[0].Value)
}

func TestDecodeResponses_RoundTrip(t *testing.T) {
	sections := emotionalGraph()
	require.NoError(t, NormalizeGraph(sections))
	flat := FlattenQuestions(sections)

	original := map[uint]Value{
		1: ChoiceValue{OptionID: 12},
		2: MatrixValue{Ratings: map[uint]string{21: "5", 22: "4"}},
		3: OrderValue{Order: []uint{33, 31, 32}},
		4: ScaleValue{Number: 7},
	}

	var rows []*models.Response
	nextID := uint(1)
	for _, q := range flat {
		encoded, err := EncodeResponse(7, q, original[q.ID])
		require.NoError(t, err)
		for i := range encoded {
			encoded[i].ID = nextID
			nextID++
			row := encoded[i]
			rows = append(rows, &row)
		}
	}

	store, err := DecodeResponses(sections, rows)
	require.NoError(t, err)
	require.Equal(t, len(original), store.Len())
	for id, want := range original {
		got, ok := store.Get(id)
		require.True(t, ok, "question %d", id)
		assert.Equal(t, want, got)
	}
}

func TestDecodeResponses_NewestRowWinsPerKey(t *testing.T) {
	sections := emotionalGraph()
	require.NoError(t, NormalizeGraph(sections))

	// Append-only storage: the same question answered twice leaves both rows.
	// Replay must keep the newest one per (question) and per (question, row).
	rows := []*models.Response{
		{ID: 1, SessionID: 7, QuestionID: 1, OptionID: uintPtr(11), Value: "a"},
		{ID: 4, SessionID: 7, QuestionID: 1, OptionID: uintPtr(12), Value: "b"},
		{ID: 2, SessionID: 7, QuestionID: 2, OptionID: uintPtr(21), Value: "3"},
		{ID: 3, SessionID: 7, QuestionID: 2, OptionID: uintPtr(22), Value: "4"},
		{ID: 5, SessionID: 7, QuestionID: 2, OptionID: uintPtr(21), Value: "5"},
	}

	store, err := DecodeResponses(sections, rows)
	require.NoError(t, err)

	choice, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, ChoiceValue{OptionID: 12}, choice)

	matrix, ok := store.Get(2)
	require.True(t, ok)
	assert.Equal(t, MatrixValue{Ratings: map[uint]string{21: "5", 22: "4"}}, matrix)
}

func TestDecodeResponses_UnorderedInputIsSorted(t *testing.T) {
	sections := emotionalGraph()
	require.NoError(t, NormalizeGraph(sections))

	// Same rows as the duplicate test, handed over newest-first.
	rows := []*models.Response{
		{ID: 4, QuestionID: 1, OptionID: uintPtr(12), Value: "b"},
		{ID: 1, QuestionID: 1, OptionID: uintPtr(11), Value: "a"},
	}

	store, err := DecodeResponses(sections, rows)
	require.NoError(t, err)

	choice, _ := store.Get(1)
	assert.Equal(t, ChoiceValue{OptionID: 12}, choice)
}

func TestDecodeResponses_SkipsRemovedQuestions(t *testing.T) {
	sections := emotionalGraph()
	require.NoError(t, NormalizeGraph(sections))

	rows := []*models.Response{
		{ID: 1, QuestionID: 999, OptionID: uintPtr(11), Value: "a"},
		{ID: 2, QuestionID: 1, OptionID: uintPtr(12), Value: "b"},
	}

	store, err := DecodeResponses(sections, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestDecodeResponses_CorruptRows(t *testing.T) {
	sections := emotionalGraph()
	require.NoError(t, NormalizeGraph(sections))

	_, err := DecodeResponses(sections, []*models.Response{
		{ID: 1, QuestionID: 3, Value: "not json"},
	})
	assert.Error(t, err)

	_, err = DecodeResponses(sections, []*models.Response{
		{ID: 1, QuestionID: 4, Value: "not a number"},
	})
	assert.Error(t, err)
}
