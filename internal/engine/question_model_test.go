package engine

import (
	"testing"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestNormalizeGraph_SortsByPosition(t *testing.T) {
	sections := []*models.Section{
		{
			ID:       2,
			Position: 1,
			Questions: []models.Question{
				{ID: 3, Position: 0, Type: models.NumericScale},
			},
		},
		{
			ID:       1,
			Position: 0,
			Questions: []models.Question{
				{
					ID:       2,
					Position: 1,
					Type:     models.SingleChoice,
					Options: []models.Option{
						{ID: 22, Position: 1},
						{ID: 21, Position: 0},
					},
				},
				{
					ID:       1,
					Position: 0,
					Type:     models.SingleChoice,
					Options:  []models.Option{{ID: 11, Position: 0}},
				},
			},
		},
	}

	require.NoError(t, NormalizeGraph(sections))

	assert.Equal(t, uint(1), sections[0].ID)
	assert.Equal(t, uint(2), sections[1].ID)
	assert.Equal(t, uint(1), sections[0].Questions[0].ID)
	assert.Equal(t, uint(2), sections[0].Questions[1].ID)
	assert.Equal(t, uint(21), sections[0].Questions[1].Options[0].ID)

	flat := FlattenQuestions(sections)
	require.Len(t, flat, 3)
	assert.Equal(t, uint(1), flat[0].ID)
	assert.Equal(t, uint(2), flat[1].ID)
	assert.Equal(t, uint(3), flat[2].ID)
}

func TestNormalizeGraph_RejectsMalformedQuestions(t *testing.T) {
	tests := []struct {
		name string
		q    models.Question
	}{
		{
			name: "unknown type",
			q:    models.Question{ID: 1, Type: "essay"},
		},
		{
			name: "single choice without options",
			q:    models.Question{ID: 1, Type: models.SingleChoice},
		},
		{
			name: "matrix without rows",
			q:    models.Question{ID: 1, Type: models.MatrixRating},
		},
		{
			name: "ranked without items",
			q:    models.Question{ID: 1, Type: models.RankedSequence},
		},
		{
			name: "ranked with unparseable order",
			q: models.Question{
				ID:           1,
				Type:         models.RankedSequence,
				CorrectOrder: datatypes.JSON([]byte(`"oops"`)),
				Options:      []models.Option{{ID: 11}},
			},
		},
		{
			name: "inverted scale bounds",
			q: models.Question{
				ID:       1,
				Type:     models.NumericScale,
				ScaleMin: intPtr(5),
				ScaleMax: intPtr(1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sections := []*models.Section{{ID: 1, Questions: []models.Question{tt.q}}}
			err := NormalizeGraph(sections)
			require.Error(t, err)
			assert.True(t, IsMalformedQuestion(err))
		})
	}
}

func TestNormalizeGraph_NumericDefaultsAreValid(t *testing.T) {
	sections := []*models.Section{
		{
			ID: 1,
			Questions: []models.Question{
				{ID: 1, Type: models.NumericScale},
			},
		},
	}
	assert.NoError(t, NormalizeGraph(sections))

	min, max := sections[0].Questions[0].ScaleBounds()
	assert.Equal(t, models.DefaultScaleMin, min)
	assert.Equal(t, models.DefaultScaleMax, max)
}

func TestDecodeCorrectOrder(t *testing.T) {
	q := &models.Question{CorrectOrder: datatypes.JSON([]byte(`[5,3,9]`))}
	order, err := DecodeCorrectOrder(q)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 3, 9}, order)

	empty := &models.Question{}
	order, err = DecodeCorrectOrder(empty)
	require.NoError(t, err)
	assert.Nil(t, order)

	bad := &models.Question{CorrectOrder: datatypes.JSON([]byte(`not json`))}
	_, err = DecodeCorrectOrder(bad)
	assert.Error(t, err)
}
