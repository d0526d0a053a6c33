package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/eqprep/assessment-engine/internal/models"
)

// EncodeResponse serializes an in-memory value into the persisted row shape:
// one row per question, except matrix_rating where every grid row is its own
// observation. The inverse lives in DecodeResponses.
func EncodeResponse(sessionID uint, q *models.Question, value Value) ([]models.Response, error) {
	switch v := value.(type) {
	case ChoiceValue:
		optionID := v.OptionID
		return []models.Response{{
			SessionID:  sessionID,
			QuestionID: q.ID,
			OptionID:   &optionID,
			Value:      optionToken(q, v.OptionID),
		}}, nil

	case MatrixValue:
		rows := make([]models.Response, 0, len(v.Ratings))
		// Deterministic row order keeps writes reproducible.
		rowIDs := make([]uint, 0, len(v.Ratings))
		for rowID := range v.Ratings {
			rowIDs = append(rowIDs, rowID)
		}
		sort.Slice(rowIDs, func(i, j int) bool { return rowIDs[i] < rowIDs[j] })
		for _, rowID := range rowIDs {
			id := rowID
			rows = append(rows, models.Response{
				SessionID:  sessionID,
				QuestionID: q.ID,
				OptionID:   &id,
				Value:      v.Ratings[rowID],
			})
		}
		return rows, nil

	case OrderValue:
		encoded, err := json.Marshal(v.Order)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ranked answer: %w", err)
		}
		return []models.Response{{
			SessionID:  sessionID,
			QuestionID: q.ID,
			Value:      string(encoded),
		}}, nil

	case ScaleValue:
		return []models.Response{{
			SessionID:  sessionID,
			QuestionID: q.ID,
			Value:      strconv.FormatFloat(v.Number, 'f', -1, 64),
		}}, nil
	}
	return nil, fmt.Errorf("%w: question %d", ErrValueTypeMismatch, q.ID)
}

// DecodeResponses replays persisted rows into a fresh store, branching on the
// owning question's type. Storage is append-only, so a re-visited question
// may have duplicate rows; rows are applied oldest-first and the store's
// overwrite-by-key semantics resolve them.
func DecodeResponses(sections []*models.Section, rows []*models.Response) (*ResponseStore, error) {
	questions := make(map[uint]*models.Question)
	for _, q := range FlattenQuestions(sections) {
		questions[q.ID] = q
	}

	ordered := make([]*models.Response, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	store := NewResponseStore()
	matrix := make(map[uint]map[uint]string)

	for _, row := range ordered {
		q, ok := questions[row.QuestionID]
		if !ok {
			// Rows for questions since removed from the test; skip rather
			// than fail the whole review.
			continue
		}

		switch q.Type {
		case models.SingleChoice:
			if row.OptionID != nil {
				store.Set(q.ID, ChoiceValue{OptionID: *row.OptionID})
			}

		case models.MatrixRating:
			if row.OptionID == nil {
				continue
			}
			if matrix[q.ID] == nil {
				matrix[q.ID] = make(map[uint]string)
			}
			matrix[q.ID][*row.OptionID] = row.Value

		case models.RankedSequence:
			var order []uint
			if err := json.Unmarshal([]byte(row.Value), &order); err != nil {
				return nil, fmt.Errorf("failed to decode ranked response for question %d: %w", q.ID, err)
			}
			store.Set(q.ID, OrderValue{Order: order})

		case models.NumericScale:
			number, err := strconv.ParseFloat(row.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to decode numeric response for question %d: %w", q.ID, err)
			}
			store.Set(q.ID, ScaleValue{Number: number})
		}
	}

	for questionID, ratings := range matrix {
		store.Set(questionID, MatrixValue{Ratings: ratings})
	}

	return store, nil
}

// optionToken resolves the semantic value token of the chosen option so the
// persisted row carries it alongside the id.
func optionToken(q *models.Question, optionID uint) string {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.Value
		}
	}
	return ""
}
