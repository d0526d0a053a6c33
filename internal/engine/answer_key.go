package engine

import (
	"github.com/eqprep/assessment-engine/internal/models"
)

type KeyKind int

const (
	// KeyUnkeyed marks a question with no correctness data at all. It still
	// counts toward possible points; it can never earn any.
	KeyUnkeyed KeyKind = iota
	KeySingleChoice
	KeyMatrixRating
	KeyRankedSequence
	KeyNumericScale
)

// QuestionKey is the scoring-ready form of one question's answer key. Exactly
// the fields for its Kind are populated.
type QuestionKey struct {
	Kind KeyKind

	// KeySingleChoice: credited option id -> points. Several non-zero
	// entries are legal (partial credit); all are honored.
	OptionPoints map[uint]float64

	// KeyMatrixRating: row option id -> rating value -> points.
	RowPoints map[uint]map[string]float64

	// KeyRankedSequence: the exact ordering worth full credit.
	CorrectOrder []uint

	// KeyNumericScale.
	CorrectValue float64
	Points       float64
}

// AnswerKeyIndex is the in-memory lookup the scoring pass reads. Every
// question of the test has an entry; unkeyed questions get an explicit
// KeyUnkeyed record so "no key" is distinguishable from "not answered".
type AnswerKeyIndex struct {
	keys map[uint]*QuestionKey
}

// BuildAnswerKeyIndex groups raw persisted key rows per question according to
// the question's type. Pure: it reads its inputs and touches nothing else.
// ranked_sequence keys live on the question itself, never in rows.
func BuildAnswerKeyIndex(sections []*models.Section, rows []*models.AnswerKeyRow) (*AnswerKeyIndex, error) {
	byQuestion := make(map[uint][]*models.AnswerKeyRow)
	for _, row := range rows {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], row)
	}

	index := &AnswerKeyIndex{keys: make(map[uint]*QuestionKey)}
	for _, q := range FlattenQuestions(sections) {
		key, err := buildQuestionKey(q, byQuestion[q.ID])
		if err != nil {
			return nil, err
		}
		index.keys[q.ID] = key
	}
	return index, nil
}

func buildQuestionKey(q *models.Question, rows []*models.AnswerKeyRow) (*QuestionKey, error) {
	switch q.Type {
	case models.SingleChoice:
		if len(rows) == 0 {
			return &QuestionKey{Kind: KeyUnkeyed}, nil
		}
		key := &QuestionKey{Kind: KeySingleChoice, OptionPoints: make(map[uint]float64)}
		for _, row := range rows {
			if row.OptionID == nil {
				continue
			}
			key.OptionPoints[*row.OptionID] = row.Points
		}
		if len(key.OptionPoints) == 0 {
			return &QuestionKey{Kind: KeyUnkeyed}, nil
		}
		return key, nil

	case models.MatrixRating:
		if len(rows) == 0 {
			return &QuestionKey{Kind: KeyUnkeyed}, nil
		}
		key := &QuestionKey{Kind: KeyMatrixRating, RowPoints: make(map[uint]map[string]float64)}
		for _, row := range rows {
			if row.OptionID == nil || row.RatingValue == nil {
				continue
			}
			if key.RowPoints[*row.OptionID] == nil {
				key.RowPoints[*row.OptionID] = make(map[string]float64)
			}
			key.RowPoints[*row.OptionID][*row.RatingValue] = row.Points
		}
		if len(key.RowPoints) == 0 {
			return &QuestionKey{Kind: KeyUnkeyed}, nil
		}
		return key, nil

	case models.RankedSequence:
		order, err := DecodeCorrectOrder(q)
		if err != nil {
			return nil, NewMalformedQuestionError(q.ID, string(q.Type), "correct_order is not a JSON id list")
		}
		if len(order) == 0 {
			return &QuestionKey{Kind: KeyUnkeyed}, nil
		}
		return &QuestionKey{Kind: KeyRankedSequence, CorrectOrder: order}, nil

	case models.NumericScale:
		for _, row := range rows {
			if row.CorrectValue != nil {
				return &QuestionKey{
					Kind:         KeyNumericScale,
					CorrectValue: *row.CorrectValue,
					Points:       row.Points,
				}, nil
			}
		}
		return &QuestionKey{Kind: KeyUnkeyed}, nil

	default:
		return nil, NewMalformedQuestionError(q.ID, string(q.Type), "unknown question type")
	}
}

// Lookup returns the key for a question. The second return is false only for
// question ids the index was never built for.
func (idx *AnswerKeyIndex) Lookup(questionID uint) (*QuestionKey, bool) {
	key, ok := idx.keys[questionID]
	return key, ok
}

// UnkeyedQuestionIDs lists questions that can never earn points. Surfaced to
// the authoring side as a warning, never to the test taker.
func (idx *AnswerKeyIndex) UnkeyedQuestionIDs() []uint {
	var ids []uint
	for id, key := range idx.keys {
		if key.Kind == KeyUnkeyed {
			ids = append(ids, id)
		}
	}
	return ids
}
