package engine

import (
	"encoding/json"
	"sort"

	"github.com/eqprep/assessment-engine/internal/models"
)

// NormalizeGraph orders a freshly loaded Test graph into its canonical shape
// and validates every question against the closed type set. Sections,
// questions and options are sorted by ordinal position in place. The graph is
// treated as read-only afterwards; nothing in the engine mutates it during a
// session.
func NormalizeGraph(sections []*models.Section) error {
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})

	for _, section := range sections {
		sort.Slice(section.Questions, func(i, j int) bool {
			return section.Questions[i].Position < section.Questions[j].Position
		})
		for i := range section.Questions {
			q := &section.Questions[i]
			sort.Slice(q.Options, func(a, b int) bool {
				return q.Options[a].Position < q.Options[b].Position
			})
			if err := validateQuestion(q); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateQuestion(q *models.Question) error {
	switch q.Type {
	case models.SingleChoice:
		if len(q.Options) == 0 {
			return NewMalformedQuestionError(q.ID, string(q.Type), "no options")
		}
	case models.MatrixRating:
		if len(q.Options) == 0 {
			return NewMalformedQuestionError(q.ID, string(q.Type), "no rating rows")
		}
	case models.RankedSequence:
		if len(q.Options) == 0 {
			return NewMalformedQuestionError(q.ID, string(q.Type), "no sequence items")
		}
		if len(q.CorrectOrder) > 0 {
			if _, err := DecodeCorrectOrder(q); err != nil {
				return NewMalformedQuestionError(q.ID, string(q.Type), "correct_order is not a JSON id list")
			}
		}
	case models.NumericScale:
		// Missing bounds are not a schema violation: ScaleBounds falls back
		// to 1..5, matching the lenient authoring tool.
		min, max := q.ScaleBounds()
		if min >= max {
			return NewMalformedQuestionError(q.ID, string(q.Type), "scale_min must be below scale_max")
		}
	default:
		return NewMalformedQuestionError(q.ID, string(q.Type), "unknown question type")
	}
	return nil
}

// DecodeCorrectOrder parses the authoritative option-id ordering stored on a
// ranked_sequence question. Returns nil for an absent key (unkeyed question).
func DecodeCorrectOrder(q *models.Question) ([]uint, error) {
	if len(q.CorrectOrder) == 0 {
		return nil, nil
	}
	var order []uint
	if err := json.Unmarshal(q.CorrectOrder, &order); err != nil {
		return nil, err
	}
	return order, nil
}

// FlattenQuestions returns every question of every section in presentation
// order. Review navigation walks this flat list.
func FlattenQuestions(sections []*models.Section) []*models.Question {
	var out []*models.Question
	for _, section := range sections {
		for i := range section.Questions {
			out = append(out, &section.Questions[i])
		}
	}
	return out
}
