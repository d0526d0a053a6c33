// Package legacy bridges sessions recorded before tests were sectioned.
// Those sessions carry their whole question/answer view as one denormalized
// JSON snapshot on the session row. The adapter translates that blob into the
// same Section/Question/ResponseStore shapes the primary reconstruction path
// produces, so the review machinery never special-cases the old format.
package legacy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eqprep/assessment-engine/internal/engine"
	"github.com/eqprep/assessment-engine/internal/models"
)

var ErrNoSnapshot = errors.New("session has no legacy snapshot")

type snapshot struct {
	Title     string             `json:"title"`
	Questions []snapshotQuestion `json:"questions"`
}

type snapshotQuestion struct {
	ID             uint             `json:"id"`
	Prompt         string           `json:"prompt"`
	Explanation    string           `json:"explanation,omitempty"`
	ChosenOptionID uint             `json:"chosen_option_id"`
	Options        []snapshotOption `json:"options"`
}

type snapshotOption struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Reconstruct synthesizes a single-section, all-single_choice view of a
// legacy session plus a store holding the answers the user chose. The
// returned graph exists only in memory; nothing here touches storage.
func Reconstruct(session *models.Session) ([]*models.Section, *engine.ResponseStore, error) {
	if len(session.LegacySnapshot) == 0 {
		return nil, nil, ErrNoSnapshot
	}

	var snap snapshot
	if err := json.Unmarshal(session.LegacySnapshot, &snap); err != nil {
		return nil, nil, fmt.Errorf("failed to decode legacy snapshot for session %d: %w", session.ID, err)
	}

	section := &models.Section{
		TestID:    session.TestID,
		Title:     snap.Title,
		Position:  0,
		Questions: make([]models.Question, 0, len(snap.Questions)),
	}

	store := engine.NewResponseStore()

	for i, sq := range snap.Questions {
		q := models.Question{
			ID:       sq.ID,
			Position: i,
			Type:     models.SingleChoice,
			Prompt:   sq.Prompt,
			Options:  make([]models.Option, 0, len(sq.Options)),
		}
		if sq.Explanation != "" {
			explanation := sq.Explanation
			q.Explanation = &explanation
		}
		for j, so := range sq.Options {
			q.Options = append(q.Options, models.Option{
				ID:         so.ID,
				QuestionID: sq.ID,
				Label:      so.Label,
				Value:      so.Value,
				Position:   j,
			})
		}
		section.Questions = append(section.Questions, q)

		if sq.ChosenOptionID != 0 {
			store.Set(sq.ID, engine.ChoiceValue{OptionID: sq.ChosenOptionID})
		}
	}

	return []*models.Section{section}, store, nil
}
