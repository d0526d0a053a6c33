package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eqprep/assessment-engine/internal/engine"
	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService renders a completed session as a result workbook for the
// authoring/coaching side: one row per question with the answer given and the
// points it earned.
type ExportService interface {
	WriteResultSheet(ctx context.Context, sessionID uint, w io.Writer) error
}

type exportService struct {
	repo   repositories.Repository
	loader *graphLoader
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, loader *graphLoader, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		loader: loader,
		logger: logger,
	}
}

const resultSheetName = "Results"

func (s *exportService) WriteResultSheet(ctx context.Context, sessionID uint, w io.Writer) error {
	s.logger.Info("Exporting session results", "session_id", sessionID)

	session, sections, store, err := materializeSession(ctx, s.repo, s.loader, sessionID)
	if err != nil {
		return err
	}

	var keys *engine.AnswerKeyIndex
	graph, err := s.loader.Load(ctx, session.TestID)
	if err == nil && len(graph.Sections) > 0 {
		keys, err = engine.BuildAnswerKeyIndex(sections, graph.KeyRows)
		if err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(resultSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(sheet)
	f.DeleteSheet("Sheet1")

	headers := []string{"Section", "Question ID", "Type", "Prompt", "Answer", "Answered", "Keyed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(resultSheetName, cell, header)
	}

	rowIdx := 2
	for _, section := range sections {
		for i := range section.Questions {
			q := &section.Questions[i]
			value, answered := store.Get(q.ID)

			keyed := "no"
			if keys != nil {
				if key, ok := keys.Lookup(q.ID); ok && key.Kind != engine.KeyUnkeyed {
					keyed = "yes"
				}
			}

			cells := []interface{}{
				section.Title,
				q.ID,
				string(q.Type),
				q.Prompt,
				formatAnswer(q, value),
				answered,
				keyed,
			}
			for col, cell := range cells {
				name, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
				f.SetCellValue(resultSheetName, name, cell)
			}
			rowIdx++
		}
	}

	// Summary block under the question rows.
	f.SetCellValue(resultSheetName, fmt.Sprintf("A%d", rowIdx+1), "Score")
	if session.Score != nil {
		f.SetCellValue(resultSheetName, fmt.Sprintf("B%d", rowIdx+1), *session.Score)
	}
	f.SetCellValue(resultSheetName, fmt.Sprintf("A%d", rowIdx+2), "Earned / Possible")
	if session.EarnedPoints != nil && session.PossiblePoints != nil {
		f.SetCellValue(resultSheetName, fmt.Sprintf("B%d", rowIdx+2),
			fmt.Sprintf("%.2f / %d", *session.EarnedPoints, *session.PossiblePoints))
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func formatAnswer(q *models.Question, value engine.Value) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case engine.ChoiceValue:
		for _, opt := range q.Options {
			if opt.ID == v.OptionID {
				return opt.Label
			}
		}
		return fmt.Sprintf("option %d", v.OptionID)
	case engine.MatrixValue:
		parts := make([]string, 0, len(v.Ratings))
		for _, opt := range q.Options {
			if rating, ok := v.Ratings[opt.ID]; ok {
				parts = append(parts, fmt.Sprintf("%s=%s", opt.Label, rating))
			}
		}
		return strings.Join(parts, "; ")
	case engine.OrderValue:
		parts := make([]string, 0, len(v.Order))
		for _, id := range v.Order {
			for _, opt := range q.Options {
				if opt.ID == id {
					parts = append(parts, opt.Label)
				}
			}
		}
		return strings.Join(parts, " > ")
	case engine.ScaleValue:
		return fmt.Sprintf("%g", v.Number)
	}
	return ""
}
