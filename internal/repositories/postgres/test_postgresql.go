package postgres

import (
	"context"

	"github.com/eqprep/assessment-engine/internal/models"
	"github.com/eqprep/assessment-engine/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t TestPostgreSQL) GetGraph(ctx context.Context, testID uint) ([]*models.Section, []*models.AnswerKeyRow, error) {
	var sections []*models.Section
	if err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.position ASC")
		}).
		Order("sections.position ASC").
		Find(&sections).Error; err != nil {
		return nil, nil, err
	}

	var questionIDs []uint
	for _, section := range sections {
		for _, q := range section.Questions {
			questionIDs = append(questionIDs, q.ID)
		}
	}

	var keyRows []*models.AnswerKeyRow
	if len(questionIDs) > 0 {
		if err := t.db.WithContext(ctx).
			Where("question_id IN ?", questionIDs).
			Find(&keyRows).Error; err != nil {
			return nil, nil, err
		}
	}

	return sections, keyRows, nil
}
