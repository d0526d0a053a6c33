package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestKind string

const (
	TestWorksheet TestKind = "worksheet"
	TestExam      TestKind = "exam"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MatrixRating   QuestionType = "matrix_rating"
	RankedSequence QuestionType = "ranked_sequence"
	NumericScale   QuestionType = "numeric_scale"
)

// Default bounds applied when a numeric_scale question is authored without
// scale_min/scale_max. Lenient on purpose: the authoring tool allows it.
const (
	DefaultScaleMin = 1
	DefaultScaleMax = 5
)

type Test struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	Title     string   `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Kind      TestKind `json:"kind" gorm:"not null;default:worksheet" validate:"omitempty,test_kind"`
	Subject   *string  `json:"subject" gorm:"size:100;index"`
	TimeLimit *int     `json:"time_limit"` // Minutes; enforcement is the caller's job

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sections []Section `json:"sections" gorm:"foreignKey:TestID"`
}

type Section struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	TestID       uint    `json:"test_id" gorm:"not null;index"`
	Title        string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Instructions string  `json:"instructions" gorm:"type:text"`
	Position     int     `json:"position" gorm:"not null;index"`
	Subject      *string `json:"subject" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

type Question struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	SectionID uint         `json:"section_id" gorm:"not null;index"`
	Position  int          `json:"position" gorm:"not null;index"`
	Type      QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`
	Prompt    string       `json:"prompt" gorm:"type:text;not null" validate:"required"`

	// Optional presentation fields; scenario/video framings of single_choice
	// differ only here, not in scoring.
	Scenario    *string `json:"scenario" gorm:"type:text"`
	MediaURL    *string `json:"media_url" gorm:"size:500"`
	Explanation *string `json:"explanation" gorm:"type:text"`

	// ranked_sequence only: the authoritative option-id ordering.
	CorrectOrder datatypes.JSON `json:"correct_order" gorm:"type:jsonb"`

	// numeric_scale only.
	ScaleMin *int `json:"scale_min"`
	ScaleMax *int `json:"scale_max"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options []Option `json:"options" gorm:"foreignKey:QuestionID"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:500"`
	Value      string `json:"value" gorm:"size:100"` // Likert rating for matrix rows, generic token otherwise
	Position   int    `json:"position" gorm:"not null"`
}

// AnswerKeyRow is one persisted correctness record. Which columns are set
// depends on the owning question's type:
//
//	single_choice:  option_id + points (one row per credited option)
//	matrix_rating:  option_id (row) + rating_value + points
//	numeric_scale:  correct_value + points (single row)
//
// ranked_sequence carries no rows; its key is Question.CorrectOrder.
type AnswerKeyRow struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	QuestionID   uint     `json:"question_id" gorm:"not null;index"`
	OptionID     *uint    `json:"option_id" gorm:"index"`
	RatingValue  *string  `json:"rating_value" gorm:"size:50"`
	CorrectValue *float64 `json:"correct_value"`
	Points       float64  `json:"points" gorm:"not null"`
}

func (Test) TableName() string {
	return "tests"
}

func (Section) TableName() string {
	return "sections"
}

func (Question) TableName() string {
	return "questions"
}

func (Option) TableName() string {
	return "options"
}

func (AnswerKeyRow) TableName() string {
	return "answer_keys"
}

// ScaleBounds returns the effective numeric_scale bounds, falling back to the
// documented 1..5 default when authoring left them unset.
func (q *Question) ScaleBounds() (min, max int) {
	min, max = DefaultScaleMin, DefaultScaleMax
	if q.ScaleMin != nil {
		min = *q.ScaleMin
	}
	if q.ScaleMax != nil {
		max = *q.ScaleMax
	}
	return min, max
}
