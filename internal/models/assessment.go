package models

import (
	"time"

	"gorm.io/gorm"
)

type AssessmentType string

const (
	// TypeQuiz is a short closed-form assessment, auto-scored on submit.
	TypeQuiz AssessmentType = "QUIZ"
	// TypeSimulado is a timed multi-topic mock exam, auto-scored with a
	// per-argument breakdown.
	TypeSimulado AssessmentType = "SIMULADO"
	// TypeProvaAberta is an open-answer exam; no score exists until every
	// open answer has been manually reviewed.
	TypeProvaAberta AssessmentType = "PROVA_ABERTA"
)

func (t AssessmentType) IsQuiz() bool        { return t == TypeQuiz }
func (t AssessmentType) IsSimulado() bool    { return t == TypeSimulado }
func (t AssessmentType) IsProvaAberta() bool { return t == TypeProvaAberta }

// Assessment is the exam definition students take attempts against.
type Assessment struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null;size:255" validate:"required,min=3,max=255"`
	Title       string         `json:"title" gorm:"not null;size:255;index" validate:"required,min=3,max=255"`
	Description *string        `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=1000"`
	Type        AssessmentType `json:"type" gorm:"not null;index" validate:"required,assessment_type"`

	// PassingScore is the minimum percentage (0-100) for a passing attempt.
	PassingScore int `json:"passing_score" gorm:"not null" validate:"min=0,max=100"`

	// TimeLimitMinutes applies to SIMULADO assessments only.
	TimeLimitMinutes *int `json:"time_limit_minutes,omitempty" validate:"omitempty,min=5,max=600"`

	RandomizeQuestions bool `json:"randomize_questions" gorm:"default:false"`
	RandomizeOptions   bool `json:"randomize_options" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"-" gorm:"foreignKey:AssessmentID"`
	Arguments []Argument `json:"-" gorm:"foreignKey:AssessmentID"`
}

func (Assessment) TableName() string {
	return "assessments"
}
