package models

import "time"

// AnswerKey is the canonical correct-answer record for a multiple-choice
// question, linked 1:1 to its question. Auto-grading compares a student's
// selected option against CorrectOptionID.
type AnswerKey struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	CorrectOptionID uint    `json:"correct_option_id" gorm:"not null"`
	Explanation     *string `json:"explanation,omitempty" gorm:"type:text"`

	QuestionID uint `json:"question_id" gorm:"uniqueIndex;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnswerKey) TableName() string {
	return "answer_keys"
}
