package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is a response to one question within one attempt. IsCorrect is fixed
// when the answer is written. QuestionText is read from the bank and is nil
// once the question no longer exists.
type Answer struct {
	ID               int64     `json:"id"`
	AttemptID        uuid.UUID `json:"-"`
	QuestionID       string    `json:"question_id"`
	QuestionText     Localized `json:"question_text"`
	SelectedAnswer   int       `json:"selected_answer"`
	IsCorrect        bool      `json:"is_correct"`
	AnsweredAt       time.Time `json:"answered_at"`
	TimeSpentSeconds *int      `json:"time_spent_seconds"`
}
