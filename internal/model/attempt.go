package model

import (
	"time"

	"github.com/google/uuid"
)

// TestType enumerates the kinds of exam an attempt can be.
type TestType string

const (
	TestTypeFull    TestType = "full"
	TestTypeSection TestType = "section"
)

// Attempt is one exam session. It is in progress while CompletedAt is nil.
type Attempt struct {
	ID                uuid.UUID  `json:"id"`
	TestType          TestType   `json:"test_type"`
	SectionID         *string    `json:"section_id"`
	WithTimer         bool       `json:"with_timer"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	TotalQuestions    int        `json:"total_questions"`
	AnsweredQuestions int        `json:"answered_questions"`
	CorrectAnswers    int        `json:"correct_answers"`
	ScorePercentage   float64    `json:"score_percentage"`
	Passed            bool       `json:"passed"`
	TimeTakenSeconds  *int       `json:"time_taken_seconds"`
	UserIP            string     `json:"-"`
	UserAgent         string     `json:"-"`
	Answers           []Answer   `json:"answers"`
}

// Completed reports whether the attempt reached its terminal state.
func (a *Attempt) Completed() bool {
	return a.CompletedAt != nil
}

// AttemptStatistics aggregates completed attempts.
type AttemptStatistics struct {
	TotalAttempts    int     `json:"total_attempts"`
	PassedAttempts   int     `json:"passed_attempts"`
	FailedAttempts   int     `json:"failed_attempts"`
	PassRate         float64 `json:"pass_rate"`
	FullTestAttempts int     `json:"full_test_attempts"`
}

// CreateAttemptRequest is the payload for starting an attempt.
type CreateAttemptRequest struct {
	TestType  TestType `json:"test_type" binding:"required,oneof=full section"`
	SectionID *string  `json:"section_id" binding:"omitempty,min=1,max=100"`
	WithTimer bool     `json:"with_timer"`
}

// SubmitAttemptRequest maps question ids to the selected option index.
type SubmitAttemptRequest struct {
	Answers   map[string]int `json:"answers" binding:"required,dive,min=0"`
	TimeSpent map[string]int `json:"time_spent_seconds" binding:"omitempty,dive,min=0"`
}
