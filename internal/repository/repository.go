package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrAlreadyCompleted = errors.New("attempt already completed")
	ErrDuplicateAnswer  = errors.New("question already answered in this attempt")
)

// SectionStore reads and writes sections.
type SectionStore interface {
	// List returns all sections ordered by (order, id).
	List(ctx context.Context) ([]model.Section, error)
	GetByID(ctx context.Context, id string) (*model.Section, error)
	// Upsert writes s. On an existing section the localized name and
	// description are merged per language; s is updated to the stored row.
	Upsert(ctx context.Context, s *model.Section) error
}

// QuestionStore reads and writes questions.
type QuestionStore interface {
	// ListBySection returns the section's questions ordered by question id.
	ListBySection(ctx context.Context, sectionID string, activeOnly bool) ([]model.Question, error)
	// ListActive pages through active questions ordered by (section, id),
	// optionally limited to one section. It also returns the total count.
	ListActive(ctx context.Context, sectionID string, limit, offset int) ([]model.Question, int, error)
	// GetByIDs returns the questions that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]model.Question, error)
	CountActiveByDifficulty(ctx context.Context, sectionID string) (map[model.Difficulty]int, error)
	// Upsert writes q. On an existing question the text, options and
	// explanation are merged per language; q is updated to the stored row.
	Upsert(ctx context.Context, q *model.Question) error
}

// CompletionTx is the write surface available while an attempt is being completed.
type CompletionTx interface {
	InsertAnswer(ctx context.Context, a *model.Answer) error
	ListAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error)
}

// CompleteFunc records answers and fills the derived fields of attempt.
// It must not call back into the store outside tx.
type CompleteFunc func(ctx context.Context, tx CompletionTx, attempt *model.Attempt) error

// AttemptStore reads and writes attempts and their answers.
type AttemptStore interface {
	Create(ctx context.Context, a *model.Attempt) error
	// GetByID returns the attempt with its answers.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	// List pages through attempts, newest first, with their answers. It
	// also returns the total count.
	List(ctx context.Context, limit, offset int) ([]model.Attempt, int, error)
	// Complete claims the attempt by setting its completion time only if it is
	// still unset, runs fn, and persists the derived fields as one unit. A
	// claimed attempt returns ErrAlreadyCompleted; an fn error rolls everything back.
	Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, fn CompleteFunc) (*model.Attempt, error)
	Statistics(ctx context.Context) (*model.AttemptStatistics, error)
}
