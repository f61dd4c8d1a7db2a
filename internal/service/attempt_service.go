package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/exam"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stemsi/theoryexam-backend/internal/response"
)

// AttemptService drives an attempt from creation to its scored, completed state.
type AttemptService struct {
	attempts repository.AttemptStore
	bank     *QuestionBank
	scorer   *exam.Scorer
	policy   config.ExamPolicy
	now      func() time.Time
	log      zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attempts repository.AttemptStore,
	bank *QuestionBank,
	policy config.ExamPolicy,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		bank:     bank,
		scorer:   exam.NewScorer(policy),
		policy:   policy,
		now:      time.Now,
		log:      log.With().Str("component", "attempt_service").Logger(),
	}
}

// CreateAttemptParams describes a new attempt. UserIP and UserAgent are kept
// for auditing only.
type CreateAttemptParams struct {
	TestType  model.TestType
	SectionID *string
	WithTimer bool
	UserIP    string
	UserAgent string
}

// Create starts a new attempt. Full attempts always count the whole quota;
// section attempts count the section's active questions at creation time.
func (s *AttemptService) Create(ctx context.Context, p CreateAttemptParams) (*model.Attempt, error) {
	attempt := &model.Attempt{
		TestType:  p.TestType,
		WithTimer: p.WithTimer,
		StartedAt: s.now().UTC(),
		UserIP:    p.UserIP,
		UserAgent: p.UserAgent,
		Answers:   []model.Answer{},
	}

	switch p.TestType {
	case model.TestTypeFull:
		attempt.TotalQuestions = s.policy.FullQuota.Total()

	case model.TestTypeSection:
		if p.SectionID == nil || *p.SectionID == "" {
			return nil, newValidationError("section_id", "section_id is required for section tests")
		}
		sec, err := s.bank.SectionByID(ctx, *p.SectionID)
		if err != nil {
			return nil, err
		}
		count, err := s.bank.ActiveQuestionCount(ctx, sec.ID)
		if err != nil {
			return nil, fmt.Errorf("count questions: %w", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptySection, sec.ID)
		}
		sectionID := sec.ID
		attempt.SectionID = &sectionID
		attempt.TotalQuestions = count

	default:
		return nil, newValidationError("test_type", "test_type must be one of [full section]")
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("test_type", string(attempt.TestType)).
		Int("total_questions", attempt.TotalQuestions).
		Msg("Attempt created")
	return attempt, nil
}

// Get returns an attempt with its answers.
func (s *AttemptService) Get(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, err := s.attempts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

// Submit records answers (question id → selected option) and completes the
// attempt. It succeeds once per attempt; later calls get ErrAlreadyCompleted.
// Ids that match no question are skipped rather than rejected.
func (s *AttemptService) Submit(ctx context.Context, id uuid.UUID, answers, timeSpent map[string]int) (*model.Attempt, error) {
	ids := make([]string, 0, len(answers))
	for qid := range answers {
		ids = append(ids, qid)
	}
	sort.Strings(ids)

	questions, err := s.bank.QuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve questions: %w", err)
	}

	now := s.now().UTC()
	attempt, err := s.attempts.Complete(ctx, id, now, func(ctx context.Context, tx repository.CompletionTx, a *model.Attempt) error {
		for _, qid := range ids {
			q, ok := questions[qid]
			if !ok {
				s.log.Debug().
					Str("attempt_id", a.ID.String()).
					Str("question_id", qid).
					Msg("Skipping unknown question in submission")
				continue
			}

			selected := answers[qid]
			ans := &model.Answer{
				AttemptID:      a.ID,
				QuestionID:     qid,
				SelectedAnswer: selected,
				IsCorrect:      exam.IsCorrect(&q, selected),
				AnsweredAt:     now,
			}
			if secs, ok := timeSpent[qid]; ok {
				ans.TimeSpentSeconds = &secs
			}
			if err := tx.InsertAnswer(ctx, ans); err != nil {
				return fmt.Errorf("insert answer %s: %w", qid, err)
			}
		}

		persisted, err := tx.ListAnswers(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("list answers: %w", err)
		}
		if err := s.scorer.Score(a, persisted); err != nil {
			return fmt.Errorf("score: %w", err)
		}
		a.Answers = persisted
		return nil
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrAttemptNotFound
	case errors.Is(err, ErrAlreadyCompleted):
		return nil, ErrAlreadyCompleted
	case err != nil:
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("answered", attempt.AnsweredQuestions).
		Int("correct", attempt.CorrectAnswers).
		Float64("score", attempt.ScorePercentage).
		Bool("passed", attempt.Passed).
		Msg("Attempt completed")
	return attempt, nil
}

// List returns one page of attempts, newest first.
func (s *AttemptService) List(ctx context.Context, page, perPage int) ([]model.Attempt, *response.Pagination, error) {
	page, perPage, limit, offset := pageWindow(page, perPage)
	attempts, total, err := s.attempts.List(ctx, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, newPagination(page, perPage, total), nil
}

// Statistics summarizes completed attempts.
func (s *AttemptService) Statistics(ctx context.Context) (*model.AttemptStatistics, error) {
	return s.attempts.Statistics(ctx)
}
