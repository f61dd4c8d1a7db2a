package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

// AttemptRepository handles attempt and answer data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, test_type, section_id, with_timer, started_at, completed_at,
	total_questions, answered_questions, correct_answers, score_percentage, passed,
	time_taken_seconds, user_ip, user_agent`

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(
		&a.ID, &a.TestType, &a.SectionID, &a.WithTimer, &a.StartedAt, &a.CompletedAt,
		&a.TotalQuestions, &a.AnsweredQuestions, &a.CorrectAnswers, &a.ScorePercentage, &a.Passed,
		&a.TimeTakenSeconds, &a.UserIP, &a.UserAgent,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new attempt in its initial state.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (test_type, section_id, with_timer, started_at, total_questions, user_ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		a.TestType, a.SectionID, a.WithTimer, a.StartedAt, a.TotalQuestions, a.UserIP, a.UserAgent,
	).Scan(&a.ID)
}

// GetByID retrieves an attempt together with its answers.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Answers, err = listAnswers(ctx, r.pool, id)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return a, nil
}

// List retrieves one page of attempts, newest first, with their answers.
func (r *AttemptRepository) List(ctx context.Context, limit, offset int) ([]model.Attempt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM attempts
		 ORDER BY started_at DESC, id
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	ids := []uuid.UUID{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		a.Answers = []model.Answer{}
		attempts = append(attempts, *a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return attempts, total, nil
	}

	answers, err := queryAnswers(ctx, r.pool,
		`WHERE a.attempt_id = ANY($1) ORDER BY a.answered_at, a.id`, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("list answers: %w", err)
	}
	index := make(map[uuid.UUID]int, len(attempts))
	for i := range attempts {
		index[attempts[i].ID] = i
	}
	for _, ans := range answers {
		i := index[ans.AttemptID]
		attempts[i].Answers = append(attempts[i].Answers, ans)
	}
	return attempts, total, nil
}

// Complete claims the attempt with a compare-and-set on completed_at and runs
// fn in the same transaction. Concurrent callers serialize on the row lock;
// every caller after the first sees completed_at set and gets ErrAlreadyCompleted.
func (r *AttemptRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, fn CompleteFunc) (*model.Attempt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAttempt(tx.QueryRow(ctx,
		`UPDATE attempts SET completed_at = $2
		 WHERE id = $1 AND completed_at IS NULL
		 RETURNING `+attemptColumns, id, completedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attempts WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check attempt: %w", err)
		}
		if exists {
			return nil, ErrAlreadyCompleted
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("claim attempt: %w", err)
	}

	if err := fn(ctx, pgCompletionTx{tx: tx}, a); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE attempts
		 SET answered_questions = $2,
		     correct_answers = $3,
		     score_percentage = $4,
		     passed = $5,
		     time_taken_seconds = $6
		 WHERE id = $1`,
		a.ID, a.AnsweredQuestions, a.CorrectAnswers, a.ScorePercentage, a.Passed, a.TimeTakenSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

// Statistics aggregates all completed attempts.
func (r *AttemptRepository) Statistics(ctx context.Context) (*model.AttemptStatistics, error) {
	st := &model.AttemptStatistics{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE passed),
		        COUNT(*) FILTER (WHERE test_type = 'full')
		 FROM attempts
		 WHERE completed_at IS NOT NULL`,
	).Scan(&st.TotalAttempts, &st.PassedAttempts, &st.FullTestAttempts)
	if err != nil {
		return nil, err
	}
	return finishStatistics(st), nil
}

func finishStatistics(st *model.AttemptStatistics) *model.AttemptStatistics {
	st.FailedAttempts = st.TotalAttempts - st.PassedAttempts
	if st.TotalAttempts > 0 {
		st.PassRate = float64(st.PassedAttempts) / float64(st.TotalAttempts) * 100
	}
	return st
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func listAnswers(ctx context.Context, q querier, attemptID uuid.UUID) ([]model.Answer, error) {
	return queryAnswers(ctx, q, `WHERE a.attempt_id = $1 ORDER BY a.answered_at, a.id`, attemptID)
}

// queryAnswers selects answers joined with the current question text.
// where supplies the WHERE and ORDER BY clauses over alias a.
func queryAnswers(ctx context.Context, q querier, where string, args ...any) ([]model.Answer, error) {
	rows, err := q.Query(ctx,
		`SELECT a.id, a.attempt_id, a.question_id, q.text, a.selected_answer,
		        a.is_correct, a.answered_at, a.time_spent_seconds
		 FROM answers a
		 LEFT JOIN questions q ON q.id = a.question_id
		 `+where, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []model.Answer{}
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.QuestionText, &a.SelectedAnswer,
			&a.IsCorrect, &a.AnsweredAt, &a.TimeSpentSeconds); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

type pgCompletionTx struct {
	tx pgx.Tx
}

func (t pgCompletionTx) InsertAnswer(ctx context.Context, a *model.Answer) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, selected_answer, is_correct, answered_at, time_spent_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		a.AttemptID, a.QuestionID, a.SelectedAnswer, a.IsCorrect, a.AnsweredAt, a.TimeSpentSeconds,
	).Scan(&a.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateAnswer
	}
	return err
}

func (t pgCompletionTx) ListAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	return listAnswers(ctx, t.tx, attemptID)
}
