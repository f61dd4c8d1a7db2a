package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, section_id, text, options, correct_answer, explanation, image_url, difficulty, is_active, created_at, updated_at`

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.SectionID, &q.Text, &q.Options, &q.CorrectAnswer, &q.Explanation,
			&q.ImageURL, &q.Difficulty, &q.IsActive, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListBySection retrieves a section's questions ordered by id. Ids compare
// byte-wise so the order does not depend on the database collation.
func (r *QuestionRepository) ListBySection(ctx context.Context, sectionID string, activeOnly bool) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE section_id = $1 AND (is_active OR NOT $2)
		 ORDER BY id COLLATE "C"`, sectionID, activeOnly,
	)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// ListActive retrieves one page of active questions, optionally filtered by
// section, along with the total number of matches.
func (r *QuestionRepository) ListActive(ctx context.Context, sectionID string, limit, offset int) ([]model.Question, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions
		 WHERE is_active AND ($1 = '' OR section_id = $1)`, sectionID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE is_active AND ($1 = '' OR section_id = $1)
		 ORDER BY section_id COLLATE "C", id COLLATE "C"
		 LIMIT $2 OFFSET $3`, sectionID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, total, nil
}

// GetByIDs retrieves the questions whose ids are listed. Unknown ids are absent from the result.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Question, error) {
	result := make(map[string]model.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		result[q.ID] = q
	}
	return result, nil
}

// CountActiveByDifficulty counts a section's active questions per difficulty tag.
func (r *QuestionRepository) CountActiveByDifficulty(ctx context.Context, sectionID string) (map[model.Difficulty]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT difficulty, COUNT(*)
		 FROM questions
		 WHERE section_id = $1 AND is_active
		 GROUP BY difficulty`, sectionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.Difficulty]int{
		model.DifficultyEasy:   0,
		model.DifficultyMedium: 0,
		model.DifficultyHard:   0,
	}
	for rows.Next() {
		var d model.Difficulty
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		counts[d] = n
	}
	return counts, rows.Err()
}

// Upsert inserts a question or updates the existing row with the same id.
// Localized columns are merged with jsonb || so an import in one language
// keeps the others.
func (r *QuestionRepository) Upsert(ctx context.Context, q *model.Question) error {
	options := q.Options
	if options == nil {
		options = model.LocalizedOptions{}
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (id, section_id, text, options, correct_answer, explanation, image_url, difficulty, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   section_id = EXCLUDED.section_id,
		   text = questions.text || EXCLUDED.text,
		   options = questions.options || EXCLUDED.options,
		   correct_answer = EXCLUDED.correct_answer,
		   explanation = questions.explanation || EXCLUDED.explanation,
		   image_url = EXCLUDED.image_url,
		   difficulty = EXCLUDED.difficulty,
		   is_active = EXCLUDED.is_active,
		   updated_at = NOW()
		 RETURNING text, options, explanation, created_at, updated_at`,
		q.ID, q.SectionID, orEmpty(q.Text), options, q.CorrectAnswer, orEmpty(q.Explanation), q.ImageURL, q.Difficulty, q.IsActive,
	).Scan(&q.Text, &q.Options, &q.Explanation, &q.CreatedAt, &q.UpdatedAt)
}
