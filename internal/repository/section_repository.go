package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

// SectionRepository handles section data access.
type SectionRepository struct {
	pool *pgxpool.Pool
}

// NewSectionRepository creates a new SectionRepository.
func NewSectionRepository(pool *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{pool: pool}
}

const sectionColumns = `id, name, description, question_count, color, sort_order, created_at, updated_at`

func scanSection(row pgx.Row) (*model.Section, error) {
	s := &model.Section{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.QuestionCount, &s.Color, &s.Order, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all sections in display order.
func (r *SectionRepository) List(ctx context.Context) ([]model.Section, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sectionColumns+` FROM sections ORDER BY sort_order, id COLLATE "C"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

// GetByID retrieves a section by its identifier.
func (r *SectionRepository) GetByID(ctx context.Context, id string) (*model.Section, error) {
	s, err := scanSection(r.pool.QueryRow(ctx,
		`SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// Upsert inserts a section or updates the existing row with the same id.
// Name and description are merged per language.
func (r *SectionRepository) Upsert(ctx context.Context, s *model.Section) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO sections (id, name, description, question_count, color, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   name = sections.name || EXCLUDED.name,
		   description = sections.description || EXCLUDED.description,
		   question_count = EXCLUDED.question_count,
		   color = EXCLUDED.color,
		   sort_order = EXCLUDED.sort_order,
		   updated_at = NOW()
		 RETURNING name, description, created_at, updated_at`,
		s.ID, orEmpty(s.Name), orEmpty(s.Description), s.QuestionCount, s.Color, s.Order,
	).Scan(&s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
}

// orEmpty keeps nil maps from being sent as SQL NULL into NOT NULL jsonb columns.
func orEmpty(l model.Localized) model.Localized {
	if l == nil {
		return model.Localized{}
	}
	return l
}
