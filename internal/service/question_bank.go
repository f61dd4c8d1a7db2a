package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stemsi/theoryexam-backend/internal/response"
)

// QuestionBank is the read view over sections and questions. Active question
// lists and the section list are cached in Redis when a client is configured.
type QuestionBank struct {
	sections  repository.SectionStore
	questions repository.QuestionStore
	rdb       *redis.Client
	ttl       time.Duration
	log       zerolog.Logger
}

// NewQuestionBank creates a new QuestionBank. rdb may be nil to disable caching.
func NewQuestionBank(
	sections repository.SectionStore,
	questions repository.QuestionStore,
	rdb *redis.Client,
	ttl time.Duration,
	log zerolog.Logger,
) *QuestionBank {
	return &QuestionBank{
		sections:  sections,
		questions: questions,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "question_bank").Logger(),
	}
}

// ListSections returns all sections in display order.
func (b *QuestionBank) ListSections(ctx context.Context) ([]model.Section, error) {
	sections, err := cached(ctx, b, config.CacheKey.SectionListKey(), func() ([]model.Section, error) {
		list, err := b.sections.List(ctx)
		if list == nil {
			list = []model.Section{}
		}
		return list, err
	})
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// SectionByID returns the section or an error wrapping ErrSectionNotFound.
func (b *QuestionBank) SectionByID(ctx context.Context, id string) (*model.Section, error) {
	sec, err := b.sections.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}
	return sec, nil
}

// QuestionsInSection returns the section's questions ordered by id. Only the
// active list is cached; inactive questions are always read from the store.
func (b *QuestionBank) QuestionsInSection(ctx context.Context, sectionID string, activeOnly bool) ([]model.Question, error) {
	if !activeOnly {
		return b.questions.ListBySection(ctx, sectionID, false)
	}

	questions, err := cached(ctx, b, config.CacheKey.SectionQuestionsKey(sectionID), func() ([]model.Question, error) {
		list, err := b.questions.ListBySection(ctx, sectionID, true)
		if list == nil {
			list = []model.Question{}
		}
		return list, err
	})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// ActiveQuestionCount returns how many active questions a section holds.
func (b *QuestionBank) ActiveQuestionCount(ctx context.Context, sectionID string) (int, error) {
	questions, err := b.QuestionsInSection(ctx, sectionID, true)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

// QuestionsByIDs resolves question ids regardless of their active flag.
func (b *QuestionBank) QuestionsByIDs(ctx context.Context, ids []string) (map[string]model.Question, error) {
	return b.questions.GetByIDs(ctx, ids)
}

// QuestionByID returns an active question with its answer key. Inactive and
// unknown ids both yield ErrQuestionNotFound.
func (b *QuestionBank) QuestionByID(ctx context.Context, id string) (*model.Question, error) {
	found, err := b.questions.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	q, ok := found[id]
	if !ok || !q.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	return &q, nil
}

// ListActive pages through active questions with their answer keys, ordered
// by section and id. A non-empty sectionID must name an existing section.
func (b *QuestionBank) ListActive(ctx context.Context, sectionID string, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if sectionID != "" {
		if _, err := b.SectionByID(ctx, sectionID); err != nil {
			return nil, nil, err
		}
	}

	page, perPage, limit, offset := pageWindow(page, perPage)
	questions, total, err := b.questions.ListActive(ctx, sectionID, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("list active questions: %w", err)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, newPagination(page, perPage, total), nil
}

// SectionStatistics returns the active question total and difficulty breakdown.
func (b *QuestionBank) SectionStatistics(ctx context.Context, sectionID string) (*model.SectionStatistics, error) {
	sec, err := b.SectionByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	breakdown, err := b.questions.CountActiveByDifficulty(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("count by difficulty: %w", err)
	}

	total := 0
	for _, n := range breakdown {
		total += n
	}

	return &model.SectionStatistics{
		SectionID:           sec.ID,
		SectionName:         sec.Name.Primary(),
		TotalQuestions:      total,
		DifficultyBreakdown: breakdown,
	}, nil
}

// Invalidate drops every cached bank entry. Called after imports.
func (b *QuestionBank) Invalidate(ctx context.Context) error {
	if b.rdb == nil {
		return nil
	}

	keys := []string{config.CacheKey.SectionListKey()}
	iter := b.rdb.Scan(ctx, 0, config.CacheKey.SectionQuestionsPattern(), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}

	if err := b.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}

	b.log.Info().Int("keys", len(keys)).Msg("Bank cache invalidated")
	return nil
}

// PrewarmAllCaches loads the section list and each section's active
// questions into Redis before the server accepts traffic.
func (b *QuestionBank) PrewarmAllCaches(ctx context.Context) error {
	if b.rdb == nil {
		return nil
	}

	sections, err := b.ListSections(ctx)
	if err != nil {
		return err
	}

	warmed := 0
	for _, sec := range sections {
		if _, err := b.QuestionsInSection(ctx, sec.ID, true); err != nil {
			b.log.Warn().Err(err).Str("section_id", sec.ID).Msg("Failed to warm section, skipping")
			continue
		}
		warmed++
	}

	b.log.Info().
		Int("warmed", warmed).
		Int("total", len(sections)).
		Msg("Prewarming complete")
	return nil
}

// cached returns the value stored under key, or calls load and stores its
// result. Redis failures degrade to a direct load.
func cached[T any](ctx context.Context, b *QuestionBank, key string, load func() (T, error)) (T, error) {
	if b.rdb != nil {
		data, err := b.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var value T
			if jsonErr := json.Unmarshal(data, &value); jsonErr == nil {
				return value, nil
			}
			b.log.Warn().Str("key", key).Msg("Corrupt cache entry, reloading")
		case !errors.Is(err, redis.Nil):
			b.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if b.rdb != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			return value, fmt.Errorf("marshal %s: %w", key, err)
		}
		if err := b.rdb.Set(ctx, key, raw, b.ttl).Err(); err != nil {
			b.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
	}
	return value, nil
}
