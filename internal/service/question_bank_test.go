package service

import (
	"context"
	"testing"

	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionBank_WithoutCache(t *testing.T) {
	ctx := context.Background()
	bank := newBank(seedBank(t, map[string]int{"environment": 5}), nil)

	sections, err := bank.ListSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 1)

	active, err := bank.QuestionsInSection(ctx, "environment", true)
	require.NoError(t, err)
	assert.Len(t, active, 5)

	all, err := bank.QuestionsInSection(ctx, "environment", false)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	n, err := bank.ActiveQuestionCount(ctx, "environment")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = bank.SectionByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)

	require.NoError(t, bank.Invalidate(ctx))
	require.NoError(t, bank.PrewarmAllCaches(ctx))
}

func TestQuestionBank_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	store := seedBank(t, map[string]int{"environment": 3})
	mr, rdb := newTestRedis(t)
	bank := newBank(store, rdb)

	first, err := bank.QuestionsInSection(ctx, "environment", true)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.True(t, mr.Exists(config.CacheKey.SectionQuestionsKey("environment")))

	// A new question is invisible until the cache is invalidated.
	require.NoError(t, store.Questions().Upsert(ctx, &model.Question{
		ID: "environment_new", SectionID: "environment", IsActive: true,
		Text:    model.Localized{model.LangEnglish: "q"},
		Options: model.LocalizedOptions{model.LangEnglish: {"a", "b"}},
	}))

	cached, err := bank.QuestionsInSection(ctx, "environment", true)
	require.NoError(t, err)
	assert.Len(t, cached, 3)
	assert.Equal(t, first[0].CorrectAnswer, cached[0].CorrectAnswer)

	require.NoError(t, bank.Invalidate(ctx))
	assert.False(t, mr.Exists(config.CacheKey.SectionQuestionsKey("environment")))

	fresh, err := bank.QuestionsInSection(ctx, "environment", true)
	require.NoError(t, err)
	assert.Len(t, fresh, 4)
}

func TestQuestionBank_CorruptEntryReloads(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	bank := newBank(seedBank(t, map[string]int{"environment": 2}), rdb)

	require.NoError(t, mr.Set(config.CacheKey.SectionListKey(), "{not json"))

	sections, err := bank.ListSections(ctx)
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}

func TestQuestionBank_RedisDownDegrades(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	bank := newBank(seedBank(t, map[string]int{"environment": 2}), rdb)
	mr.Close()

	questions, err := bank.QuestionsInSection(ctx, "environment", true)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestQuestionBank_Prewarm(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	bank := newBank(seedBank(t, map[string]int{"a": 1, "b": 2}), rdb)

	require.NoError(t, bank.PrewarmAllCaches(ctx))

	assert.True(t, mr.Exists(config.CacheKey.SectionListKey()))
	assert.True(t, mr.Exists(config.CacheKey.SectionQuestionsKey("a")))
	assert.True(t, mr.Exists(config.CacheKey.SectionQuestionsKey("b")))
}

func TestQuestionBank_SectionStatistics(t *testing.T) {
	ctx := context.Background()
	store := seedBank(t, map[string]int{"environment": 4})
	require.NoError(t, store.Questions().Upsert(ctx, &model.Question{
		ID: "environment_hard", SectionID: "environment", Difficulty: model.DifficultyHard, IsActive: true,
	}))
	bank := newBank(store, nil)

	st, err := bank.SectionStatistics(ctx, "environment")
	require.NoError(t, err)
	assert.Equal(t, "environment", st.SectionName)
	assert.Equal(t, 5, st.TotalQuestions)
	assert.Equal(t, 4, st.DifficultyBreakdown[model.DifficultyMedium])
	assert.Equal(t, 1, st.DifficultyBreakdown[model.DifficultyHard])
	assert.Equal(t, 0, st.DifficultyBreakdown[model.DifficultyEasy])

	_, err = bank.SectionStatistics(ctx, "missing")
	assert.ErrorIs(t, err, ErrSectionNotFound)
}

func TestQuestionBank_QuestionByID(t *testing.T) {
	ctx := context.Background()
	bank := newBank(seedBank(t, map[string]int{"environment": 2}), nil)

	q, err := bank.QuestionByID(ctx, "environment_001")
	require.NoError(t, err)
	assert.Equal(t, 0, q.CorrectAnswer)

	_, err = bank.QuestionByID(ctx, "environment_002")
	assert.ErrorIs(t, err, ErrQuestionNotFound, "inactive")

	_, err = bank.QuestionByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestQuestionBank_ListActive(t *testing.T) {
	ctx := context.Background()
	bank := newBank(seedBank(t, map[string]int{"environment": 5, "traffic_rules": 3}), nil)

	all, p, err := bank.ListActive(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.Equal(t, "environment_000", all[0].ID)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPerPage, p.PerPage)
	assert.Equal(t, 8, p.TotalItems)
	assert.Equal(t, 1, p.TotalPages)

	window, p, err := bank.ListActive(ctx, "environment", 2, 2)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "environment_002", window[0].ID)
	assert.Equal(t, 5, p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)

	_, _, err = bank.ListActive(ctx, "missing", 1, 10)
	assert.ErrorIs(t, err, ErrSectionNotFound)
}
