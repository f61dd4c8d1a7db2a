package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

// seedBank fills a memory store with one section per entry of counts. Every
// question's correct answer is option 0; each section also gets one inactive
// question.
func seedBank(t *testing.T, counts map[string]int) *repository.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	for sectionID, n := range counts {
		require.NoError(t, store.Sections().Upsert(ctx, &model.Section{
			ID:   sectionID,
			Name: model.Localized{model.LangEnglish: sectionID},
		}))
		for i := 0; i <= n; i++ {
			q := &model.Question{
				ID:            fmt.Sprintf("%s_%03d", sectionID, i),
				SectionID:     sectionID,
				Text:          model.Localized{model.LangEnglish: "q"},
				Options:       model.LocalizedOptions{model.LangEnglish: {"right", "wrong"}},
				CorrectAnswer: 0,
				Difficulty:    model.DifficultyMedium,
				IsActive:      i < n,
			}
			require.NoError(t, store.Questions().Upsert(ctx, q))
		}
	}
	return store
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func newBank(store *repository.MemoryStore, rdb *redis.Client) *QuestionBank {
	return NewQuestionBank(store.Sections(), store.Questions(), rdb, time.Minute, zerolog.Nop())
}
