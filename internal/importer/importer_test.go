package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "swedish_driving_theory_test": {
    "sections": {
      "environment": {
        "section_name": "Environment",
        "section_description": "Eco driving",
        "number_of_questions": 3,
        "questions": [
          {"question_id": "env_1", "question_text": "Q1", "options": ["a", "b"], "correct_answer": 1, "difficulty": "easy"},
          {"question_id": "env_2", "question_text": "Q2", "options": ["a", "b", "c"], "correct_answer": 0, "explanation": "because"},
          {"question_id": "env_bad", "question_text": "Q3", "options": ["a"], "correct_answer": 4}
        ]
      },
      "night_driving": {
        "section_name": "Night driving",
        "section_description": "",
        "number_of_questions": 0,
        "questions": []
      }
    }
  }
}`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	assert.Len(t, doc.Test.Sections, 2)
	assert.Len(t, doc.Test.Sections["environment"].Questions, 3)

	_, err = Parse(strings.NewReader(`{"swedish_driving_theory_test": {"sections": {}}}`))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	im := New(store.Sections(), store.Questions(), model.LangEnglish, zerolog.Nop())
	summary, err := im.Import(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Sections: 2, Questions: 2, Skipped: 1}, summary)

	env, err := store.Sections().GetByID(ctx, "environment")
	require.NoError(t, err)
	assert.Equal(t, "Environment", env.Name[model.LangEnglish])
	assert.Equal(t, 2, env.Order)
	assert.Equal(t, "bg-yellow-500", env.Color)

	other, err := store.Sections().GetByID(ctx, "night_driving")
	require.NoError(t, err)
	assert.Equal(t, defaultOrder, other.Order)
	assert.Equal(t, defaultColor, other.Color)

	qs, err := store.Questions().ListBySection(ctx, "environment", true)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, model.DifficultyEasy, qs[0].Difficulty)
	assert.Equal(t, model.DifficultyMedium, qs[1].Difficulty)
	assert.Equal(t, "because", qs[1].Explanation[model.LangEnglish])
	assert.True(t, qs[1].IsActive)
}

func TestImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	doc, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	im := New(store.Sections(), store.Questions(), "", zerolog.Nop())
	_, err = im.Import(ctx, doc)
	require.NoError(t, err)
	_, err = im.Import(ctx, doc)
	require.NoError(t, err)

	qs, err := store.Questions().ListBySection(ctx, "environment", false)
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, "Q1", qs[0].Text[model.LangArabic])
}

const englishDoc = `{
  "swedish_driving_theory_test": {
    "sections": {
      "environment": {
        "section_name": "Environment",
        "section_description": "Eco driving",
        "number_of_questions": 1,
        "questions": [
          {"question_id": "env_1", "question_text": "EN text", "options": ["yes", "no"], "correct_answer": 1}
        ]
      }
    }
  }
}`

const arabicDoc = `{
  "swedish_driving_theory_test": {
    "sections": {
      "environment": {
        "section_name": "البيئة",
        "section_description": "",
        "number_of_questions": 1,
        "questions": [
          {"question_id": "env_1", "question_text": "AR text", "options": ["نعم", "لا"], "correct_answer": 1, "explanation": "AR why"}
        ]
      }
    }
  }
}`

func TestImport_SecondLanguageKeepsFirst(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	for _, run := range []struct {
		lang string
		raw  string
	}{
		{model.LangArabic, arabicDoc},
		{model.LangEnglish, englishDoc},
	} {
		doc, err := Parse(strings.NewReader(run.raw))
		require.NoError(t, err)
		_, err = New(store.Sections(), store.Questions(), run.lang, zerolog.Nop()).Import(ctx, doc)
		require.NoError(t, err)
	}

	got, err := store.Questions().GetByIDs(ctx, []string{"env_1"})
	require.NoError(t, err)
	q := got["env_1"]
	assert.Equal(t, model.Localized{model.LangArabic: "AR text", model.LangEnglish: "EN text"}, q.Text)
	assert.Equal(t, []string{"نعم", "لا"}, q.Options[model.LangArabic])
	assert.Equal(t, []string{"yes", "no"}, q.Options[model.LangEnglish])
	assert.Equal(t, "AR why", q.Explanation[model.LangArabic])

	sec, err := store.Sections().GetByID(ctx, "environment")
	require.NoError(t, err)
	assert.Equal(t, "البيئة", sec.Name[model.LangArabic])
	assert.Equal(t, "Environment", sec.Name[model.LangEnglish])
}
