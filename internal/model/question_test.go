package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{
		ID:            "env_001",
		SectionID:     "environment",
		Text:          Localized{LangEnglish: "What lowers fuel use?"},
		Options:       LocalizedOptions{LangEnglish: {"Idling", "Smooth driving", "Roof box"}},
		CorrectAnswer: 1,
		Explanation:   Localized{LangEnglish: "Even speed saves fuel."},
		Difficulty:    DifficultyEasy,
		IsActive:      true,
	}
}

func TestQuestion_Validate(t *testing.T) {
	q := validQuestion()
	require.NoError(t, q.Validate())

	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"missing id", func(q *Question) { q.ID = "" }},
		{"missing section", func(q *Question) { q.SectionID = "" }},
		{"no text", func(q *Question) { q.Text = Localized{LangArabic: ""} }},
		{"no options", func(q *Question) { q.Options = nil }},
		{"correct answer too large", func(q *Question) { q.CorrectAnswer = 3 }},
		{"negative correct answer", func(q *Question) { q.CorrectAnswer = -1 }},
		{"option lists differ", func(q *Question) { q.Options[LangSwedish] = []string{"a"} }},
		{"unknown difficulty", func(q *Question) { q.Difficulty = "extreme" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			assert.Error(t, q.Validate())
		})
	}
}

func TestLocalized_Primary(t *testing.T) {
	assert.Equal(t, "ar", Localized{LangArabic: "ar", LangEnglish: "en"}.Primary())
	assert.Equal(t, "en", Localized{LangEnglish: "en", LangSwedish: "sv"}.Primary())
	assert.Equal(t, "sv", Localized{LangSwedish: "sv"}.Primary())
	assert.Empty(t, Localized{}.Primary())
}

func TestQuestion_ForTakerHidesAnswerKey(t *testing.T) {
	q := validQuestion()

	raw, err := json.Marshal(ForTakers([]Question{q}))
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "env_001", out[0]["question_id"])
	assert.NotContains(t, out[0], "correct_answer")
	assert.NotContains(t, out[0], "explanation")
	assert.NotContains(t, out[0], "is_active")
}

func TestLocalized_Merge(t *testing.T) {
	base := Localized{LangArabic: "AR", LangSwedish: "SV"}
	merged := base.Merge(Localized{LangEnglish: "EN", LangSwedish: "SV2"})

	assert.Equal(t, Localized{LangArabic: "AR", LangEnglish: "EN", LangSwedish: "SV2"}, merged)
	assert.Equal(t, Localized{LangArabic: "AR", LangSwedish: "SV"}, base, "receiver is left untouched")
	assert.Equal(t, Localized{LangEnglish: "EN"}, Localized(nil).Merge(Localized{LangEnglish: "EN"}))
}

func TestLocalizedOptions_Merge(t *testing.T) {
	base := LocalizedOptions{LangArabic: {"a", "b"}}
	merged := base.Merge(LocalizedOptions{LangEnglish: {"x", "y"}})

	assert.Equal(t, []string{"a", "b"}, merged[LangArabic])
	assert.Equal(t, []string{"x", "y"}, merged[LangEnglish])
	assert.Len(t, base, 1)
}
