package model

import (
	"errors"
	"fmt"
	"time"
)

// Languages a question may be written in. LangArabic is the primary one.
const (
	LangArabic  = "ar"
	LangEnglish = "en"
	LangSwedish = "sv"
)

// Localized maps a language code to text.
type Localized map[string]string

// Primary returns the Arabic text, falling back to any non-empty variant.
func (l Localized) Primary() string {
	if s := l[LangArabic]; s != "" {
		return s
	}
	for _, lang := range []string{LangEnglish, LangSwedish} {
		if s := l[lang]; s != "" {
			return s
		}
	}
	return ""
}

// Merge returns a copy of l with every variant of other laid over it.
// Languages other does not carry keep their text from l.
func (l Localized) Merge(other Localized) Localized {
	out := make(Localized, len(l)+len(other))
	for lang, s := range l {
		out[lang] = s
	}
	for lang, s := range other {
		out[lang] = s
	}
	return out
}

// LocalizedOptions maps a language code to the ordered answer options.
type LocalizedOptions map[string][]string

// Merge returns a copy of o with every variant of other laid over it.
func (o LocalizedOptions) Merge(other LocalizedOptions) LocalizedOptions {
	out := make(LocalizedOptions, len(o)+len(other))
	for lang, opts := range o {
		out[lang] = opts
	}
	for lang, opts := range other {
		out[lang] = opts
	}
	return out
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty tags.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a multiple-choice question of the bank.
type Question struct {
	ID            string           `json:"question_id"`
	SectionID     string           `json:"section_id"`
	Text          Localized        `json:"text"`
	Options       LocalizedOptions `json:"options"`
	CorrectAnswer int              `json:"correct_answer"`
	Explanation   Localized        `json:"explanation"`
	ImageURL      string           `json:"image_url"`
	Difficulty    Difficulty       `json:"difficulty"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Validate enforces the text and answer-index invariants of a question.
func (q *Question) Validate() error {
	if q.ID == "" {
		return errors.New("question id is required")
	}
	if q.SectionID == "" {
		return fmt.Errorf("question %s: section is required", q.ID)
	}
	if q.Text.Primary() == "" {
		return fmt.Errorf("question %s: at least one text variant is required", q.ID)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %s: options are required", q.ID)
	}

	size := -1
	for lang, opts := range q.Options {
		if size == -1 {
			size = len(opts)
		} else if len(opts) != size {
			return fmt.Errorf("question %s: %s options differ in length", q.ID, lang)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= size {
		return fmt.Errorf("question %s: correct_answer %d out of range [0,%d)", q.ID, q.CorrectAnswer, size)
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	return nil
}

// QuestionForTaker is a question without its correct answer or explanation.
type QuestionForTaker struct {
	ID        string           `json:"question_id"`
	SectionID string           `json:"section_id"`
	Text      Localized        `json:"text"`
	Options   LocalizedOptions `json:"options"`
	ImageURL  string           `json:"image_url,omitempty"`
}

// ForTaker strips the answer key from q.
func (q *Question) ForTaker() QuestionForTaker {
	return QuestionForTaker{
		ID:        q.ID,
		SectionID: q.SectionID,
		Text:      q.Text,
		Options:   q.Options,
		ImageURL:  q.ImageURL,
	}
}

// ForTakers converts a question set into its test-taker view.
func ForTakers(questions []Question) []QuestionForTaker {
	out := make([]QuestionForTaker, len(questions))
	for i := range questions {
		out[i] = questions[i].ForTaker()
	}
	return out
}
