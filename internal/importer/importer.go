// Package importer loads question bank documents into the section and
// question stores.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/repository"
)

// Document is the question bank JSON layout.
type Document struct {
	Test struct {
		Sections map[string]SectionDoc `json:"sections"`
	} `json:"swedish_driving_theory_test"`
}

type SectionDoc struct {
	Name              string        `json:"section_name"`
	Description       string        `json:"section_description"`
	NumberOfQuestions int           `json:"number_of_questions"`
	Questions         []QuestionDoc `json:"questions"`
}

type QuestionDoc struct {
	ID            string   `json:"question_id"`
	Text          string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	ImageURL      string   `json:"image_url"`
	Difficulty    string   `json:"difficulty"`
}

var sectionOrder = map[string]int{
	"vehicle_knowledge_and_manoeuvring": 1,
	"environment":                       2,
	"traffic_safety":                    3,
	"traffic_rules":                     4,
	"personal_conditions":               5,
}

var sectionColors = map[string]string{
	"vehicle_knowledge_and_manoeuvring": "bg-purple-500",
	"environment":                       "bg-yellow-500",
	"traffic_safety":                    "bg-blue-500",
	"traffic_rules":                     "bg-green-500",
	"personal_conditions":               "bg-red-500",
}

const (
	defaultOrder = 99
	defaultColor = "bg-blue-500"
)

// Parse decodes a document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if len(doc.Test.Sections) == 0 {
		return nil, fmt.Errorf("document has no sections")
	}
	return &doc, nil
}

// ParseFile decodes the document stored at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Summary counts what an import wrote.
type Summary struct {
	Sections  int `json:"sections"`
	Questions int `json:"questions"`
	Skipped   int `json:"skipped"`
}

// Importer upserts documents into the stores.
type Importer struct {
	sections  repository.SectionStore
	questions repository.QuestionStore
	lang      string
	log       zerolog.Logger
}

// New creates an Importer writing texts under lang.
func New(sections repository.SectionStore, questions repository.QuestionStore, lang string, log zerolog.Logger) *Importer {
	if lang == "" {
		lang = model.LangArabic
	}
	return &Importer{
		sections:  sections,
		questions: questions,
		lang:      lang,
		log:       log.With().Str("component", "importer").Logger(),
	}
}

// Import upserts every section and question of doc. Questions that fail
// validation are skipped and counted. Texts are written under the importer's
// language only; variants already stored in other languages are kept.
func (im *Importer) Import(ctx context.Context, doc *Document) (*Summary, error) {
	keys := make([]string, 0, len(doc.Test.Sections))
	for k := range doc.Test.Sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary := &Summary{}
	for _, key := range keys {
		sd := doc.Test.Sections[key]

		sec := &model.Section{
			ID:            key,
			Name:          model.Localized{im.lang: sd.Name},
			Description:   model.Localized{im.lang: sd.Description},
			QuestionCount: sd.NumberOfQuestions,
			Color:         defaultColor,
			Order:         defaultOrder,
		}
		if c, ok := sectionColors[key]; ok {
			sec.Color = c
		}
		if o, ok := sectionOrder[key]; ok {
			sec.Order = o
		}

		if err := im.sections.Upsert(ctx, sec); err != nil {
			return summary, fmt.Errorf("upsert section %s: %w", key, err)
		}
		summary.Sections++

		for _, qd := range sd.Questions {
			q := im.toQuestion(key, qd)
			if err := q.Validate(); err != nil {
				im.log.Warn().Err(err).Str("section_id", key).Msg("Skipping invalid question")
				summary.Skipped++
				continue
			}
			if err := im.questions.Upsert(ctx, q); err != nil {
				return summary, fmt.Errorf("upsert question %s: %w", qd.ID, err)
			}
			summary.Questions++
		}

		im.log.Info().
			Str("section_id", key).
			Int("questions", len(sd.Questions)).
			Msg("Section imported")
	}
	return summary, nil
}

func (im *Importer) toQuestion(sectionID string, qd QuestionDoc) *model.Question {
	difficulty := model.Difficulty(qd.Difficulty)
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	q := &model.Question{
		ID:            qd.ID,
		SectionID:     sectionID,
		Text:          model.Localized{im.lang: qd.Text},
		Options:       model.LocalizedOptions{im.lang: qd.Options},
		CorrectAnswer: qd.CorrectAnswer,
		Explanation:   model.Localized{},
		ImageURL:      qd.ImageURL,
		Difficulty:    difficulty,
		IsActive:      true,
	}
	if qd.Explanation != "" {
		q.Explanation[im.lang] = qd.Explanation
	}
	return q
}
