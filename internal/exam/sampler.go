// Package exam assembles theory exams from the question bank and scores
// completed attempts.
package exam

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

var ErrSectionNotFound = errors.New("section not found")

// QuestionSource is the read-only bank view the sampler draws from.
// SectionByID returns an error wrapping ErrSectionNotFound for unknown ids.
type QuestionSource interface {
	SectionByID(ctx context.Context, id string) (*model.Section, error)
	QuestionsInSection(ctx context.Context, sectionID string, activeOnly bool) ([]model.Question, error)
}

// Draw is the outcome of a full-exam generation.
type Draw struct {
	Questions []model.Question
	Requested config.Quota
	// Achieved is the number of questions actually drawn per section.
	Achieved map[string]int
}

// Sampler draws questions without replacement from the bank.
type Sampler struct {
	source QuestionSource
	log    zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand // nil uses the runtime-seeded global source
}

type SamplerOption func(*Sampler)

// WithRand makes every draw use r. Intended for reproducible tests.
func WithRand(r *rand.Rand) SamplerOption {
	return func(s *Sampler) { s.rng = r }
}

// NewSampler creates a Sampler over source.
func NewSampler(source QuestionSource, log zerolog.Logger, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		source: source,
		log:    log.With().Str("component", "sampler").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// BuildFullExam draws quota[i].Count active questions from each section and
// shuffles the combined set. Sections with fewer active questions than
// requested contribute all of them; nothing is padded from other sections.
func (s *Sampler) BuildFullExam(ctx context.Context, quota config.Quota) (*Draw, error) {
	draw := &Draw{
		Questions: make([]model.Question, 0, quota.Total()),
		Requested: quota,
		Achieved:  make(map[string]int, len(quota)),
	}

	for _, sq := range quota {
		if _, dup := draw.Achieved[sq.SectionID]; dup {
			s.log.Warn().Str("section_id", sq.SectionID).Msg("Section listed twice in quota, ignoring repeat")
			continue
		}

		available, err := s.source.QuestionsInSection(ctx, sq.SectionID, true)
		if err != nil {
			return nil, fmt.Errorf("questions in section %s: %w", sq.SectionID, err)
		}

		if len(available) < sq.Count {
			s.log.Warn().
				Str("section_id", sq.SectionID).
				Int("requested", sq.Count).
				Int("available", len(available)).
				Msg("Section short-filled")
		}

		picked := s.pick(available, sq.Count)
		draw.Achieved[sq.SectionID] = len(picked)
		draw.Questions = append(draw.Questions, picked...)
	}

	s.shuffle(draw.Questions)
	return draw, nil
}

// BuildSectionExam returns a section's active questions. With a nil limit, or
// a limit not smaller than what is available, every active question is
// returned in question id order; otherwise limit questions are drawn at random.
func (s *Sampler) BuildSectionExam(ctx context.Context, sectionID string, limit *int) (*model.Section, []model.Question, error) {
	section, err := s.source.SectionByID(ctx, sectionID)
	if err != nil {
		return nil, nil, err
	}

	available, err := s.source.QuestionsInSection(ctx, sectionID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("questions in section %s: %w", sectionID, err)
	}

	if limit != nil && *limit < len(available) {
		return section, s.pick(available, *limit), nil
	}

	ordered := append([]model.Question(nil), available...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return section, ordered, nil
}

// pick returns n distinct questions chosen uniformly at random, or a copy of
// all of them when n covers the whole pool. The input is never reordered.
func (s *Sampler) pick(pool []model.Question, n int) []model.Question {
	if n <= 0 {
		return []model.Question{}
	}
	out := append([]model.Question(nil), pool...)
	if n >= len(out) {
		return out
	}

	// Partial Fisher-Yates: the first n slots end up as a uniform sample.
	for i := 0; i < n; i++ {
		j := i + s.intN(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:n]
}

func (s *Sampler) shuffle(questions []model.Question) {
	swap := func(i, j int) { questions[i], questions[j] = questions[j], questions[i] }
	if s.rng == nil {
		rand.Shuffle(len(questions), swap)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(questions), swap)
}

func (s *Sampler) intN(n int) int {
	if s.rng == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
