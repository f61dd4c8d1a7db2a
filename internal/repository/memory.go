package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

// MemoryStore keeps the bank and attempts in process memory. It backs the
// "memory" storage driver and the service tests.
type MemoryStore struct {
	mu           sync.RWMutex
	sections     map[string]model.Section
	questions    map[string]model.Question
	attempts     map[uuid.UUID]model.Attempt
	answers      map[uuid.UUID][]model.Answer
	nextAnswerID int64
	now          func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sections:  make(map[string]model.Section),
		questions: make(map[string]model.Question),
		attempts:  make(map[uuid.UUID]model.Attempt),
		answers:   make(map[uuid.UUID][]model.Answer),
		now:       time.Now,
	}
}

// Sections returns the SectionStore view of m.
func (m *MemoryStore) Sections() SectionStore { return memorySections{m} }

// Questions returns the QuestionStore view of m.
func (m *MemoryStore) Questions() QuestionStore { return memoryQuestions{m} }

// Attempts returns the AttemptStore view of m.
func (m *MemoryStore) Attempts() AttemptStore { return memoryAttempts{m} }

// ─── Sections ────────────────────────────────────────────────────────────

type memorySections struct{ m *MemoryStore }

func (s memorySections) List(_ context.Context) ([]model.Section, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]model.Section, 0, len(s.m.sections))
	for _, sec := range s.m.sections {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s memorySections) GetByID(_ context.Context, id string) (*model.Section, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	sec, ok := s.m.sections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sec, nil
}

func (s memorySections) Upsert(_ context.Context, sec *model.Section) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	now := s.m.now()
	if existing, ok := s.m.sections[sec.ID]; ok {
		sec.CreatedAt = existing.CreatedAt
		sec.Name = existing.Name.Merge(sec.Name)
		sec.Description = existing.Description.Merge(sec.Description)
	} else {
		sec.CreatedAt = now
	}
	sec.UpdatedAt = now
	s.m.sections[sec.ID] = *sec
	return nil
}

// ─── Questions ───────────────────────────────────────────────────────────

type memoryQuestions struct{ m *MemoryStore }

func (q memoryQuestions) ListBySection(_ context.Context, sectionID string, activeOnly bool) ([]model.Question, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()

	var out []model.Question
	for _, question := range q.m.questions {
		if question.SectionID != sectionID {
			continue
		}
		if activeOnly && !question.IsActive {
			continue
		}
		out = append(out, question)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (q memoryQuestions) ListActive(_ context.Context, sectionID string, limit, offset int) ([]model.Question, int, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()

	var all []model.Question
	for _, question := range q.m.questions {
		if !question.IsActive || (sectionID != "" && question.SectionID != sectionID) {
			continue
		}
		all = append(all, question)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SectionID != all[j].SectionID {
			return all[i].SectionID < all[j].SectionID
		}
		return all[i].ID < all[j].ID
	})
	return page(all, limit, offset), len(all), nil
}

func (q memoryQuestions) GetByIDs(_ context.Context, ids []string) (map[string]model.Question, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()

	out := make(map[string]model.Question, len(ids))
	for _, id := range ids {
		if question, ok := q.m.questions[id]; ok {
			out[id] = question
		}
	}
	return out, nil
}

func (q memoryQuestions) CountActiveByDifficulty(_ context.Context, sectionID string) (map[model.Difficulty]int, error) {
	q.m.mu.RLock()
	defer q.m.mu.RUnlock()

	counts := map[model.Difficulty]int{
		model.DifficultyEasy:   0,
		model.DifficultyMedium: 0,
		model.DifficultyHard:   0,
	}
	for _, question := range q.m.questions {
		if question.SectionID == sectionID && question.IsActive {
			counts[question.Difficulty]++
		}
	}
	return counts, nil
}

func (q memoryQuestions) Upsert(_ context.Context, question *model.Question) error {
	q.m.mu.Lock()
	defer q.m.mu.Unlock()

	if _, ok := q.m.sections[question.SectionID]; !ok {
		return ErrNotFound
	}

	now := q.m.now()
	if existing, ok := q.m.questions[question.ID]; ok {
		question.CreatedAt = existing.CreatedAt
		question.Text = existing.Text.Merge(question.Text)
		question.Options = existing.Options.Merge(question.Options)
		question.Explanation = existing.Explanation.Merge(question.Explanation)
	} else {
		question.CreatedAt = now
	}
	question.UpdatedAt = now
	q.m.questions[question.ID] = *question
	return nil
}

// ─── Attempts ────────────────────────────────────────────────────────────

type memoryAttempts struct{ m *MemoryStore }

func (a memoryAttempts) Create(_ context.Context, attempt *model.Attempt) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	attempt.ID = uuid.New()
	stored := *attempt
	stored.Answers = nil
	a.m.attempts[attempt.ID] = stored
	return nil
}

func (a memoryAttempts) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	stored, ok := a.m.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	stored.Answers = a.m.answersWithText(a.m.answers[id])
	return &stored, nil
}

func (a memoryAttempts) List(_ context.Context, limit, offset int) ([]model.Attempt, int, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	all := make([]model.Attempt, 0, len(a.m.attempts))
	for _, attempt := range a.m.attempts {
		all = append(all, attempt)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].StartedAt.After(all[j].StartedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	out := page(all, limit, offset)
	for i := range out {
		out[i].Answers = a.m.answersWithText(a.m.answers[out[i].ID])
	}
	return out, len(all), nil
}

// Complete holds the write lock for the whole completion, so the claim, the
// answers and the derived fields become visible together or not at all.
func (a memoryAttempts) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, fn CompleteFunc) (*model.Attempt, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	stored, ok := a.m.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if stored.Completed() {
		return nil, ErrAlreadyCompleted
	}

	claimed := stored
	claimed.CompletedAt = &completedAt

	tx := &memoryCompletionTx{
		m:      a.m,
		staged: append([]model.Answer{}, a.m.answers[id]...),
		nextID: a.m.nextAnswerID,
	}
	if err := fn(ctx, tx, &claimed); err != nil {
		return nil, err
	}

	a.m.nextAnswerID = tx.nextID
	a.m.answers[id] = tx.staged

	persisted := claimed
	persisted.Answers = nil
	a.m.attempts[id] = persisted
	return &claimed, nil
}

func (a memoryAttempts) Statistics(_ context.Context) (*model.AttemptStatistics, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	st := &model.AttemptStatistics{}
	for _, attempt := range a.m.attempts {
		if !attempt.Completed() {
			continue
		}
		st.TotalAttempts++
		if attempt.Passed {
			st.PassedAttempts++
		}
		if attempt.TestType == model.TestTypeFull {
			st.FullTestAttempts++
		}
	}
	return finishStatistics(st), nil
}

// memoryCompletionTx stages answers until Complete commits them. It runs
// under the store's write lock and must not take it again.
type memoryCompletionTx struct {
	m      *MemoryStore
	staged []model.Answer
	nextID int64
}

func (t *memoryCompletionTx) InsertAnswer(_ context.Context, ans *model.Answer) error {
	for _, existing := range t.staged {
		if existing.QuestionID == ans.QuestionID {
			return ErrDuplicateAnswer
		}
	}
	t.nextID++
	ans.ID = t.nextID
	t.staged = append(t.staged, *ans)
	return nil
}

func (t *memoryCompletionTx) ListAnswers(_ context.Context, _ uuid.UUID) ([]model.Answer, error) {
	return t.m.answersWithText(t.staged), nil
}

// answersWithText copies answers and fills in the current question text.
// Callers hold m.mu.
func (m *MemoryStore) answersWithText(answers []model.Answer) []model.Answer {
	out := make([]model.Answer, len(answers))
	for i, ans := range answers {
		if q, ok := m.questions[ans.QuestionID]; ok {
			ans.QuestionText = q.Text
		}
		out[i] = ans
	}
	return out
}

// page returns the [offset, offset+limit) window of items.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]T{}, items[offset:end]...)
}
