package exam

import (
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

var ErrNoQuestions = errors.New("attempt has no questions to score against")

// ratioEpsilon absorbs float error in total*ratio (10*0.7 is 7.000000000000001).
const ratioEpsilon = 1e-9

// Scorer applies the exam policy's pass rules to attempts.
type Scorer struct {
	policy config.ExamPolicy
}

// NewScorer creates a Scorer for policy.
func NewScorer(policy config.ExamPolicy) *Scorer {
	return &Scorer{policy: policy}
}

// IsCorrect reports whether selected is the question's correct option.
func IsCorrect(q *model.Question, selected int) bool {
	return q.CorrectAnswer == selected
}

// Passed applies the pass rule for testType. Full exams use an absolute mark;
// section exams a proportion of their question count.
func (s *Scorer) Passed(testType model.TestType, correct, total int) (bool, error) {
	switch testType {
	case model.TestTypeFull:
		return correct >= s.policy.FullPassMark, nil
	case model.TestTypeSection:
		return float64(correct) >= float64(total)*s.policy.SectionPassRatio-ratioEpsilon, nil
	default:
		return false, fmt.Errorf("unknown test type %q", testType)
	}
}

// Score recomputes every derived field of a from answers. Running it twice
// over the same answers yields the same attempt.
func (s *Scorer) Score(a *model.Attempt, answers []model.Answer) error {
	if a.TotalQuestions <= 0 {
		return ErrNoQuestions
	}

	correct := 0
	for _, ans := range answers {
		if ans.IsCorrect {
			correct++
		}
	}

	passed, err := s.Passed(a.TestType, correct, a.TotalQuestions)
	if err != nil {
		return err
	}

	a.AnsweredQuestions = len(answers)
	a.CorrectAnswers = correct
	a.ScorePercentage = float64(correct) / float64(a.TotalQuestions) * 100
	a.Passed = passed
	a.TimeTakenSeconds = ElapsedSeconds(a.StartedAt, a.CompletedAt)
	return nil
}

// ElapsedSeconds returns the whole seconds between start and end, or nil when
// either is missing.
func ElapsedSeconds(start time.Time, end *time.Time) *int {
	if start.IsZero() || end == nil {
		return nil
	}
	secs := int(end.Sub(start) / time.Second)
	return &secs
}
