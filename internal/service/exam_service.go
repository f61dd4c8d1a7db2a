package service

import (
	"context"

	"github.com/stemsi/theoryexam-backend/internal/config"
	"github.com/stemsi/theoryexam-backend/internal/exam"
	"github.com/stemsi/theoryexam-backend/internal/model"
)

// ExamService generates question sets for new exams.
type ExamService struct {
	sampler *exam.Sampler
	policy  config.ExamPolicy
}

// NewExamService creates a new ExamService.
func NewExamService(sampler *exam.Sampler, policy config.ExamPolicy) *ExamService {
	return &ExamService{sampler: sampler, policy: policy}
}

// BuildFullExam draws a full exam using the configured quota table.
func (s *ExamService) BuildFullExam(ctx context.Context) (*exam.Draw, error) {
	return s.sampler.BuildFullExam(ctx, s.policy.FullQuota)
}

// BuildSectionExam returns practice questions for one section.
func (s *ExamService) BuildSectionExam(ctx context.Context, sectionID string, limit *int) (*model.Section, []model.Question, error) {
	return s.sampler.BuildSectionExam(ctx, sectionID, limit)
}
