package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/response"
	"github.com/stemsi/theoryexam-backend/internal/service"
	"github.com/stemsi/theoryexam-backend/internal/validator"
)

// ExamHandler generates exams. Correct answers never leave this handler.
type ExamHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// GetFullExam godoc
// GET /api/v1/exams/full
func (h *ExamHandler) GetFullExam(c *gin.Context) {
	draw, err := h.examService.BuildFullExam(c.Request.Context())
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.FullExam{
		Questions:    model.ForTakers(draw.Questions),
		Total:        len(draw.Questions),
		Distribution: draw.Requested.AsMap(),
		Achieved:     draw.Achieved,
	})
}

// GetSectionExam godoc
// GET /api/v1/exams/section?section_id=<id>&count=<n>
// Without count every active question of the section is returned.
func (h *ExamHandler) GetSectionExam(c *gin.Context) {
	var q model.SectionExamQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sec, questions, err := h.examService.BuildSectionExam(c.Request.Context(), q.SectionID, q.Count)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.SectionExam{
		Section:   sec,
		Questions: model.ForTakers(questions),
		Total:     len(questions),
	})
}
