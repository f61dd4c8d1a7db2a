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

// QuestionHandler serves active questions with their answer keys, used to
// review results after an attempt.
type QuestionHandler struct {
	bank *service.QuestionBank
	log  zerolog.Logger
}

func NewQuestionHandler(bank *service.QuestionBank, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		bank: bank,
		log:  log.With().Str("component", "question_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/questions?section_id=&page=&per_page=
func (h *QuestionHandler) List(c *gin.Context) {
	var q model.QuestionListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, pagination, err := h.bank.ListActive(c.Request.Context(), q.SectionID, q.Page, q.PerPage)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// Get godoc
// GET /api/v1/questions/:question_id
func (h *QuestionHandler) Get(c *gin.Context) {
	q, err := h.bank.QuestionByID(c.Request.Context(), c.Param("question_id"))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}
