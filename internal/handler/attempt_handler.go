package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/response"
	"github.com/stemsi/theoryexam-backend/internal/service"
	"github.com/stemsi/theoryexam-backend/internal/validator"
)

// AttemptHandler handles the attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, log zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "attempt_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/attempts
func (h *AttemptHandler) Create(c *gin.Context) {
	var req model.CreateAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Create(c.Request.Context(), service.CreateAttemptParams{
		TestType:  req.TestType,
		SectionID: req.SectionID,
		WithTimer: req.WithTimer,
		UserIP:    c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// List godoc
// GET /api/v1/attempts?page=&per_page=
func (h *AttemptHandler) List(c *gin.Context) {
	var q model.AttemptListQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempts, pagination, err := h.attemptService.List(c.Request.Context(), q.Page, q.PerPage)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}

// Get godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Get(c.Request.Context(), id)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Submit godoc
// POST /api/v1/attempts/:id/submit
// One-shot: a second submission answers 400 ALREADY_COMPLETED.
func (h *AttemptHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), id, req.Answers, req.TimeSpent)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Statistics godoc
// GET /api/v1/attempts/statistics
func (h *AttemptHandler) Statistics(c *gin.Context) {
	stats, err := h.attemptService.Statistics(c.Request.Context())
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
