package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/model"
	"github.com/stemsi/theoryexam-backend/internal/response"
	"github.com/stemsi/theoryexam-backend/internal/service"
)

// SectionHandler serves the read-only section catalogue.
type SectionHandler struct {
	bank *service.QuestionBank
	log  zerolog.Logger
}

func NewSectionHandler(bank *service.QuestionBank, log zerolog.Logger) *SectionHandler {
	return &SectionHandler{
		bank: bank,
		log:  log.With().Str("component", "section_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/sections
func (h *SectionHandler) List(c *gin.Context) {
	sections, err := h.bank.ListSections(c.Request.Context())
	if err != nil {
		failFromError(c, h.log, err)
		return
	}

	if sections == nil {
		sections = []model.Section{}
	}

	response.Success(c, http.StatusOK, gin.H{"sections": sections})
}

// Get godoc
// GET /api/v1/sections/:section_id
func (h *SectionHandler) Get(c *gin.Context) {
	sec, err := h.bank.SectionByID(c.Request.Context(), c.Param("section_id"))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"section": sec})
}

// Statistics godoc
// GET /api/v1/sections/:section_id/statistics
func (h *SectionHandler) Statistics(c *gin.Context) {
	stats, err := h.bank.SectionStatistics(c.Request.Context(), c.Param("section_id"))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
