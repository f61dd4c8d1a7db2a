package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/theoryexam-backend/internal/response"
	"github.com/stemsi/theoryexam-backend/internal/service"
)

// failFromError maps a service error onto the response envelope. Anything
// unrecognised is logged and reported as an internal error.
func failFromError(c *gin.Context, log zerolog.Logger, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
	case errors.Is(err, service.ErrSectionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSectionNotFound)
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusBadRequest, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrEmptySection):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptySection)
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
