package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/stemsi/theoryexam-backend/internal/exam"
	"github.com/stemsi/theoryexam-backend/internal/repository"
)

// Domain Errors
var (
	ErrSectionNotFound  = exam.ErrSectionNotFound
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrAlreadyCompleted = repository.ErrAlreadyCompleted
	ErrEmptySection     = errors.New("section has no active questions")
)

// ValidationError reports request fields that failed domain validation.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
