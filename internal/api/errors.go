package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/career-coach/internal/api/shared"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/service"
	"github.com/phrazzld/career-coach/internal/store"
	"github.com/phrazzld/career-coach/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Bad request errors
	case errors.As(err, &validationErrs),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrResumeNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// The model refused the prompt
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Capacity and transient upstream failures
	case errors.Is(err, task.ErrPoolFull),
		errors.Is(err, task.ErrPoolClosed),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	// Upstream model answered badly
	case errors.Is(err, service.ErrNoContent),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
// fallback is used for errors without a specific message.
func GetSafeErrorMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = "An unexpected error occurred"
	}
	if err == nil {
		return fallback
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, domain.ErrEmptyCareerSummary),
		errors.Is(err, domain.ErrEmptyJobRole),
		errors.Is(err, domain.ErrEmptyTechSkills):
		return "Invalid request: " + innermost(err).Error()
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"
	case errors.Is(err, service.ErrResumeNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Resume not found"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by the language model's safety filters"
	case errors.Is(err, task.ErrPoolFull),
		errors.Is(err, task.ErrPoolClosed):
		return "Server is busy, please retry shortly"
	case errors.Is(err, generation.ErrTransientFailure):
		return "The language model is temporarily unavailable"
	default:
		return fallback
	}
}

// SanitizeValidationError turns the first validator failure into a message
// naming the field and the broken rule.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation error"
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", lowerFirst(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// HandleAPIError logs err and writes the mapped status and safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err, fallback), err)
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "uuid":
		return "invalid ID format"
	default:
		return "validation failed"
	}
}

func innermost(err error) error {
	for {
		// Joined wrappers (fmt.Errorf with two %w) expose Unwrap() []error;
		// the last entry is the specific cause.
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			errs := multi.Unwrap()
			if len(errs) == 0 {
				return err
			}
			err = errs[len(errs)-1]
			continue
		}
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
