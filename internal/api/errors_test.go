package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/service"
	"github.com/phrazzld/career-coach/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "nil error", err: nil, expectedStatus: http.StatusInternalServerError},
		{name: "validation", err: domain.CareerProfile{}.Validate(), expectedStatus: http.StatusBadRequest},
		{name: "invalid id", err: domain.ErrInvalidID, expectedStatus: http.StatusBadRequest},
		{name: "resume not found", err: service.ErrResumeNotFound, expectedStatus: http.StatusNotFound},
		{
			name:           "wrapped content blocked",
			err:            service.NewCoachServiceError("generate_interview_questions", "generation failed", generation.ErrContentBlocked),
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{name: "pool full", err: fmt.Errorf("%w: queue capacity 4 reached", task.ErrPoolFull), expectedStatus: http.StatusServiceUnavailable},
		{name: "transient", err: generation.ErrTransientFailure, expectedStatus: http.StatusServiceUnavailable},
		{name: "no content", err: service.ErrNoContent, expectedStatus: http.StatusBadGateway},
		{name: "invalid response", err: generation.ErrInvalidResponse, expectedStatus: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStatus, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{name: "nil uses default", err: nil, want: "An unexpected error occurred"},
		{
			name: "empty summary",
			err:  domain.CareerProfile{JobRole: "dev", TechSkills: []string{"Go"}}.Validate(),
			want: "Invalid request: career summary cannot be empty",
		},
		{
			name: "empty skills behind service wrapper",
			err: service.NewCoachServiceError("generate_learning_path", "invalid profile",
				domain.CareerProfile{CareerSummary: "x", JobRole: "dev"}.Validate()),
			want: "Invalid request: tech skills must contain at least one non-blank entry",
		},
		{name: "not found", err: service.ErrResumeNotFound, want: "Resume not found"},
		{name: "pool full", err: task.ErrPoolFull, want: "Server is busy, please retry shortly"},
		{
			name:     "internal details hidden",
			err:      errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			fallback: "Failed to generate learning path",
			want:     "Failed to generate learning path",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err, tc.fallback))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(domain.CareerProfile{CareerSummary: "summary", TechSkills: []string{"Go"}})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	assert.Equal(t, "Invalid jobRole: required field", SanitizeValidationError(verrs))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(nil))
}
