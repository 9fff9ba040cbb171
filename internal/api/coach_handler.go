package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/career-coach/internal/api/shared"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/service"
)

// CoachHandler serves the synchronous generation endpoints and resume queries.
type CoachHandler struct {
	coach  service.CareerCoachService
	logger *slog.Logger
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coach service.CareerCoachService, logger *slog.Logger) *CoachHandler {
	if coach == nil {
		panic("coach service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CoachHandler{
		coach:  coach,
		logger: logger.With(slog.String("component", "coach_handler")),
	}
}

// InterviewQuestions handles POST /interview-questions.
func (h *CoachHandler) InterviewQuestions(w http.ResponseWriter, r *http.Request) {
	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	questions, err := h.coach.GenerateInterviewQuestions(r.Context(), profile)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate interview questions")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Interview questions generated successfully", questions)
}

// LearningPath handles POST /learning-path.
func (h *CoachHandler) LearningPath(w http.ResponseWriter, r *http.Request) {
	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	path, err := h.coach.GenerateLearningPath(r.Context(), profile)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate learning path")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, "Learning path generated successfully", path)
}

// decodeProfile reads and validates a CareerProfile body, writing a 400 on failure.
func decodeProfile(w http.ResponseWriter, r *http.Request) (domain.CareerProfile, bool) {
	var profile domain.CareerProfile
	if err := shared.DecodeJSON(r, &profile); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Debug("invalid request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return domain.CareerProfile{}, false
	}
	if err := shared.ValidateRequest(profile); err != nil {
		HandleAPIError(w, r, err, "Validation error")
		return domain.CareerProfile{}, false
	}
	return profile, true
}
