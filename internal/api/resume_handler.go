package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/career-coach/internal/api/shared"
	"github.com/phrazzld/career-coach/internal/domain"
)

// ListResumes handles GET /resume.
func (h *CoachHandler) ListResumes(w http.ResponseWriter, r *http.Request) {
	resumes, err := h.coach.ListResumes(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list resumes")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Resumes retrieved successfully", resumes)
}

// GetResume handles GET /resume/{id}.
func (h *CoachHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resume, err := h.coach.GetResume(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get resume")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Resume retrieved successfully", resume)
}

// ResumesByJobRole handles GET /resume/job-role?role=.
func (h *CoachHandler) ResumesByJobRole(w http.ResponseWriter, r *http.Request) {
	role := strings.TrimSpace(r.URL.Query().Get("role"))
	if role == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyJobRole), "")
		return
	}

	resumes, err := h.coach.ResumesByJobRole(r.Context(), role)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search resumes")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Resumes retrieved successfully", resumes)
}

// ResumesBySkills handles GET /resume/tech-skills?skills=a,b.
func (h *CoachHandler) ResumesBySkills(w http.ResponseWriter, r *http.Request) {
	skills := getQuerySkills(r, "skills")
	if len(skills) == 0 {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTechSkills), "")
		return
	}

	resumes, err := h.coach.ResumesBySkills(r.Context(), skills)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search resumes")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Resumes retrieved successfully", resumes)
}

// LatestResume handles GET /resume/latest.
func (h *CoachHandler) LatestResume(w http.ResponseWriter, r *http.Request) {
	resume, err := h.coach.LatestResume(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get latest resume")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Latest resume retrieved successfully", resume)
}
