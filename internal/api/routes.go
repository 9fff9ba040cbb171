package api

import "github.com/go-chi/chi/v5"

// BasePath prefixes every career coach endpoint. Health stays at the root.
const BasePath = "/api/v1/career-coach"

// Handlers groups every handler mounted by Routes.
type Handlers struct {
	Coach  *CoachHandler
	Stream *StreamHandler
	Health *HealthHandler
}

// Routes registers the public endpoints on r.
func (h Handlers) Routes(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		r.Post("/interview-questions", h.Coach.InterviewQuestions)
		r.Post("/learning-path", h.Coach.LearningPath)

		r.Route("/resume", func(r chi.Router) {
			r.Get("/", h.Coach.ListResumes)
			r.Get("/latest", h.Coach.LatestResume)
			r.Get("/job-role", h.Coach.ResumesByJobRole)
			r.Get("/tech-skills", h.Coach.ResumesBySkills)
			r.Get("/{id}", h.Coach.GetResume)
		})

		r.Post("/stream", h.Stream.StreamSSE)
		r.Get("/stream/ws", h.Stream.StreamWebSocket)
		r.Get("/sessions/{id}", h.Stream.SessionInfo)
	})

	r.Get("/health", h.Health.Health)
}
