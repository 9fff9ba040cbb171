package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/cache"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/generation"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/store"
)

// Cache key kinds for generated artifacts.
const (
	KindInterviewQuestions = "interview"
	KindLearningPath       = "learning"
)

// ResumeRepository is the persistence the service needs; store.ResumeStore satisfies it.
type ResumeRepository interface {
	Create(ctx context.Context, resume *domain.ResumeInfo) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error)
	List(ctx context.Context) ([]*domain.ResumeInfo, error)
	FindByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error)
	FindBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error)
	Latest(ctx context.Context) (*domain.ResumeInfo, error)
	FindDuplicate(ctx context.Context, profile domain.CareerProfile) (*domain.ResumeInfo, error)
}

// CareerCoachService generates coaching artifacts and serves stored resumes.
type CareerCoachService interface {
	// GenerateInterviewQuestions stores the profile and returns up to five tailored questions.
	GenerateInterviewQuestions(ctx context.Context, profile domain.CareerProfile) (*domain.InterviewQuestions, error)

	// GenerateLearningPath stores the profile and returns a prioritized learning path.
	GenerateLearningPath(ctx context.Context, profile domain.CareerProfile) (*domain.LearningPath, error)

	GetResume(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error)
	ListResumes(ctx context.Context) ([]*domain.ResumeInfo, error)
	ResumesByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error)
	ResumesBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error)
	LatestResume(ctx context.Context) (*domain.ResumeInfo, error)
}

// Dependencies groups what NewCareerCoachService needs.
type Dependencies struct {
	Resumes   ResumeRepository
	Generator generation.TextGenerator
	Prompts   *generation.PromptBuilder
	// Cache is optional; nil disables result caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

type careerCoachServiceImpl struct {
	resumes   ResumeRepository
	generator generation.TextGenerator
	prompts   *generation.PromptBuilder
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewCareerCoachService creates a CareerCoachService.
// It returns an error if any of the required dependencies are nil.
func NewCareerCoachService(deps Dependencies) (CareerCoachService, error) {
	switch {
	case deps.Resumes == nil:
		return nil, &CoachServiceError{Operation: "create_service", Message: "resume repository cannot be nil"}
	case deps.Generator == nil:
		return nil, &CoachServiceError{Operation: "create_service", Message: "generator cannot be nil"}
	case deps.Prompts == nil:
		return nil, &CoachServiceError{Operation: "create_service", Message: "prompt builder cannot be nil"}
	case deps.Logger == nil:
		return nil, &CoachServiceError{Operation: "create_service", Message: "logger cannot be nil"}
	}

	c := deps.Cache
	if c == nil {
		c = cache.NewNoop()
	}

	return &careerCoachServiceImpl{
		resumes:   deps.Resumes,
		generator: deps.Generator,
		prompts:   deps.Prompts,
		cache:     c,
		cacheTTL:  deps.CacheTTL,
		logger:    deps.Logger.With("component", "career_coach_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *careerCoachServiceImpl) GenerateInterviewQuestions(
	ctx context.Context,
	profile domain.CareerProfile,
) (*domain.InterviewQuestions, error) {
	const op = "generate_interview_questions"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile = profile.Normalized()

	if _, err := s.findOrSaveResume(ctx, profile); err != nil {
		return nil, NewCoachServiceError(op, "failed to store resume", err)
	}

	result, hit, err := cache.Exec(ctx, s.cache, cache.ProfileKey(KindInterviewQuestions, profile), s.cacheTTL,
		func(ctx context.Context) (*domain.InterviewQuestions, error) {
			prompt, err := s.prompts.InterviewQuestions(profile)
			if err != nil {
				return nil, err
			}
			text, err := s.generator.Generate(ctx, prompt)
			if err != nil {
				return nil, err
			}
			questions := generation.ParseInterviewQuestions(text)
			if len(questions) == 0 {
				return nil, fmt.Errorf("%w: no numbered questions in response", ErrNoContent)
			}
			return &domain.InterviewQuestions{
				Questions:     questions,
				TargetJobRole: profile.JobRole,
				TechSkills:    profile.TechSkills,
				GeneratedAt:   s.now(),
			}, nil
		}, s.cacheErrorLogger(ctx))
	if err != nil {
		return nil, NewCoachServiceError(op, "failed to generate interview questions", err)
	}

	log.InfoContext(ctx, "interview questions generated",
		"job_role", profile.JobRole,
		"question_count", len(result.Questions),
		"cache_hit", hit)
	return result, nil
}

func (s *careerCoachServiceImpl) GenerateLearningPath(
	ctx context.Context,
	profile domain.CareerProfile,
) (*domain.LearningPath, error) {
	const op = "generate_learning_path"
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile = profile.Normalized()

	if _, err := s.findOrSaveResume(ctx, profile); err != nil {
		return nil, NewCoachServiceError(op, "failed to store resume", err)
	}

	result, hit, err := cache.Exec(ctx, s.cache, cache.ProfileKey(KindLearningPath, profile), s.cacheTTL,
		func(ctx context.Context) (*domain.LearningPath, error) {
			prompt, err := s.prompts.LearningPath(profile)
			if err != nil {
				return nil, err
			}
			text, err := s.generator.Generate(ctx, prompt)
			if err != nil {
				return nil, err
			}
			path := generation.ParseLearningPath(text, profile)
			path.GeneratedAt = s.now()
			return path, nil
		}, s.cacheErrorLogger(ctx))
	if err != nil {
		return nil, NewCoachServiceError(op, "failed to generate learning path", err)
	}

	log.InfoContext(ctx, "learning path generated",
		"job_role", profile.JobRole,
		"recommendation_count", len(result.Recommendations),
		"cache_hit", hit)
	return result, nil
}

func (s *careerCoachServiceImpl) GetResume(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error) {
	r, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		return nil, NewCoachServiceError("get_resume", "failed to get resume", err)
	}
	return r, nil
}

func (s *careerCoachServiceImpl) ListResumes(ctx context.Context) ([]*domain.ResumeInfo, error) {
	list, err := s.resumes.List(ctx)
	if err != nil {
		return nil, NewCoachServiceError("list_resumes", "failed to list resumes", err)
	}
	return list, nil
}

func (s *careerCoachServiceImpl) ResumesByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error) {
	if role == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyJobRole)
	}
	list, err := s.resumes.FindByJobRole(ctx, role)
	if err != nil {
		return nil, NewCoachServiceError("resumes_by_job_role", "failed to find resumes", err)
	}
	return list, nil
}

func (s *careerCoachServiceImpl) ResumesBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error) {
	if len(skills) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrEmptyTechSkills)
	}
	list, err := s.resumes.FindBySkills(ctx, skills)
	if err != nil {
		return nil, NewCoachServiceError("resumes_by_skills", "failed to find resumes", err)
	}
	return list, nil
}

func (s *careerCoachServiceImpl) LatestResume(ctx context.Context) (*domain.ResumeInfo, error) {
	r, err := s.resumes.Latest(ctx)
	if err != nil {
		return nil, NewCoachServiceError("latest_resume", "failed to get latest resume", err)
	}
	return r, nil
}

// findOrSaveResume returns the stored resume matching profile, creating it when absent.
func (s *careerCoachServiceImpl) findOrSaveResume(
	ctx context.Context,
	profile domain.CareerProfile,
) (*domain.ResumeInfo, error) {
	existing, err := s.resumes.FindDuplicate(ctx, profile)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrResumeNotFound) {
		return nil, err
	}

	resume, err := domain.NewResumeInfo(profile)
	if err != nil {
		return nil, err
	}
	if err := s.resumes.Create(ctx, resume); err != nil {
		return nil, err
	}
	logger.FromContextOrDefault(ctx, s.logger).DebugContext(ctx, "resume stored",
		"resume_id", resume.ID.String())
	return resume, nil
}

func (s *careerCoachServiceImpl) cacheErrorLogger(ctx context.Context) func(error) {
	return func(err error) {
		logger.FromContextOrDefault(ctx, s.logger).WarnContext(ctx, "result cache unavailable",
			"error", err)
	}
}
