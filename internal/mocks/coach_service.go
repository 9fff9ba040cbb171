package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/service"
)

// MockCoachService implements service.CareerCoachService for testing. Unset
// functions return canned artifacts, empty lists or ErrResumeNotFound.
type MockCoachService struct {
	InterviewFn func(ctx context.Context, p domain.CareerProfile) (*domain.InterviewQuestions, error)
	LearningFn  func(ctx context.Context, p domain.CareerProfile) (*domain.LearningPath, error)
	GetFn       func(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error)
	ListFn      func(ctx context.Context) ([]*domain.ResumeInfo, error)
	ByRoleFn    func(ctx context.Context, role string) ([]*domain.ResumeInfo, error)
	BySkillsFn  func(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error)
	LatestFn    func(ctx context.Context) (*domain.ResumeInfo, error)
}

var _ service.CareerCoachService = (*MockCoachService)(nil)

// GenerateInterviewQuestions implements the CareerCoachService.GenerateInterviewQuestions method
func (m *MockCoachService) GenerateInterviewQuestions(
	ctx context.Context,
	p domain.CareerProfile,
) (*domain.InterviewQuestions, error) {
	if m.InterviewFn != nil {
		return m.InterviewFn(ctx, p)
	}
	return &domain.InterviewQuestions{
		Questions:     []string{"Describe a system you scaled."},
		TargetJobRole: p.JobRole,
		TechSkills:    p.TechSkills,
	}, nil
}

// GenerateLearningPath implements the CareerCoachService.GenerateLearningPath method
func (m *MockCoachService) GenerateLearningPath(ctx context.Context, p domain.CareerProfile) (*domain.LearningPath, error) {
	if m.LearningFn != nil {
		return m.LearningFn(ctx, p)
	}
	return &domain.LearningPath{
		Recommendations: []domain.LearningRecommendation{{
			Category: "Tech", Title: "Kubernetes", Priority: domain.PriorityHigh,
		}},
		TargetJobRole:     p.JobRole,
		CurrentTechSkills: p.TechSkills,
		OverallAssessment: "Solid foundation.",
	}, nil
}

// GetResume implements the CareerCoachService.GetResume method
func (m *MockCoachService) GetResume(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, service.ErrResumeNotFound
}

// ListResumes implements the CareerCoachService.ListResumes method
func (m *MockCoachService) ListResumes(ctx context.Context) ([]*domain.ResumeInfo, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []*domain.ResumeInfo{}, nil
}

// ResumesByJobRole implements the CareerCoachService.ResumesByJobRole method
func (m *MockCoachService) ResumesByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error) {
	if m.ByRoleFn != nil {
		return m.ByRoleFn(ctx, role)
	}
	return []*domain.ResumeInfo{}, nil
}

// ResumesBySkills implements the CareerCoachService.ResumesBySkills method
func (m *MockCoachService) ResumesBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error) {
	if m.BySkillsFn != nil {
		return m.BySkillsFn(ctx, skills)
	}
	return []*domain.ResumeInfo{}, nil
}

// LatestResume implements the CareerCoachService.LatestResume method
func (m *MockCoachService) LatestResume(ctx context.Context) (*domain.ResumeInfo, error) {
	if m.LatestFn != nil {
		return m.LatestFn(ctx)
	}
	return nil, service.ErrResumeNotFound
}

