package task

import (
	"context"
	"fmt"

	"github.com/phrazzld/career-coach/internal/domain"
)

// InterviewGenerator is the part of the coach service the interview producer needs.
type InterviewGenerator interface {
	GenerateInterviewQuestions(ctx context.Context, profile domain.CareerProfile) (*domain.InterviewQuestions, error)
}

// LearningPathGenerator is the part of the coach service the learning producer needs.
type LearningPathGenerator interface {
	GenerateLearningPath(ctx context.Context, profile domain.CareerProfile) (*domain.LearningPath, error)
}

// InterviewTask produces interview questions.
type InterviewTask struct {
	generator InterviewGenerator
}

// NewInterviewTask creates an InterviewTask backed by generator.
func NewInterviewTask(generator InterviewGenerator) *InterviewTask {
	return &InterviewTask{generator: generator}
}

// Name implements Producer.
func (t *InterviewTask) Name() string { return NameInterview }

// Label implements Producer.
func (t *InterviewTask) Label() string { return "interview questions" }

// Run implements Producer.
func (t *InterviewTask) Run(ctx context.Context, profile domain.CareerProfile) (any, error) {
	questions, err := t.generator.GenerateInterviewQuestions(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("error generating interview questions: %w", err)
	}
	return questions, nil
}

// LearningPathTask produces a learning path.
type LearningPathTask struct {
	generator LearningPathGenerator
}

// NewLearningPathTask creates a LearningPathTask backed by generator.
func NewLearningPathTask(generator LearningPathGenerator) *LearningPathTask {
	return &LearningPathTask{generator: generator}
}

// Name implements Producer.
func (t *LearningPathTask) Name() string { return NameLearning }

// Label implements Producer.
func (t *LearningPathTask) Label() string { return "learning path" }

// Run implements Producer.
func (t *LearningPathTask) Run(ctx context.Context, profile domain.CareerProfile) (any, error) {
	path, err := t.generator.GenerateLearningPath(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("error generating learning path: %w", err)
	}
	return path, nil
}
