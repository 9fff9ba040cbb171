package generation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/career-coach/internal/domain"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompt template names.
const (
	InterviewPrompt    = "interview.tmpl"
	LearningPathPrompt = "learning_path.tmpl"
)

type promptData struct {
	Level    domain.CareerLevel
	Summary  string
	Role     string
	Skills   []string
	Category domain.JobCategory
	Gap      string
}

// PromptBuilder renders prompts from the embedded templates, keeping each
// prompt within a token budget by shortening the career summary.
type PromptBuilder struct {
	templates *template.Template
	budget    *TokenBudget
}

// NewPromptBuilder parses the embedded templates. A nil budget disables clamping.
func NewPromptBuilder(budget *TokenBudget) (*PromptBuilder, error) {
	tmpl, err := template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt templates: %v", ErrInvalidConfig, err)
	}
	return &PromptBuilder{templates: tmpl, budget: budget}, nil
}

// InterviewQuestions renders the interview question prompt.
func (b *PromptBuilder) InterviewQuestions(profile domain.CareerProfile) (string, error) {
	return b.render(InterviewPrompt, profile)
}

// LearningPath renders the learning path prompt.
func (b *PromptBuilder) LearningPath(profile domain.CareerProfile) (string, error) {
	return b.render(LearningPathPrompt, profile)
}

func (b *PromptBuilder) render(name string, profile domain.CareerProfile) (string, error) {
	if err := profile.Validate(); err != nil {
		return "", err
	}
	p := profile.Normalized()
	data := promptData{
		Level:    domain.AnalyzeCareerLevel(p.CareerSummary),
		Summary:  p.CareerSummary,
		Role:     p.JobRole,
		Skills:   p.TechSkills,
		Category: domain.CategorizeJob(p.JobRole),
		Gap:      domain.AnalyzeSkillGap(p),
	}

	prompt, err := b.execute(name, data)
	if err != nil {
		return "", err
	}
	if b.budget == nil || b.budget.Fits(prompt) {
		return prompt, nil
	}

	// Only the summary is free text; everything else is bounded by the template.
	overflow := b.budget.Count(prompt) - b.budget.Max()
	keep := b.budget.Count(data.Summary) - overflow
	data.Summary = b.budget.Truncate(data.Summary, keep)
	return b.execute(name, data)
}

func (b *PromptBuilder) execute(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := b.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}
