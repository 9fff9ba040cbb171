package generation

import (
	"regexp"
	"strings"

	"github.com/phrazzld/career-coach/internal/domain"
)

// MaxInterviewQuestions caps the questions kept from one answer.
const MaxInterviewQuestions = 5

// Defaults for fields a learning path section leaves out.
const (
	DefaultDescription       = "No detailed description provided."
	DefaultDuration          = "1-2 months"
	DefaultLearningMethod    = "Online courses"
	DefaultReason            = "Helps build the skills required for the target role."
	DefaultOverallAssessment = "A personalized learning path has been generated."
)

var (
	numberedLine   = regexp.MustCompile(`^\d+\.\s*`)
	sectionHeading = regexp.MustCompile(`(?m)^\s*\[([^\]\n]+)\]\s*(.+?)\s*$`)
	fieldLine      = regexp.MustCompile(`^\s*[-*]\s*([A-Za-z ]+?)\s*:\s*(.*)$`)
)

var assessmentHints = []string{"overall", "summary", "assessment", "current state"}

// ParseInterviewQuestions keeps numbered lines, strips the numbering and caps the result.
func ParseInterviewQuestions(text string) []string {
	questions := make([]string, 0, MaxInterviewQuestions)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		loc := numberedLine.FindStringIndex(line)
		if loc == nil {
			continue
		}
		q := strings.TrimSpace(line[loc[1]:])
		if q == "" {
			continue
		}
		questions = append(questions, q)
		if len(questions) == MaxInterviewQuestions {
			break
		}
	}
	return questions
}

// ParseLearningRecommendations splits the answer into "[Category] Title"
// sections and reads each section's labelled fields. Missing fields get defaults.
func ParseLearningRecommendations(text string) []domain.LearningRecommendation {
	recs := []domain.LearningRecommendation{}
	headings := sectionHeading.FindAllStringSubmatchIndex(text, -1)

	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		fields := parseFields(text[h[1]:end])
		recs = append(recs, domain.LearningRecommendation{
			Category:          strings.TrimSpace(text[h[2]:h[3]]),
			Title:             strings.TrimSpace(text[h[4]:h[5]]),
			Description:       valueOr(fields["description"], DefaultDescription),
			Priority:          domain.ParsePriority(fields["priority"]),
			EstimatedDuration: valueOr(fields["duration"], DefaultDuration),
			LearningMethod:    valueOr(fields["method"], DefaultLearningMethod),
			Reason:            valueOr(fields["reason"], DefaultReason),
		})
	}
	return recs
}

// ExtractOverallAssessment collects the lines from the first assessment-like
// line up to the first section heading.
func ExtractOverallAssessment(text string) string {
	var parts []string
	found := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if sectionHeading.MatchString(trimmed) {
			break
		}
		if !found {
			for _, hint := range assessmentHints {
				if strings.Contains(lower, hint) {
					found = true
					break
				}
			}
		}
		if found && trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return DefaultOverallAssessment
	}
	return strings.Join(parts, " ")
}

// ParseLearningPath builds a LearningPath from a raw answer for profile.
func ParseLearningPath(text string, profile domain.CareerProfile) *domain.LearningPath {
	return &domain.LearningPath{
		Recommendations:   ParseLearningRecommendations(text),
		TargetJobRole:     profile.JobRole,
		CurrentTechSkills: profile.TechSkills,
		OverallAssessment: ExtractOverallAssessment(text),
	}
}

// parseFields maps lower-cased field labels to their values. A value runs
// until the next field line, so wrapped lines are joined.
func parseFields(section string) map[string]string {
	fields := make(map[string]string)
	current := ""
	for _, line := range strings.Split(section, "\n") {
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			current = canonicalField(m[1])
			if current != "" {
				fields[current] = strings.TrimSpace(m[2])
			}
			continue
		}
		if current != "" && strings.TrimSpace(line) != "" {
			fields[current] = strings.TrimSpace(fields[current] + " " + strings.TrimSpace(line))
		}
	}
	return fields
}

func canonicalField(label string) string {
	switch l := strings.ToLower(strings.TrimSpace(label)); {
	case l == "description":
		return "description"
	case l == "priority":
		return "priority"
	case strings.Contains(l, "duration"):
		return "duration"
	case strings.Contains(l, "method"):
		return "method"
	case strings.Contains(l, "reason"):
		return "reason"
	default:
		return ""
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
