package domain

import (
	"regexp"
	"strings"
	"time"
)

// Priority ranks a learning recommendation.
type Priority string

// Possible priority values
const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var priorityWord = regexp.MustCompile(`(?i)\b(high|medium|low)\b`)

// ParsePriority maps free text to a Priority using the first of the words
// high, medium or low it contains, ignoring case. Anything else is PriorityMedium.
func ParsePriority(s string) Priority {
	m := priorityWord.FindStringSubmatch(s)
	if m == nil {
		return PriorityMedium
	}
	return Priority(strings.ToUpper(m[1]))
}

// InterviewQuestions is the result of the interview producer.
type InterviewQuestions struct {
	Questions     []string  `json:"questions"     msgpack:"questions"`
	TargetJobRole string    `json:"targetJobRole" msgpack:"target_job_role"`
	TechSkills    []string  `json:"techSkills"    msgpack:"tech_skills"`
	GeneratedAt   time.Time `json:"generatedAt"   msgpack:"generated_at"`
}

// LearningRecommendation is one entry of a learning path.
type LearningRecommendation struct {
	Category          string   `json:"category"          msgpack:"category"`
	Title             string   `json:"title"             msgpack:"title"`
	Description       string   `json:"description"       msgpack:"description"`
	Priority          Priority `json:"priority"          msgpack:"priority"`
	EstimatedDuration string   `json:"estimatedDuration" msgpack:"estimated_duration"`
	LearningMethod    string   `json:"learningMethod"    msgpack:"learning_method"`
	Reason            string   `json:"reason"            msgpack:"reason"`
}

// LearningPath is the result of the learning path producer.
type LearningPath struct {
	Recommendations   []LearningRecommendation `json:"recommendations"   msgpack:"recommendations"`
	TargetJobRole     string                   `json:"targetJobRole"     msgpack:"target_job_role"`
	CurrentTechSkills []string                 `json:"currentTechSkills" msgpack:"current_tech_skills"`
	OverallAssessment string                   `json:"overallAssessment" msgpack:"overall_assessment"`
	GeneratedAt       time.Time                `json:"generatedAt"       msgpack:"generated_at"`
}
