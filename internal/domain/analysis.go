package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// CareerLevel is a coarse seniority bucket inferred from a career summary.
type CareerLevel string

// Career levels, ordered from least to most experienced.
const (
	LevelEntry       CareerLevel = "entry level"
	LevelJunior      CareerLevel = "junior (1-2 years)"
	LevelMid         CareerLevel = "mid level (3-5 years)"
	LevelSenior      CareerLevel = "senior (6+ years)"
	LevelExperienced CareerLevel = "experienced"
)

// JobCategory groups target roles by the kind of work they involve.
type JobCategory string

// Job categories.
const (
	CategoryTechnical JobCategory = "technical"
	CategoryBusiness  JobCategory = "business"
	CategoryDesign    JobCategory = "design"
	CategorySupport   JobCategory = "support"
	CategoryGeneral   JobCategory = "general"
)

var (
	yearsRegex       = regexp.MustCompile(`(\d+)\s*\+?\s*(?:years?|yrs?)`)
	wordBoundaryHint = regexp.MustCompile(`\b(?:pm|ux|ui|hr|ai)\b`)
)

// AnalyzeCareerLevel infers a CareerLevel from keywords and the first "N years" mention.
func AnalyzeCareerLevel(summary string) CareerLevel {
	s := strings.ToLower(summary)

	if containsAny(s, "new grad", "graduate", "intern", "bootcamp", "entry level", "job seeker", "no experience") {
		return LevelEntry
	}
	if containsAny(s, "senior", "lead", "principal", "staff", "head of") {
		return LevelSenior
	}
	if m := yearsRegex.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch {
		case n <= 0:
			return LevelEntry
		case n <= 2:
			return LevelJunior
		case n <= 5:
			return LevelMid
		default:
			return LevelSenior
		}
	}
	if strings.Contains(s, "junior") {
		return LevelJunior
	}
	return LevelExperienced
}

// CategorizeJob maps a target role to a JobCategory.
func CategorizeJob(role string) JobCategory {
	r := strings.ToLower(role)
	short := wordBoundaryHint.FindString(r)

	switch {
	case containsAny(r, "developer", "engineer", "programmer", "devops", "data", "sre", "architect"):
		return CategoryTechnical
	case containsAny(r, "marketing", "planner", "sales", "product manager", "manager", "business") || short == "pm":
		return CategoryBusiness
	case containsAny(r, "design") || short == "ux" || short == "ui":
		return CategoryDesign
	case containsAny(r, "recruit", "people", "training", "admin") || short == "hr":
		return CategorySupport
	default:
		return CategoryGeneral
	}
}

// AnalyzeSkillGap summarizes the two most relevant gaps between the profile
// and the target role, or reports a good fit when none are found.
func AnalyzeSkillGap(profile CareerProfile) string {
	role := strings.ToLower(profile.JobRole)
	summary := strings.ToLower(profile.CareerSummary)
	skills := strings.ToLower(strings.Join(profile.TechSkills, "|"))

	var gaps []string

	if containsAny(role, "senior", "lead", "manager", "head") &&
		!containsAny(summary, "team", "led", "leading", "managed", "mentor", "project management") {
		gaps = append(gaps, "limited leadership or management experience")
	}

	if containsAny(role, "junior", "entry", "new grad") &&
		!containsAny(summary, "project", "experience", "internship", "practice") {
		gaps = append(gaps, "limited hands-on project experience")
	}

	if AnalyzeCareerLevel(profile.CareerSummary) == LevelMid &&
		!containsAny(skills, "advanced", "expert", "architecture", "design") {
		gaps = append(gaps, "advanced skills lag behind years of experience")
	}

	if !containsAny(skills, "git", "jira", "slack", "notion", "agile", "scrum", "cloud", "aws", "gcp", "azure") {
		gaps = append(gaps, "little exposure to modern collaboration tools or methods")
	}

	if !containsAny(skills, "excel", "data", "analytics", "sql", "tableau", "power bi", "statistics") {
		gaps = append(gaps, "limited data analysis skills")
	}

	if !containsAny(summary, "communicat", "collaborat", "present", "teach", "mentor", "lead") {
		gaps = append(gaps, "few examples of soft skills such as communication or collaboration")
	}

	if !containsAny(skills, "ai", "machine learning", "automation", "digital", "cloud", "mobile", "ux") &&
		!containsAny(summary, "latest", "trend") {
		gaps = append(gaps, "limited awareness of current industry trends")
	}

	switch len(gaps) {
	case 0:
		return "well aligned with the target role overall"
	case 1:
		return gaps[0]
	default:
		return strings.Join(gaps[:2], ", ") + " and more"
	}
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
