package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CareerProfile is the validated input for every generation request.
type CareerProfile struct {
	CareerSummary string   `json:"careerSummary" validate:"required"`
	JobRole       string   `json:"jobRole"       validate:"required"`
	TechSkills    []string `json:"techSkills"    validate:"required,min=1,dive,required"`
}

// Validate rejects blank fields. Whitespace-only values count as blank.
func (p CareerProfile) Validate() error {
	if strings.TrimSpace(p.CareerSummary) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyCareerSummary)
	}
	if strings.TrimSpace(p.JobRole) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyJobRole)
	}
	if len(p.TechSkills) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTechSkills)
	}
	for _, s := range p.TechSkills {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTechSkills)
		}
	}
	return nil
}

// Normalized returns a copy with trimmed fields and skills.
func (p CareerProfile) Normalized() CareerProfile {
	skills := make([]string, 0, len(p.TechSkills))
	for _, s := range p.TechSkills {
		skills = append(skills, strings.TrimSpace(s))
	}
	return CareerProfile{
		CareerSummary: strings.TrimSpace(p.CareerSummary),
		JobRole:       strings.TrimSpace(p.JobRole),
		TechSkills:    skills,
	}
}

// ResumeInfo is a persisted career profile.
type ResumeInfo struct {
	ID            uuid.UUID `json:"id"`
	CareerSummary string    `json:"careerSummary"`
	JobRole       string    `json:"jobRole"`
	TechSkills    []string  `json:"techSkills"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewResumeInfo creates a ResumeInfo from a profile with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewResumeInfo(profile CareerProfile) (*ResumeInfo, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	p := profile.Normalized()
	now := time.Now().UTC()
	r := &ResumeInfo{
		ID:            uuid.New(),
		CareerSummary: p.CareerSummary,
		JobRole:       p.JobRole,
		TechSkills:    p.TechSkills,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return r, nil
}

// Validate checks if the ResumeInfo has valid data.
func (r *ResumeInfo) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidID)
	}
	return r.Profile().Validate()
}

// Profile returns the generation input represented by this resume.
func (r *ResumeInfo) Profile() CareerProfile {
	return CareerProfile{
		CareerSummary: r.CareerSummary,
		JobRole:       r.JobRole,
		TechSkills:    slices.Clone(r.TechSkills),
	}
}

// SameSkills reports whether both skill lists hold the same entries, ignoring order and case.
func SameSkills(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	na := normalizeSkills(a)
	nb := normalizeSkills(b)
	return slices.Equal(na, nb)
}

func normalizeSkills(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	slices.Sort(out)
	return out
}
