package domain

import "errors"

// Profile and resume validation errors. Every one of them wraps, or is
// reported together with, ErrValidation.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCareerSummary is returned when the free-text career summary is blank.
	ErrEmptyCareerSummary = errors.New("career summary cannot be empty")

	// ErrEmptyJobRole is returned when the target job role is blank.
	ErrEmptyJobRole = errors.New("job role cannot be empty")

	// ErrEmptyTechSkills is returned when no skills are given or one of them is blank.
	ErrEmptyTechSkills = errors.New("tech skills must contain at least one non-blank entry")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)
