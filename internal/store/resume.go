package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/domain"
)

// ResumeStore defines the interface for resume persistence.
type ResumeStore interface {
	// Create saves a new resume. Returns validation errors from the domain
	// ResumeInfo if the data is invalid.
	Create(ctx context.Context, resume *domain.ResumeInfo) error

	// GetByID retrieves a resume by its unique ID.
	// Returns ErrResumeNotFound if the resume does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error)

	// List returns all resumes, newest first.
	List(ctx context.Context) ([]*domain.ResumeInfo, error)

	// FindByJobRole returns resumes whose job role contains role, ignoring case.
	FindByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error)

	// FindBySkills returns resumes holding at least one of skills, ignoring case.
	FindBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error)

	// Latest returns the most recently created resume.
	// Returns ErrResumeNotFound when the store is empty.
	Latest(ctx context.Context) (*domain.ResumeInfo, error)

	// FindDuplicate returns an existing resume with the same summary, role and skill set.
	// Returns ErrResumeNotFound when there is none.
	FindDuplicate(ctx context.Context, profile domain.CareerProfile) (*domain.ResumeInfo, error)

	// WithTx returns a new ResumeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ResumeStore
}
