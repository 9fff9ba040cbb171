package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/domain"
)

// ScanResumeRows folds a resume/skill join into resumes. Each row must hold
// id, career_summary, job_role, created_at, updated_at and a nullable skill,
// grouped by resume and ordered by skill position within a resume.
func ScanResumeRows(rows *sql.Rows) ([]*domain.ResumeInfo, error) {
	defer rows.Close()

	var (
		resumes []*domain.ResumeInfo
		current *domain.ResumeInfo
	)

	for rows.Next() {
		var (
			id        uuid.UUID
			summary   string
			role      string
			createdAt time.Time
			updatedAt time.Time
			skill     sql.NullString
		)
		if err := rows.Scan(&id, &summary, &role, &createdAt, &updatedAt, &skill); err != nil {
			return nil, fmt.Errorf("failed to scan resume row: %w", err)
		}

		if current == nil || current.ID != id {
			current = &domain.ResumeInfo{
				ID:            id,
				CareerSummary: summary,
				JobRole:       role,
				TechSkills:    []string{},
				CreatedAt:     createdAt.UTC(),
				UpdatedAt:     updatedAt.UTC(),
			}
			resumes = append(resumes, current)
		}
		if skill.Valid {
			current.TechSkills = append(current.TechSkills, skill.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resume rows: %w", err)
	}

	return resumes, nil
}

// FirstDuplicate returns the first candidate whose skills match profile's, or ErrResumeNotFound.
func FirstDuplicate(candidates []*domain.ResumeInfo, profile domain.CareerProfile) (*domain.ResumeInfo, error) {
	for _, c := range candidates {
		if domain.SameSkills(c.TechSkills, profile.TechSkills) {
			return c, nil
		}
	}
	return nil, ErrResumeNotFound
}
