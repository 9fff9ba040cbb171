package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const resumeSelect = `
	SELECT r.id, r.career_summary, r.job_role, r.created_at, r.updated_at, s.skill
	FROM resume_info r
	LEFT JOIN resume_tech_skills s ON s.resume_id = r.id
`

const resumeOrder = `
	ORDER BY r.created_at DESC, r.id, s.position
`

// ResumeStore implements store.ResumeStore on SQLite.
type ResumeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ResumeStore = (*ResumeStore)(nil)

// NewResumeStore creates a SQLite resume store. If logger is nil, the default logger is used.
func NewResumeStore(db store.DBTX, logger *slog.Logger) *ResumeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeStore{
		db:     db,
		logger: logger.With(slog.String("component", "resume_store"), slog.String("driver", "sqlite")),
	}
}

// Create stores the resume and its skills in one transaction.
func (s *ResumeStore) Create(ctx context.Context, resume *domain.ResumeInfo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := resume.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert := func(ctx context.Context, db store.DBTX) error {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO resume_info (id, career_summary, job_role, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			resume.ID.String(), resume.CareerSummary, resume.JobRole,
			resume.CreatedAt.UTC(), resume.UpdatedAt.UTC(),
		); err != nil {
			return mapError(err)
		}
		for i, skill := range resume.TechSkills {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO resume_tech_skills (resume_id, position, skill) VALUES (?, ?, ?)`,
				resume.ID.String(), i, skill,
			); err != nil {
				return mapError(err)
			}
		}
		return nil
	}

	var err error
	if sqlDB, ok := s.db.(*sql.DB); ok {
		err = store.RunInTransaction(ctx, sqlDB, func(ctx context.Context, tx *sql.Tx) error {
			return insert(ctx, tx)
		})
	} else {
		err = insert(ctx, s.db)
	}
	if err != nil {
		log.Error("failed to create resume",
			slog.String("error", err.Error()),
			slog.String("resume_id", resume.ID.String()))
		return store.NewStoreError("resume", "create", "failed to store resume", err)
	}

	log.Debug("resume created", slog.String("resume_id", resume.ID.String()))
	return nil
}

// GetByID returns store.ErrResumeNotFound when no resume has the id.
func (s *ResumeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error) {
	resumes, err := s.query(ctx, resumeSelect+` WHERE r.id = ? `+resumeOrder, id.String())
	if err != nil {
		return nil, err
	}
	if len(resumes) == 0 {
		return nil, store.ErrResumeNotFound
	}
	return resumes[0], nil
}

func (s *ResumeStore) List(ctx context.Context) ([]*domain.ResumeInfo, error) {
	return s.query(ctx, resumeSelect+resumeOrder)
}

func (s *ResumeStore) FindByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error) {
	return s.query(ctx,
		resumeSelect+` WHERE LOWER(r.job_role) LIKE '%' || LOWER(?) || '%' `+resumeOrder,
		strings.TrimSpace(role))
}

func (s *ResumeStore) FindBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error) {
	if len(skills) == 0 {
		return []*domain.ResumeInfo{}, nil
	}

	args := make([]any, len(skills))
	for i, skill := range skills {
		args[i] = strings.ToLower(strings.TrimSpace(skill))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(skills)), ", ")

	return s.query(ctx, resumeSelect+`
		WHERE r.id IN (
			SELECT resume_id FROM resume_tech_skills WHERE LOWER(skill) IN (`+placeholders+`)
		)`+resumeOrder, args...)
}

func (s *ResumeStore) Latest(ctx context.Context) (*domain.ResumeInfo, error) {
	resumes, err := s.query(ctx, resumeSelect+`
		WHERE r.id = (SELECT id FROM resume_info ORDER BY created_at DESC LIMIT 1)
	`+resumeOrder)
	if err != nil {
		return nil, err
	}
	if len(resumes) == 0 {
		return nil, store.ErrResumeNotFound
	}
	return resumes[0], nil
}

func (s *ResumeStore) FindDuplicate(ctx context.Context, profile domain.CareerProfile) (*domain.ResumeInfo, error) {
	p := profile.Normalized()
	candidates, err := s.query(ctx,
		resumeSelect+` WHERE r.career_summary = ? AND r.job_role = ? `+resumeOrder,
		p.CareerSummary, p.JobRole)
	if err != nil {
		return nil, err
	}
	return store.FirstDuplicate(candidates, p)
}

func (s *ResumeStore) WithTx(tx *sql.Tx) store.ResumeStore {
	return &ResumeStore{db: tx, logger: s.logger}
}

func (s *ResumeStore) query(ctx context.Context, query string, args ...any) ([]*domain.ResumeInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query resumes",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("resume", "query", "failed to query resumes", mapError(err))
	}
	resumes, err := store.ScanResumeRows(rows)
	if err != nil {
		return nil, err
	}
	if resumes == nil {
		resumes = []*domain.ResumeInfo{}
	}
	return resumes, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}
	return err
}
