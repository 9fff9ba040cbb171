package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/career-coach/internal/domain"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/store"
)

const resumeSelect = `
	SELECT r.id, r.career_summary, r.job_role, r.created_at, r.updated_at, s.skill
	FROM resume_info r
	LEFT JOIN resume_tech_skills s ON s.resume_id = r.id
`

const resumeOrder = `
	ORDER BY r.created_at DESC, r.id, s.position
`

// PostgresResumeStore implements the store.ResumeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresResumeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResumeStore creates a new PostgreSQL implementation of the ResumeStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresResumeStore(db store.DBTX, logger *slog.Logger) *PostgresResumeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResumeStore{
		db:     db,
		logger: logger.With(slog.String("component", "resume_store")),
	}
}

// Ensure PostgresResumeStore implements store.ResumeStore interface
var _ store.ResumeStore = (*PostgresResumeStore)(nil)

// Create implements store.ResumeStore.Create.
// The resume row and its skills are written atomically.
func (s *PostgresResumeStore) Create(ctx context.Context, resume *domain.ResumeInfo) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := resume.Validate(); err != nil {
		log.Warn("resume validation failed during create",
			slog.String("error", err.Error()),
			slog.String("resume_id", resume.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	insert := func(ctx context.Context, db store.DBTX) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO resume_info (id, career_summary, job_role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, resume.ID, resume.CareerSummary, resume.JobRole, resume.CreatedAt, resume.UpdatedAt)
		if err != nil {
			return MapError(err)
		}

		for i, skill := range resume.TechSkills {
			_, err := db.ExecContext(ctx, `
				INSERT INTO resume_tech_skills (resume_id, position, skill)
				VALUES ($1, $2, $3)
			`, resume.ID, i, skill)
			if err != nil {
				return MapError(err)
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

	log.Info("resume created successfully",
		slog.String("resume_id", resume.ID.String()),
		slog.Int("skill_count", len(resume.TechSkills)))
	return nil
}

// GetByID implements store.ResumeStore.GetByID.
func (s *PostgresResumeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ResumeInfo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving resume by ID", slog.String("resume_id", id.String()))

	resumes, err := s.query(ctx, resumeSelect+` WHERE r.id = $1 `+resumeOrder, id)
	if err != nil {
		return nil, err
	}
	if len(resumes) == 0 {
		log.Debug("resume not found", slog.String("resume_id", id.String()))
		return nil, store.ErrResumeNotFound
	}
	return resumes[0], nil
}

// List implements store.ResumeStore.List.
func (s *PostgresResumeStore) List(ctx context.Context) ([]*domain.ResumeInfo, error) {
	return s.query(ctx, resumeSelect+resumeOrder)
}

// FindByJobRole implements store.ResumeStore.FindByJobRole.
func (s *PostgresResumeStore) FindByJobRole(ctx context.Context, role string) ([]*domain.ResumeInfo, error) {
	return s.query(ctx,
		resumeSelect+` WHERE r.job_role ILIKE '%' || $1 || '%' `+resumeOrder,
		strings.TrimSpace(role))
}

// FindBySkills implements store.ResumeStore.FindBySkills.
func (s *PostgresResumeStore) FindBySkills(ctx context.Context, skills []string) ([]*domain.ResumeInfo, error) {
	if len(skills) == 0 {
		return []*domain.ResumeInfo{}, nil
	}

	placeholders := make([]string, len(skills))
	args := make([]any, len(skills))
	for i, skill := range skills {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = strings.ToLower(strings.TrimSpace(skill))
	}

	query := resumeSelect + `
		WHERE r.id IN (
			SELECT resume_id FROM resume_tech_skills
			WHERE LOWER(skill) IN (` + strings.Join(placeholders, ", ") + `)
		)` + resumeOrder

	return s.query(ctx, query, args...)
}

// Latest implements store.ResumeStore.Latest.
func (s *PostgresResumeStore) Latest(ctx context.Context) (*domain.ResumeInfo, error) {
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

// FindDuplicate implements store.ResumeStore.FindDuplicate.
func (s *PostgresResumeStore) FindDuplicate(
	ctx context.Context,
	profile domain.CareerProfile,
) (*domain.ResumeInfo, error) {
	p := profile.Normalized()
	candidates, err := s.query(ctx,
		resumeSelect+` WHERE r.career_summary = $1 AND r.job_role = $2 `+resumeOrder,
		p.CareerSummary, p.JobRole)
	if err != nil {
		return nil, err
	}
	return store.FirstDuplicate(candidates, p)
}

// WithTx implements store.ResumeStore.WithTx.
func (s *PostgresResumeStore) WithTx(tx *sql.Tx) store.ResumeStore {
	return &PostgresResumeStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresResumeStore) query(ctx context.Context, query string, args ...any) ([]*domain.ResumeInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query resumes",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("resume", "query", "failed to query resumes", MapError(err))
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
