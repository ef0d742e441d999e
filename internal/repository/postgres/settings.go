package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the global settings. A missing row means the defaults.
func (r *SettingsRepository) Get(ctx context.Context) (models.SystemSettings, error) {
	var (
		s         models.SystemSettings
		updatedBy sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT skip_phase2, updated_at, updated_by FROM system_settings WHERE id = 1`,
	).Scan(&s.SkipPhase2, &s.UpdatedAt, &updatedBy)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.SystemSettings{}, nil
		}
		return models.SystemSettings{}, errors.NewDatabaseQueryError("load system settings", err)
	}
	s.UpdatedBy = updatedBy.String
	return s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s models.SystemSettings) (models.SystemSettings, error) {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_settings (id, skip_phase2, updated_at, updated_by)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			skip_phase2 = EXCLUDED.skip_phase2,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		s.SkipPhase2, s.UpdatedAt, nullString(s.UpdatedBy),
	)
	if err != nil {
		return models.SystemSettings{}, errors.NewDatabaseWriteError("update system settings", err)
	}
	return s, nil
}
