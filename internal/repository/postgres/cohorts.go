package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

const cohortColumns = `id, name, application_start, application_end, program_start, program_end,
	webinars, is_active, created_at, updated_at`

// CohortRepository stores cohorts with their webinars embedded as JSONB. Callers serialize
// writes with the cohort lock.
type CohortRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewCohortRepository(db *sql.DB) *CohortRepository {
	return &CohortRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *CohortRepository) List(ctx context.Context) ([]models.Cohort, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cohortColumns+` FROM cohorts ORDER BY application_start`)
	if err != nil {
		return nil, errors.NewDatabaseQueryError("list cohorts", err)
	}
	defer rows.Close()

	cohorts := []models.Cohort{}
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, errors.NewDatabaseQueryError("scan cohort", err)
		}
		cohorts = append(cohorts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseQueryError("iterate cohorts", err)
	}
	return cohorts, nil
}

func (r *CohortRepository) Get(ctx context.Context, id string) (*models.Cohort, error) {
	c, err := scanCohort(r.db.QueryRowContext(ctx, `SELECT `+cohortColumns+` FROM cohorts WHERE id = $1`, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("cohort", id)
		}
		return nil, errors.NewDatabaseQueryError("load cohort", err)
	}
	return c, nil
}

func (r *CohortRepository) Create(ctx context.Context, c *models.Cohort) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := r.now()
	c.CreatedAt, c.UpdatedAt = now, now

	webinars, err := encodeWebinars(c)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cohorts (`+cohortColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		c.ID, c.Name, c.ApplicationStart, c.ApplicationEnd, c.ProgramStart, c.ProgramEnd,
		webinars, c.IsActive, now,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("insert cohort", err)
	}
	return nil
}

func (r *CohortRepository) Update(ctx context.Context, c *models.Cohort) error {
	c.UpdatedAt = r.now()

	webinars, err := encodeWebinars(c)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE cohorts SET
			name = $2, application_start = $3, application_end = $4,
			program_start = $5, program_end = $6, webinars = $7, is_active = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Name, c.ApplicationStart, c.ApplicationEnd, c.ProgramStart, c.ProgramEnd,
		webinars, c.IsActive, c.UpdatedAt,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("update cohort", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("cohort", c.ID)
	}
	return nil
}

func encodeWebinars(c *models.Cohort) ([]byte, error) {
	webinars := c.Webinars
	if webinars == nil {
		webinars = []models.Webinar{}
	}
	for i := range webinars {
		webinars[i].CohortID = c.ID
	}
	b, err := json.Marshal(webinars)
	if err != nil {
		return nil, errors.NewDatabaseWriteError("marshal webinars", err)
	}
	return b, nil
}

func scanCohort(row rowScanner) (*models.Cohort, error) {
	var (
		c            models.Cohort
		webinarsJSON []byte
	)
	if err := row.Scan(
		&c.ID, &c.Name, &c.ApplicationStart, &c.ApplicationEnd, &c.ProgramStart, &c.ProgramEnd,
		&webinarsJSON, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Webinars = []models.Webinar{}
	if len(webinarsJSON) > 0 {
		if err := json.Unmarshal(webinarsJSON, &c.Webinars); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
