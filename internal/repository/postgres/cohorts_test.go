package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

func cohortRows() *sqlmock.Rows {
	webinars, _ := json.Marshal([]models.Webinar{{Num: 1, Code: "HJK234", Timestamp: fixedNow}})
	return sqlmock.NewRows([]string{
		"id", "name", "application_start", "application_end", "program_start", "program_end",
		"webinars", "is_active", "created_at", "updated_at",
	}).AddRow(
		"cohort-1", "Spring", fixedNow, fixedNow.Add(24*time.Hour), fixedNow.Add(48*time.Hour), fixedNow.Add(96*time.Hour),
		webinars, true, fixedNow, fixedNow,
	)
}

func TestCohortRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCohortRepository(db)

	mock.ExpectQuery("FROM cohorts ORDER BY application_start").WillReturnRows(cohortRows())

	cohorts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cohorts, 1)
	require.Len(t, cohorts[0].Webinars, 1)
	assert.Equal(t, "HJK234", cohorts[0].Webinars[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCohortRepository_CreateStampsWebinarCohort(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCohortRepository(db)
	repo.now = func() time.Time { return fixedNow }

	c := &models.Cohort{
		ID:       "cohort-2",
		Name:     "Fall",
		Webinars: []models.Webinar{{Num: 1, Code: "QRS789"}},
	}

	mock.ExpectExec("INSERT INTO cohorts").
		WithArgs("cohort-2", "Fall", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), false, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, "cohort-2", c.Webinars[0].CohortID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCohortRepository_UpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewCohortRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cohorts SET")).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), &models.Cohort{ID: "ghost"})
	assert.True(t, errors.IsNotFound(err))
}

func TestSettingsRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("FROM system_settings").WillReturnRows(sqlmock.NewRows([]string{"skip_phase2"}))
	s, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, s.SkipPhase2, "missing row means defaults")

	mock.ExpectExec("INSERT INTO system_settings").
		WithArgs(true, fixedNow, "admin-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s, err = repo.Update(context.Background(), models.SystemSettings{SkipPhase2: true, UpdatedAt: fixedNow, UpdatedBy: "admin-1"})
	require.NoError(t, err)
	assert.True(t, s.SkipPhase2)

	mock.ExpectQuery("FROM system_settings").
		WillReturnRows(sqlmock.NewRows([]string{"skip_phase2", "updated_at", "updated_by"}).AddRow(true, fixedNow, "admin-1"))
	s, err = repo.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, s.SkipPhase2)
	assert.Equal(t, "admin-1", s.UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
