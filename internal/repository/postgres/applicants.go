package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"accelerator-portal/internal/common/database"
	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/models"
)

const uniqueViolation = "23505"

const applicantColumns = `id, email, first_name, last_name, phone, status, webinar_attended, rating,
	assigned_to, interviewer_id, cohort_id, flags, needs_review, version, created_at, updated_at`

type ApplicantRepository struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewApplicantRepository(db *sql.DB, log logger.Logger) *ApplicantRepository {
	return &ApplicantRepository{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new applicant at version 1. A duplicate email is a ConflictError.
func (r *ApplicantRepository) Create(ctx context.Context, a *models.Applicant) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := r.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Version = 1
	if a.Flags == nil {
		a.Flags = []models.Flag{}
	}

	flagsJSON, err := json.Marshal(a.Flags)
	if err != nil {
		return errors.NewDatabaseWriteError("marshal applicant flags", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO applicants (
			id, email, first_name, last_name, phone, status, cohort_id,
			flags, needs_review, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		a.ID,
		strings.ToLower(a.Email),
		a.FirstName,
		a.LastName,
		nullString(a.Phone),
		a.Status,
		nullString(a.CohortID),
		flagsJSON,
		a.NeedsReview,
		a.Version,
		now,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return errors.NewConflictError("applicant", a.Email)
		}
		return errors.NewDatabaseWriteError("insert applicant", err)
	}
	return nil
}

func (r *ApplicantRepository) Get(ctx context.Context, id string) (*models.Applicant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)
	a, err := scanApplicant(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("applicant", id)
		}
		return nil, errors.NewDatabaseQueryError("load applicant", err)
	}
	return a, nil
}

func (r *ApplicantRepository) GetByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE email = $1`, strings.ToLower(email))
	a, err := scanApplicant(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("applicant", email)
		}
		return nil, errors.NewDatabaseQueryError("load applicant by email", err)
	}
	return a, nil
}

// Transition applies ch atomically. When the stored status or version no longer match
// the expectation nothing is written and a ConflictError is returned.
func (r *ApplicantRepository) Transition(ctx context.Context, ch models.StateChange) (*models.Applicant, error) {
	var updated *models.Applicant

	err := database.WithTx(ctx, r.db, nil, func(tx *sql.Tx) error {
		a, err := r.compareAndSwap(ctx, tx, ch)
		if err != nil {
			return err
		}
		updated = a

		if ch.Attendance != nil {
			if err := insertAttendance(ctx, tx, ch.Attendance); err != nil {
				return err
			}
		}
		if ch.Phase1 != nil {
			if err := upsertPhase1(ctx, tx, ch.Phase1); err != nil {
				return err
			}
		}
		if ch.Phase3 != nil {
			if err := upsertPhase3(ctx, tx, ch.Phase3, r.now()); err != nil {
				return err
			}
		}
		if ch.Interview != nil {
			if err := upsertInterview(ctx, tx, ch.Interview, r.now()); err != nil {
				return err
			}
		}
		if ch.Audit != nil {
			return r.audit(ctx, tx, ch.Audit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ApplicantRepository) compareAndSwap(ctx context.Context, tx *sql.Tx, ch models.StateChange) (*models.Applicant, error) {
	args := []interface{}{ch.ApplicantID, ch.ExpectedStatus, ch.ExpectedVersion, ch.NewStatus, r.now()}
	set := []string{"status = $4", "version = version + 1", "updated_at = $5"}

	add := func(column string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if ch.Result != nil {
		flags := ch.Result.Flags
		if flags == nil {
			flags = []models.Flag{}
		}
		flagsJSON, err := json.Marshal(flags)
		if err != nil {
			return nil, errors.NewDatabaseWriteError("marshal applicant flags", err)
		}
		add("flags", flagsJSON)
		add("needs_review", ch.Result.NeedsReview)
	}
	if ch.WebinarAttended != nil {
		add("webinar_attended", *ch.WebinarAttended)
	}
	if ch.InterviewerID != nil {
		add("interviewer_id", nullString(*ch.InterviewerID))
	}

	query := `UPDATE applicants SET ` + strings.Join(set, ", ") +
		` WHERE id = $1 AND status = $2 AND version = $3 RETURNING ` + applicantColumns

	a, err := scanApplicant(tx.QueryRowContext(ctx, query, args...))
	if err == nil {
		return a, nil
	}
	if !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewDatabaseWriteError("update applicant", err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM applicants WHERE id = $1)`, ch.ApplicantID).Scan(&exists); err != nil {
		return nil, errors.NewDatabaseQueryError("check applicant", err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("applicant", ch.ApplicantID)
	}
	return nil, errors.NewConflictError("applicant", ch.ApplicantID)
}

// audit writes the history row. Forced transitions must be audited; for the others a
// failed insert is rolled back to a savepoint and logged.
func (r *ApplicantRepository) audit(ctx context.Context, tx *sql.Tx, a *models.StatusAudit) error {
	if a.At.IsZero() {
		a.At = r.now()
	}

	if a.Kind == models.TransitionForced {
		if err := insertAudit(ctx, tx, a); err != nil {
			return errors.NewDatabaseWriteError("insert forced transition audit", err)
		}
		return nil
	}

	if _, err := tx.ExecContext(ctx, `SAVEPOINT audit`); err != nil {
		return errors.NewDatabaseWriteError("savepoint", err)
	}
	if err := insertAudit(ctx, tx, a); err != nil {
		r.logger.Warn("status audit insert failed", map[string]interface{}{
			"error":       err.Error(),
			"applicantId": a.ApplicantID,
			"toStatus":    a.ToStatus,
		})
		if _, err := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT audit`); err != nil {
			return errors.NewDatabaseWriteError("rollback to savepoint", err)
		}
	}
	return nil
}

func insertAudit(ctx context.Context, tx *sql.Tx, a *models.StatusAudit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO status_audit (applicant_id, from_status, to_status, kind, actor, reason, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ApplicantID, a.FromStatus, a.ToStatus, a.Kind, nullString(a.Actor), nullString(a.Reason), a.At,
	)
	return err
}

func insertAttendance(ctx context.Context, tx *sql.Tx, w *models.WebinarAttendance) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO webinar_attendance (applicant_id, cohort_id, webinar_num, code, attended_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (applicant_id, cohort_id, webinar_num) DO NOTHING`,
		w.ApplicantID, w.CohortID, w.WebinarNum, w.Code, w.AttendedAt,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("insert webinar attendance", err)
	}
	return nil
}

func upsertInterview(ctx context.Context, tx *sql.Tx, iv *models.Interview, now time.Time) error {
	if iv.ID == "" {
		iv.ID = uuid.New().String()
	}
	if iv.Outcome == "" {
		iv.Outcome = models.InterviewPending
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO interviews (id, applicant_id, interviewer_id, scheduled_at, outcome, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (applicant_id) DO UPDATE SET
			interviewer_id = COALESCE(NULLIF(EXCLUDED.interviewer_id, ''), interviews.interviewer_id),
			scheduled_at = COALESCE(EXCLUDED.scheduled_at, interviews.scheduled_at),
			outcome = EXCLUDED.outcome,
			updated_at = EXCLUDED.updated_at`,
		iv.ID, iv.ApplicantID, iv.InterviewerID, iv.ScheduledAt, iv.Outcome, now,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("upsert interview", err)
	}
	return nil
}

// UpdateReview sets the admin review fields. They are not part of the lifecycle, so the
// version is left alone.
func (r *ApplicantRepository) UpdateReview(ctx context.Context, id string, u models.ReviewUpdate) (*models.Applicant, error) {
	args := []interface{}{id, r.now()}
	set := []string{"updated_at = $2"}

	switch {
	case u.ClearRating:
		set = append(set, "rating = NULL")
	case u.Rating != nil:
		args = append(args, *u.Rating)
		set = append(set, fmt.Sprintf("rating = $%d", len(args)))
	}
	if u.AssignedTo != nil {
		args = append(args, nullString(*u.AssignedTo))
		set = append(set, fmt.Sprintf("assigned_to = $%d", len(args)))
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE applicants SET `+strings.Join(set, ", ")+` WHERE id = $1 RETURNING `+applicantColumns,
		args...)
	a, err := scanApplicant(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("applicant", id)
		}
		return nil, errors.NewDatabaseWriteError("update applicant review", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplicant(row rowScanner) (*models.Applicant, error) {
	var (
		a                                      models.Applicant
		phone, assignedTo, interviewer, cohort sql.NullString
		webinarAttended, rating                sql.NullInt64
		flagsJSON                              []byte
	)
	if err := row.Scan(
		&a.ID, &a.Email, &a.FirstName, &a.LastName, &phone, &a.Status, &webinarAttended, &rating,
		&assignedTo, &interviewer, &cohort, &flagsJSON, &a.NeedsReview, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}

	a.Phone = phone.String
	a.AssignedTo = assignedTo.String
	a.InterviewerID = interviewer.String
	a.CohortID = cohort.String
	a.WebinarAttended = intPtr(webinarAttended)
	a.Rating = intPtr(rating)

	a.Flags = []models.Flag{}
	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &a.Flags); err != nil {
			return nil, fmt.Errorf("decode applicant flags: %w", err)
		}
	}
	return &a, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
