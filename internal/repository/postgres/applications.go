package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

type phase1Data struct {
	Company  models.CompanyInfo  `json:"company"`
	Personal models.PersonalInfo `json:"personal"`
	Extended models.ExtendedInfo `json:"extended"`
}

type phase3Data struct {
	Product models.ProductInfo `json:"product"`
	Team    models.TeamInfo    `json:"team"`
	Funding models.FundingInfo `json:"funding"`
	Legal   models.LegalInfo   `json:"legal"`
}

// ApplicationRepository reads the Phase-1 and Phase-3 answer documents. Writes happen in
// ApplicantRepository.Transition so they commit with the status change.
type ApplicationRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *ApplicationRepository) GetPhase1(ctx context.Context, applicantID string) (*models.Phase1Application, error) {
	var (
		dataJSON, flagsJSON []byte
		app                 = models.Phase1Application{ApplicantID: applicantID}
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT data, flags, submitted_at FROM phase1_applications WHERE applicant_id = $1`,
		applicantID,
	).Scan(&dataJSON, &flagsJSON, &app.SubmittedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("phase1_application", applicantID)
		}
		return nil, errors.NewDatabaseQueryError("load phase1 application", err)
	}

	var data phase1Data
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, errors.NewDatabaseQueryError("decode phase1 application", err)
	}
	app.Company, app.Personal, app.Extended = data.Company, data.Personal, data.Extended
	if err := decodeFlags(flagsJSON, &app.Flags); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetPhase3(ctx context.Context, applicantID string) (*models.Phase3Application, error) {
	var (
		dataJSON, scorerJSON, flagsJSON []byte
		scorerStatus                    sql.NullString
		submittedAt                     sql.NullTime
		app                             = models.Phase3Application{ApplicantID: applicantID}
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT status, data, scorer_result, scorer_status, flags, submitted_at, updated_at
		FROM phase3_applications WHERE applicant_id = $1`,
		applicantID,
	).Scan(&app.Status, &dataJSON, &scorerJSON, &scorerStatus, &flagsJSON, &submittedAt, &app.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("phase3_application", applicantID)
		}
		return nil, errors.NewDatabaseQueryError("load phase3 application", err)
	}

	var data phase3Data
	if err := json.Unmarshal(dataJSON, &data); err != nil {
		return nil, errors.NewDatabaseQueryError("decode phase3 application", err)
	}
	app.Product, app.Team, app.Funding, app.Legal = data.Product, data.Team, data.Funding, data.Legal

	if len(scorerJSON) > 0 && string(scorerJSON) != "null" {
		app.Scorer = &models.ScorerResult{}
		if err := json.Unmarshal(scorerJSON, app.Scorer); err != nil {
			return nil, errors.NewDatabaseQueryError("decode scorer result", err)
		}
	}
	app.ScorerStatus = models.ScorerStatus(scorerStatus.String)
	if submittedAt.Valid {
		t := submittedAt.Time
		app.SubmittedAt = &t
	}
	if err := decodeFlags(flagsJSON, &app.Flags); err != nil {
		return nil, err
	}
	return &app, nil
}

// SaveScorerResult records the external analysis. A nil result clears any previous one.
func (r *ApplicationRepository) SaveScorerResult(ctx context.Context, applicantID string, result *models.ScorerResult, status models.ScorerStatus) error {
	var scorerJSON interface{}
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return errors.NewDatabaseWriteError("marshal scorer result", err)
		}
		scorerJSON = b
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE phase3_applications
		SET scorer_result = $2, scorer_status = $3, updated_at = $4
		WHERE applicant_id = $1`,
		applicantID, scorerJSON, string(status), r.now(),
	)
	if err != nil {
		return errors.NewDatabaseWriteError("update scorer result", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("phase3_application", applicantID)
	}
	return nil
}

func upsertPhase1(ctx context.Context, tx *sql.Tx, app *models.Phase1Application) error {
	dataJSON, err := json.Marshal(phase1Data{Company: app.Company, Personal: app.Personal, Extended: app.Extended})
	if err != nil {
		return errors.NewDatabaseWriteError("marshal phase1 application", err)
	}
	flagsJSON, err := encodeFlags(app.Flags)
	if err != nil {
		return err
	}

	// Answers are immutable after the first submission; only flags are recomputed.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO phase1_applications (applicant_id, data, flags, submitted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (applicant_id) DO UPDATE SET flags = EXCLUDED.flags`,
		app.ApplicantID, dataJSON, flagsJSON, app.SubmittedAt,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("upsert phase1 application", err)
	}
	return nil
}

// upsertPhase3 replaces the document. A nil SubmittedAt clears the submission, as on a
// reopen or a draft save. Scorer columns are left to SaveScorerResult.
func upsertPhase3(ctx context.Context, tx *sql.Tx, app *models.Phase3Application, now time.Time) error {
	dataJSON, err := json.Marshal(phase3Data{Product: app.Product, Team: app.Team, Funding: app.Funding, Legal: app.Legal})
	if err != nil {
		return errors.NewDatabaseWriteError("marshal phase3 application", err)
	}
	flagsJSON, err := encodeFlags(app.Flags)
	if err != nil {
		return err
	}
	app.UpdatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO phase3_applications (applicant_id, status, data, flags, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (applicant_id) DO UPDATE SET
			status = EXCLUDED.status,
			data = EXCLUDED.data,
			flags = EXCLUDED.flags,
			submitted_at = EXCLUDED.submitted_at,
			updated_at = EXCLUDED.updated_at`,
		app.ApplicantID, string(app.Status), dataJSON, flagsJSON, app.SubmittedAt, now,
	)
	if err != nil {
		return errors.NewDatabaseWriteError("upsert phase3 application", err)
	}
	return nil
}

func encodeFlags(flags []models.Flag) ([]byte, error) {
	if flags == nil {
		flags = []models.Flag{}
	}
	b, err := json.Marshal(flags)
	if err != nil {
		return nil, errors.NewDatabaseWriteError("marshal flags", err)
	}
	return b, nil
}

func decodeFlags(b []byte, dst *[]models.Flag) error {
	*dst = []models.Flag{}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.NewDatabaseQueryError("decode flags", err)
	}
	return nil
}
