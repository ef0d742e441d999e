// Package postgres persists portal records with lib/pq. Every applicant state change goes
// through Transition, a version-checked conditional update.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is applied in order by Migrate. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS applicants (
		id VARCHAR(64) PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		phone VARCHAR(50),
		status VARCHAR(40) NOT NULL,
		webinar_attended INTEGER,
		rating SMALLINT CHECK (rating BETWEEN 1 AND 3),
		assigned_to VARCHAR(64),
		interviewer_id VARCHAR(64),
		cohort_id VARCHAR(64),
		flags JSONB NOT NULL DEFAULT '[]',
		needs_review BOOLEAN NOT NULL DEFAULT false,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_applicants_status ON applicants (status)`,
	`CREATE TABLE IF NOT EXISTS phase1_applications (
		applicant_id VARCHAR(64) PRIMARY KEY REFERENCES applicants(id),
		data JSONB NOT NULL,
		flags JSONB NOT NULL DEFAULT '[]',
		submitted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS phase3_applications (
		applicant_id VARCHAR(64) PRIMARY KEY REFERENCES applicants(id),
		status VARCHAR(20) NOT NULL,
		data JSONB NOT NULL,
		scorer_result JSONB,
		scorer_status VARCHAR(20),
		flags JSONB NOT NULL DEFAULT '[]',
		submitted_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cohorts (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		application_start TIMESTAMPTZ NOT NULL,
		application_end TIMESTAMPTZ NOT NULL,
		program_start TIMESTAMPTZ NOT NULL,
		program_end TIMESTAMPTZ NOT NULL,
		webinars JSONB NOT NULL DEFAULT '[]',
		is_active BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS webinar_attendance (
		applicant_id VARCHAR(64) NOT NULL REFERENCES applicants(id),
		cohort_id VARCHAR(64) NOT NULL,
		webinar_num INTEGER NOT NULL,
		code VARCHAR(6) NOT NULL,
		attended_at TIMESTAMPTZ NOT NULL,
		UNIQUE (applicant_id, cohort_id, webinar_num)
	)`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id VARCHAR(64) PRIMARY KEY,
		applicant_id VARCHAR(64) UNIQUE NOT NULL REFERENCES applicants(id),
		interviewer_id VARCHAR(64) NOT NULL,
		scheduled_at TIMESTAMPTZ,
		outcome VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS system_settings (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		skip_phase2 BOOLEAN NOT NULL DEFAULT false,
		updated_at TIMESTAMPTZ NOT NULL,
		updated_by VARCHAR(64)
	)`,
	`CREATE TABLE IF NOT EXISTS status_audit (
		id SERIAL PRIMARY KEY,
		applicant_id VARCHAR(64) NOT NULL,
		from_status VARCHAR(40) NOT NULL,
		to_status VARCHAR(40) NOT NULL,
		kind VARCHAR(10) NOT NULL,
		actor VARCHAR(64),
		reason TEXT,
		at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
