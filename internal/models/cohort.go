package models

import "time"

// Cohort is one program intake with its application and program windows.
type Cohort struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ApplicationStart time.Time `json:"applicationStartDate"`
	ApplicationEnd   time.Time `json:"applicationEndDate"`
	ProgramStart     time.Time `json:"programStartDate"`
	ProgramEnd       time.Time `json:"programEndDate"`
	Webinars         []Webinar `json:"webinars"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Webinar is embedded in its cohort. Code is unique across all cohorts.
type Webinar struct {
	Num       int       `json:"num"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
	CohortID  string    `json:"cohortId"`
}

// WebinarAttendance records one redemption.
type WebinarAttendance struct {
	ApplicantID string    `json:"applicantId"`
	CohortID    string    `json:"cohortId"`
	WebinarNum  int       `json:"webinarNum"`
	Code        string    `json:"code"`
	AttendedAt  time.Time `json:"attendedAt"`
}
