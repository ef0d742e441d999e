// internal/models/application.go
package models

import "time"

// Phase1Application holds the signup answers. Immutable once submitted except for flags.
type Phase1Application struct {
	ApplicantID string       `json:"applicantId"`
	Company     CompanyInfo  `json:"company"`
	Personal    PersonalInfo `json:"personal"`
	Extended    ExtendedInfo `json:"extended"`
	Flags       []Flag       `json:"flags,omitempty"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

type CompanyInfo struct {
	Name         string `json:"name"`
	Website      string `json:"website"`
	Description  string `json:"description,omitempty"`
	FounderCount int    `json:"founderCount"`
}

type PersonalInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedInUrl"`
}

type ExtendedInfo struct {
	ServiceCountry    string `json:"serviceCountry"`
	MilitaryUnit      string `json:"militaryUnit"`
	PitchDeckRef      string `json:"pitchDeckRef,omitempty"`
	NoDeckExplanation string `json:"noDeckExplanation,omitempty"`
}

// Phase3ApplicationStatus tracks the in-depth application document.
type Phase3ApplicationStatus string

const (
	Phase3Draft     Phase3ApplicationStatus = "DRAFT"
	Phase3Submitted Phase3ApplicationStatus = "SUBMITTED"
	Phase3Rejected  Phase3ApplicationStatus = "REJECTED"
)

// ScorerStatus tracks the external analysis of the problem/customer answer.
type ScorerStatus string

const (
	ScorerPending   ScorerStatus = "processing"
	ScorerCompleted ScorerStatus = "completed"
	ScorerFailed    ScorerStatus = "failed"
)

// Phase3Application is the in-depth application.
type Phase3Application struct {
	ApplicantID  string                  `json:"applicantId"`
	Status       Phase3ApplicationStatus `json:"status"`
	Product      ProductInfo             `json:"product"`
	Team         TeamInfo                `json:"team"`
	Funding      FundingInfo             `json:"funding"`
	Legal        LegalInfo               `json:"legal"`
	Scorer       *ScorerResult           `json:"scorer,omitempty"`
	ScorerStatus ScorerStatus            `json:"scorerStatus,omitempty"`
	Flags        []Flag                  `json:"flags,omitempty"`
	SubmittedAt  *time.Time              `json:"submittedAt,omitempty"`
	UpdatedAt    time.Time               `json:"updatedAt"`
}

type ProductInfo struct {
	ProblemAndCustomer string `json:"problemAndCustomer"`
	Solution           string `json:"solution,omitempty"`
	Stage              string `json:"stage,omitempty"`
}

// TeamCapacityFullTime is the only capacity that raises no flag.
const TeamCapacityFullTime = "all_full_time"

type TeamInfo struct {
	Capacity           string `json:"capacity"`
	DepartedCofounders int    `json:"departedCofounders"`
}

type FundingInfo struct {
	RaisedToDate float64    `json:"raisedToDate,omitempty"`
	Equity       []EquityRow `json:"equity"`
}

// EquityCategory classifies a cap-table row.
type EquityCategory string

const (
	EquityFounder    EquityCategory = "founder"
	EquityEmployee   EquityCategory = "employee"
	EquityInvestor   EquityCategory = "investor"
	EquityTotal      EquityCategory = "total"
	EquityGrandTotal EquityCategory = "grandTotal"
)

// EquityRow is one stakeholder line. Percentage is in percentage points (0-100).
type EquityRow struct {
	Name       string         `json:"name"`
	Shares     float64        `json:"shares"`
	Percentage float64        `json:"percentage"`
	Category   EquityCategory `json:"category"`
}

// Alternate structure answers for non-incorporated companies.
const (
	AlternateStructureDiscuss = "discuss"
)

// Willingness to amend governing documents.
const (
	AmendYes = "yes"
	AmendNo  = "no"
)

type LegalInfo struct {
	Incorporated       bool   `json:"incorporated"`
	AlternateStructure string `json:"alternateStructure,omitempty"`
	HasIPAssignment    bool   `json:"hasIpAssignment"`
	HasFounderVesting  bool   `json:"hasFounderVesting"`
	HasBoardStructure  bool   `json:"hasBoardStructure"`
	WillingToAmend     string `json:"willingToAmend,omitempty"`
}

// ScorerResult is the opaque external analysis of free text.
type ScorerResult struct {
	Score             float64  `json:"score"`
	IsSpecific        bool     `json:"isSpecific"`
	HasClearTarget    bool     `json:"hasClearTarget"`
	HasDefinedProblem bool     `json:"hasDefinedProblem"`
	Feedback          string   `json:"feedback,omitempty"`
	Strengths         []string `json:"strengths,omitempty"`
	Weaknesses        []string `json:"weaknesses,omitempty"`
}
