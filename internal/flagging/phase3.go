package flagging

import (
	"fmt"
	"strings"

	"accelerator-portal/internal/models"
)

const (
	FieldScorer        = "product.problemAndCustomer"
	FieldCapacity      = "team.capacity"
	FieldDeparted      = "team.departedCofounders"
	FieldEquity        = "funding.equity"
	FieldIncorporation = "legal.incorporation"

	// MinScorerScore is the lowest external score that raises no flag, on a 1-10 scale.
	MinScorerScore = 7.0
)

// AnalyzePhase3 evaluates the in-depth application. The result always needs review;
// the in-depth application never advances automatically.
func AnalyzePhase3(app models.Phase3Application) models.FlaggingResult {
	var flags []models.Flag

	switch {
	case app.Scorer == nil:
		flags = append(flags, yellow(FieldScorer, "problem/customer answer has no external score"))
	case app.Scorer.Score < MinScorerScore:
		flags = append(flags, yellowf(FieldScorer, "problem/customer answer scored %.1f, below %.0f", app.Scorer.Score, MinScorerScore))
	}

	if app.Team.Capacity != models.TeamCapacityFullTime {
		capacity := app.Team.Capacity
		if blank(capacity) {
			capacity = "unspecified"
		}
		flags = append(flags, yellow(FieldCapacity, "team is not all full time ("+capacity+")"))
	}

	if app.Team.DepartedCofounders > 0 {
		flags = append(flags, yellowf(FieldDeparted, "%d co-founder(s) have departed", app.Team.DepartedCofounders))
	}

	flags = append(flags, CheckEquity(app.Funding.Equity)...)
	flags = append(flags, incorporationFlags(app.Legal)...)

	return models.FlaggingResult{
		Flags:       nonNil(flags),
		NeedsReview: true,
		AutoAdvance: false,
	}
}

func incorporationFlags(l models.LegalInfo) []models.Flag {
	if !l.Incorporated {
		if strings.EqualFold(strings.TrimSpace(l.AlternateStructure), models.AlternateStructureDiscuss) {
			return []models.Flag{yellow(FieldIncorporation, "not incorporated; applicant wants to discuss an alternate structure")}
		}
		return nil
	}

	var missing []string
	if !l.HasIPAssignment {
		missing = append(missing, "IP assignment")
	}
	if !l.HasFounderVesting {
		missing = append(missing, "founder vesting")
	}
	if !l.HasBoardStructure {
		missing = append(missing, "board structure")
	}
	if len(missing) == 0 {
		return nil
	}

	terms := strings.Join(missing, ", ")
	var msg string
	switch strings.ToLower(strings.TrimSpace(l.WillingToAmend)) {
	case models.AmendNo:
		msg = fmt.Sprintf("incorporated without %s and unwilling to amend", terms)
	case models.AmendYes:
		msg = fmt.Sprintf("incorporated without %s; will amend", terms)
	default:
		msg = fmt.Sprintf("incorporated without %s; amendment status unknown", terms)
	}
	return []models.Flag{yellow(FieldIncorporation, msg)}
}

func yellow(field, msg string) models.Flag {
	return models.Flag{Type: models.FlagYellow, Field: field, Message: msg}
}

func yellowf(field, format string, args ...interface{}) models.Flag {
	return yellow(field, fmt.Sprintf(format, args...))
}
