// Package flagging evaluates application snapshots against the fixed review rules.
// Every function is pure; running it twice over the same input yields the same flags.
package flagging

import (
	"strings"

	"accelerator-portal/internal/models"
)

// Field names reported on flags.
const (
	FieldLinkedIn       = "personal.linkedInUrl"
	FieldWebsite        = "company.website"
	FieldEmail          = "personal.email"
	FieldFounderCount   = "company.founderCount"
	FieldMilitaryUnit   = "extended.militaryUnit"
	FieldServiceCountry = "extended.serviceCountry"
	FieldPitchDeck      = "extended.pitchDeck"
)

var consumerEmailDomains = domainSet(
	"gmail.com",
	"googlemail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"live.com",
	"aol.com",
	"icloud.com",
	"me.com",
	"mail.com",
	"protonmail.com",
	"proton.me",
	"yandex.com",
	"gmx.com",
	"zoho.com",
	"mailinator.com",
	"10minutemail.com",
	"guerrillamail.com",
	"tempmail.com",
	"temp-mail.org",
	"throwawaymail.com",
	"trashmail.com",
	"yopmail.com",
	"sharklasers.com",
	"getnada.com",
	"dispostable.com",
	"maildrop.cc",
	"fakeinbox.com",
	"mailnesia.com",
	"emailondeck.com",
)

var combatUnitKeywords = []string{
	"combat",
	"infantry",
	"special forces",
	"commando",
	"ranger",
	"seal",
	"paratroop",
	"marine",
	"armor",
	"armour",
	"artillery",
	"golani",
	"givati",
	"sayeret",
	"shayetet",
	"matkal",
	"duvdevan",
	"egoz",
	"maglan",
	"green beret",
	"airborne",
}

// AnalyzePhase1 evaluates signup answers. Yellow flags are advisory; the single red flag
// (no service country) blocks automatic advancement.
func AnalyzePhase1(app models.Phase1Application) models.FlaggingResult {
	var flags []models.Flag

	if blank(app.Personal.LinkedInURL) {
		flags = append(flags, yellow(FieldLinkedIn, "LinkedIn profile not provided"))
	}

	if blank(app.Company.Website) {
		flags = append(flags, yellow(FieldWebsite, "company website not provided"))
	}

	if domain, ok := consumerDomain(app.Personal.Email); ok {
		flags = append(flags, yellow(FieldEmail, "personal email domain "+domain+" is a consumer or disposable provider"))
	}

	if n := app.Company.FounderCount; n != 2 && n != 3 {
		flags = append(flags, yellowf(FieldFounderCount, "founder count %d is outside the preferred 2-3 range", n))
	}

	serviceCountry := strings.TrimSpace(app.Extended.ServiceCountry)
	if serviceCountry == "" {
		flags = append(flags, models.Flag{
			Type:    models.FlagRed,
			Field:   FieldServiceCountry,
			Message: "service country not provided",
		})
	} else if !IsCombatUnit(app.Extended.MilitaryUnit) {
		flags = append(flags, yellow(FieldMilitaryUnit, "military unit does not match a known combat unit"))
	}

	if blank(app.Extended.PitchDeckRef) && blank(app.Extended.NoDeckExplanation) {
		flags = append(flags, yellow(FieldPitchDeck, "no pitch deck and no explanation provided"))
	}

	result := models.FlaggingResult{Flags: nonNil(flags)}
	result.NeedsReview = result.HasRed()
	result.AutoAdvance = !result.NeedsReview
	return result
}

// IsCombatUnit reports whether unit contains a combat keyword, case-insensitively.
func IsCombatUnit(unit string) bool {
	u := strings.ToLower(unit)
	if strings.TrimSpace(u) == "" {
		return false
	}
	for _, kw := range combatUnitKeywords {
		if strings.Contains(u, kw) {
			return true
		}
	}
	return false
}

func consumerDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return "", false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	_, ok := consumerEmailDomains[domain]
	return domain, ok
}

func domainSet(domains ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[d] = struct{}{}
	}
	return set
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func nonNil(flags []models.Flag) []models.Flag {
	if flags == nil {
		return []models.Flag{}
	}
	return flags
}
