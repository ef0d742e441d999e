// Package webinar owns webinar code shape, generation and lookup over cohorts.
package webinar

import (
	"crypto/rand"
	"math/big"
	"strings"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

const (
	// Alphabet omits 0/O and 1/I to keep codes readable aloud.
	Alphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLength = 6
)

// Normalize upper-cases and trims a submitted code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateShape rejects malformed codes without touching storage.
func ValidateShape(code string) error {
	c := Normalize(code)
	if len(c) != CodeLength {
		return errors.NewValidationError("code", "webinar code must be 6 characters")
	}
	for _, r := range c {
		if !strings.ContainsRune(Alphabet, r) {
			return errors.NewValidationError("code", "webinar code contains an invalid character")
		}
	}
	return nil
}

// Generate returns a random code that does not collide with any webinar in cohorts.
func Generate(cohorts []models.Cohort, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = 1
	}
	taken := make(map[string]struct{})
	for _, c := range cohorts {
		for _, w := range c.Webinars {
			taken[Normalize(w.Code)] = struct{}{}
		}
	}

	for i := 0; i < attempts; i++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, dup := taken[code]; !dup {
			return code, nil
		}
	}
	return "", errors.NewWebinarCodeExhaustedError(attempts)
}

// Match is a webinar found by code together with its owning cohort.
type Match struct {
	Webinar models.Webinar
	Cohort  models.Cohort
}

// Find scans every cohort's embedded webinars for a case-insensitive exact match.
func Find(cohorts []models.Cohort, code string) (Match, bool) {
	c := Normalize(code)
	for _, cohort := range cohorts {
		for _, w := range cohort.Webinars {
			if strings.EqualFold(w.Code, c) {
				if w.CohortID == "" {
					w.CohortID = cohort.ID
				}
				return Match{Webinar: w, Cohort: cohort}, true
			}
		}
	}
	return Match{}, false
}

// NextNum is the session number for a webinar appended to c.
func NextNum(c models.Cohort) int {
	return len(c.Webinars) + 1
}

func randomCode() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}
