// Package cohort validates cohort date windows and rejects scheduling overlaps.
package cohort

import (
	"time"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

// Windows are the two date intervals that must not collide between cohorts.
type Windows struct {
	ApplicationStart time.Time
	ApplicationEnd   time.Time
	ProgramStart     time.Time
	ProgramEnd       time.Time
}

// WindowsOf extracts the intervals from a cohort.
func WindowsOf(c models.Cohort) Windows {
	return Windows{
		ApplicationStart: c.ApplicationStart,
		ApplicationEnd:   c.ApplicationEnd,
		ProgramStart:     c.ProgramStart,
		ProgramEnd:       c.ProgramEnd,
	}
}

// ValidateDates checks ordering inside one cohort. It must pass before Overlaps is meaningful.
func ValidateDates(w Windows) error {
	switch {
	case w.ApplicationStart.IsZero() || w.ApplicationEnd.IsZero() || w.ProgramStart.IsZero() || w.ProgramEnd.IsZero():
		return errors.NewValidationError("dates", "all four cohort dates are required")
	case !w.ApplicationStart.Before(w.ApplicationEnd):
		return errors.NewValidationError("applicationEndDate", "application start must be before application end")
	case !w.ProgramStart.Before(w.ProgramEnd):
		return errors.NewValidationError("programEndDate", "program start must be before program end")
	case w.ApplicationEnd.After(w.ProgramStart):
		return errors.NewValidationError("programStartDate", "application end must be on or before program start")
	}
	return nil
}

// Overlaps reports which window, if any, collides. Application windows are checked first.
func Overlaps(a, b Windows) (string, bool) {
	if intersects(a.ApplicationStart, a.ApplicationEnd, b.ApplicationStart, b.ApplicationEnd) {
		return errors.WindowApplication, true
	}
	if intersects(a.ProgramStart, a.ProgramEnd, b.ProgramStart, b.ProgramEnd) {
		return errors.WindowProgram, true
	}
	return "", false
}

// CheckAgainst validates candidate and compares it with every other cohort. A cohort with
// the candidate's ID is the candidate itself being updated and is skipped.
func CheckAgainst(candidate models.Cohort, existing []models.Cohort) error {
	w := WindowsOf(candidate)
	if err := ValidateDates(w); err != nil {
		return err
	}

	for _, other := range existing {
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if window, ok := Overlaps(w, WindowsOf(other)); ok {
			return &errors.OverlapError{
				CohortID:            candidate.ID,
				ConflictingCohortID: other.ID,
				Window:              window,
			}
		}
	}
	return nil
}

func intersects(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || bEnd.Before(aStart))
}
