package cohort

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func cohortA() models.Cohort {
	return models.Cohort{
		ID:               "cohort-a",
		ApplicationStart: day(time.January, 1),
		ApplicationEnd:   day(time.January, 31),
		ProgramStart:     day(time.February, 1),
		ProgramEnd:       day(time.April, 1),
	}
}

func TestValidateDates(t *testing.T) {
	valid := WindowsOf(cohortA())
	require.NoError(t, ValidateDates(valid))

	touching := valid
	touching.ProgramStart = touching.ApplicationEnd
	assert.NoError(t, ValidateDates(touching), "application end may equal program start")

	tests := []struct {
		name   string
		mutate func(*Windows)
		field  string
	}{
		{"application reversed", func(w *Windows) { w.ApplicationEnd = w.ApplicationStart }, "applicationEndDate"},
		{"program reversed", func(w *Windows) { w.ProgramEnd = day(time.January, 15) }, "programEndDate"},
		{"application after program start", func(w *Windows) { w.ApplicationEnd = day(time.February, 10) }, "programStartDate"},
		{"missing date", func(w *Windows) { w.ProgramEnd = time.Time{} }, "dates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mutate(&w)
			err := ValidateDates(w)
			var verr *errors.ValidationError
			require.True(t, stderrors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestOverlaps(t *testing.T) {
	a := WindowsOf(cohortA())

	t.Run("application windows intersect", func(t *testing.T) {
		b := Windows{
			ApplicationStart: day(time.January, 15),
			ApplicationEnd:   day(time.February, 15),
			ProgramStart:     day(time.May, 1),
			ProgramEnd:       day(time.July, 1),
		}
		window, ok := Overlaps(a, b)
		assert.True(t, ok)
		assert.Equal(t, errors.WindowApplication, window)
	})

	t.Run("program windows intersect only", func(t *testing.T) {
		b := Windows{
			ApplicationStart: day(time.February, 5),
			ApplicationEnd:   day(time.March, 1),
			ProgramStart:     day(time.March, 15),
			ProgramEnd:       day(time.June, 1),
		}
		window, ok := Overlaps(a, b)
		assert.True(t, ok)
		assert.Equal(t, errors.WindowProgram, window)
	})

	t.Run("shared boundary counts", func(t *testing.T) {
		b := Windows{
			ApplicationStart: day(time.January, 31),
			ApplicationEnd:   day(time.February, 1),
			ProgramStart:     day(time.May, 1),
			ProgramEnd:       day(time.June, 1),
		}
		_, ok := Overlaps(a, b)
		assert.True(t, ok)
	})

	t.Run("disjoint", func(t *testing.T) {
		b := Windows{
			ApplicationStart: day(time.April, 2),
			ApplicationEnd:   day(time.April, 30),
			ProgramStart:     day(time.May, 1),
			ProgramEnd:       day(time.July, 1),
		}
		_, ok := Overlaps(a, b)
		assert.False(t, ok)
		_, ok = Overlaps(b, a)
		assert.False(t, ok)
	})
}

func TestCheckAgainst(t *testing.T) {
	existing := []models.Cohort{cohortA()}

	t.Run("update skips itself", func(t *testing.T) {
		updated := cohortA()
		updated.ProgramEnd = day(time.April, 15)
		assert.NoError(t, CheckAgainst(updated, existing))
	})

	t.Run("new cohort overlapping is rejected", func(t *testing.T) {
		candidate := models.Cohort{
			ApplicationStart: day(time.January, 15),
			ApplicationEnd:   day(time.February, 15),
			ProgramStart:     day(time.May, 1),
			ProgramEnd:       day(time.June, 1),
		}
		err := CheckAgainst(candidate, existing)
		var oerr *errors.OverlapError
		require.True(t, stderrors.As(err, &oerr))
		assert.Equal(t, "cohort-a", oerr.ConflictingCohortID)
		assert.Equal(t, errors.ErrCodeCohortOverlap, errors.Normalize(err).Code)
	})

	t.Run("date ordering checked before overlap", func(t *testing.T) {
		candidate := cohortA()
		candidate.ID = "cohort-b"
		candidate.ApplicationEnd = candidate.ApplicationStart.Add(-time.Hour)
		var verr *errors.ValidationError
		assert.True(t, stderrors.As(CheckAgainst(candidate, existing), &verr))
	})

	t.Run("no existing cohorts", func(t *testing.T) {
		assert.NoError(t, CheckAgainst(cohortA(), nil))
	})
}
