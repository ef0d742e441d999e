package webinar

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/internal/models"
)

func TestValidateShape(t *testing.T) {
	assert.NoError(t, ValidateShape("ABC234"))
	assert.NoError(t, ValidateShape(" abc234 "))

	for _, bad := range []string{"", "ABC23", "ABC2345", "ABC10O", "ABC-23"} {
		err := ValidateShape(bad)
		require.Error(t, err, bad)
		assert.Equal(t, errors.ErrCodeValidationFailed, errors.Normalize(err).Code)
	}
}

func TestGenerate(t *testing.T) {
	code, err := Generate(nil, 5)
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	assert.NoError(t, ValidateShape(code))
	for _, r := range code {
		assert.True(t, strings.ContainsRune(Alphabet, r))
	}
}

func TestGenerate_AvoidsExistingCodes(t *testing.T) {
	cohorts := []models.Cohort{{ID: "c1", Webinars: []models.Webinar{{Num: 1, Code: "AAAAAA"}}}}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := Generate(cohorts, 10)
		require.NoError(t, err)
		assert.NotEqual(t, "AAAAAA", code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestFind(t *testing.T) {
	cohorts := []models.Cohort{
		{ID: "c1", Webinars: []models.Webinar{{Num: 1, Code: "HJK234"}}},
		{ID: "c2", Webinars: []models.Webinar{{Num: 1, Code: "QRS789"}, {Num: 2, Code: "ZZZ222", CohortID: "c2"}}},
	}

	m, ok := Find(cohorts, "zzz222")
	require.True(t, ok)
	assert.Equal(t, 2, m.Webinar.Num)
	assert.Equal(t, "c2", m.Cohort.ID)

	m, ok = Find(cohorts, "hjk234")
	require.True(t, ok)
	assert.Equal(t, "c1", m.Webinar.CohortID)

	_, ok = Find(cohorts, "XXX999")
	assert.False(t, ok)
}

func TestNextNum(t *testing.T) {
	assert.Equal(t, 1, NextNum(models.Cohort{}))
	assert.Equal(t, 3, NextNum(models.Cohort{Webinars: make([]models.Webinar, 2)}))
}
