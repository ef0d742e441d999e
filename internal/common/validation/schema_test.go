package validation

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
)

const redeemSchema = `{
  "type": "object",
  "required": ["applicantId", "code"],
  "properties": {
    "applicantId": {"type": "string", "minLength": 1},
    "code": {"type": "string"}
  }
}`

func TestSchemaValidate(t *testing.T) {
	s := MustCompile("redeem", redeemSchema)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, s.Validate(`{"applicantId":"a1","code":"abc234"}`))
	})

	t.Run("missing required field", func(t *testing.T) {
		err := s.Validate(`{"code":"ABC234"}`)
		require.Error(t, err)

		var verr *errors.ValidationError
		require.True(t, stderrors.As(err, &verr))
		assert.Equal(t, "applicantId", verr.Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		err := s.Validate(`{"applicantId":"a1","code":42}`)
		var verr *errors.ValidationError
		require.True(t, stderrors.As(err, &verr))
		assert.Equal(t, "code", verr.Field)
	})

	t.Run("empty variables", func(t *testing.T) {
		assert.Error(t, s.Validate(""))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		assert.Error(t, s.Validate(`{"applicantId":`))
	})
}

func TestMustCompilePanicsOnBadSchema(t *testing.T) {
	assert.Panics(t, func() { MustCompile("bad", `{"type": 12}`) })
}
