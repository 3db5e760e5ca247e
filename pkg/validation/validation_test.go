package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signup/pkg/domain-errors"
)

type sampleRequest struct {
	PersonType string `json:"person_type" validate:"required,oneof=INDIVIDUAL ORGANIZATION"`
	PostalCode string `json:"postal_code" validate:"omitempty,postalcode_br"`
	Name       string `json:"name" validate:"omitempty,notblank"`
}

func TestValidate(t *testing.T) {
	t.Run("accepts a well formed request", func(t *testing.T) {
		err := Validate(&sampleRequest{PersonType: "INDIVIDUAL", PostalCode: "01310-100"})
		assert.NoError(t, err)
	})

	t.Run("reports missing fields in snake case", func(t *testing.T) {
		err := Validate(&sampleRequest{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "person_type is required", err.Error())
	})

	t.Run("reports oneof violations", func(t *testing.T) {
		err := Validate(&sampleRequest{PersonType: "ROBOT"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be one of")
	})

	t.Run("reports short postal codes", func(t *testing.T) {
		err := Validate(&sampleRequest{PersonType: "INDIVIDUAL", PostalCode: "0131010"})
		require.Error(t, err)
		assert.Equal(t, "postal_code must have 8 digits", err.Error())
	})

	t.Run("rejects blank strings", func(t *testing.T) {
		err := Validate(&sampleRequest{PersonType: "INDIVIDUAL", Name: "   "})
		require.Error(t, err)
		assert.Equal(t, "name must not be blank", err.Error())
	})
}

func TestVar(t *testing.T) {
	assert.True(t, Var("a@b.com", "email"))
	assert.False(t, Var("a@", "email"))
	assert.True(t, Var("1990-05-15", "datetime=2006-01-02"))
	assert.False(t, Var("15/05/1990", "datetime=2006-01-02"))
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(assert.AnError))
}
