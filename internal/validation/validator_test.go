package validation

import (
	"testing"

	"inkwell/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email,max=60"`
	Bio      string `json:"description" validate:"max=10"`
}

func TestStructCollectsFieldMessages(t *testing.T) {
	err := Struct(sample{Username: "bad name!", Email: "nope", Bio: "far too long for this"})
	require.Error(t, err)

	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.ErrValidation, appErr.Code)
	assert.Equal(t, []string{"Enter a valid username."}, appErr.Fields["username"])
	assert.Equal(t, []string{"Enter a valid email address."}, appErr.Fields["email"])
	assert.Equal(t, []string{"Ensure this field has no more than 10 characters."}, appErr.Fields["description"])
}

func TestStructRequired(t *testing.T) {
	err := Struct(sample{})
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"This field is required."}, appErr.Fields["username"])
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sample{Username: "ada_l-1", Email: "ada@example.com"}))
}
