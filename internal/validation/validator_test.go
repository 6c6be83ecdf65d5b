package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetValidatorSingleton(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}

func TestTagColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#E26C2D", true},
		{"#e26c2d", true},
		{"#abc", true},
		{"E26C2D", false},
		{"#E26C2", false},
		{"#GGGGGG", false},
		{"#E26C2DFF", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			err := ValidateStruct(&types.CreateTagRequest{Name: "Lunch", Color: tt.color, Slug: "lunch"})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			verrs, ok := service.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, []string{"color"}, verrs.FieldNames())
		})
	}
}

func TestSlugAndUsername(t *testing.T) {
	err := ValidateStruct(&types.CreateTagRequest{Name: "Lunch", Color: "#fff", Slug: "late lunch"})
	verrs, ok := service.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"slug"}, verrs.FieldNames())

	req := &types.RegisterRequest{
		Email:     "cook@example.com",
		Username:  "cook.book+1@home",
		FirstName: "Cook",
		LastName:  "Book",
		Password:  "long-enough",
	}
	assert.NoError(t, ValidateStruct(req))

	req.Username = "no spaces"
	verrs, ok = service.AsValidation(ValidateStruct(req))
	require.True(t, ok)
	assert.Equal(t, []string{"username"}, verrs.FieldNames())
}

func TestTranslateUsesJSONNames(t *testing.T) {
	err := ValidateStruct(&types.RegisterRequest{Email: "nope", Password: "short"})
	verrs, ok := service.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"email", "first_name", "last_name", "password", "username"}, verrs.FieldNames())

	fields := verrs.Fields()
	assert.Equal(t, []string{"Enter a valid email address."}, fields["email"])
	assert.Equal(t, []string{"This field is required."}, fields["username"])
	assert.Equal(t, []string{"Ensure this field has at least 8 characters."}, fields["password"])
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	other := errors.New("boom")
	assert.Same(t, other, Translate(other))
}

func TestInstallGinValidator(t *testing.T) {
	InstallGinValidator()
	assert.Same(t, GetValidator(), binding.Validator.Engine())

	err := binding.Validator.ValidateStruct(&types.CreateTagRequest{Name: "Lunch", Color: "red", Slug: "lunch"})
	verrs, ok := service.AsValidation(Translate(err))
	require.True(t, ok)
	assert.Equal(t, []string{"color"}, verrs.FieldNames())

	assert.NoError(t, binding.Validator.ValidateStruct(nil))
	assert.NoError(t, binding.Validator.ValidateStruct([]string{"x"}))
}
