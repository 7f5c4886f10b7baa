package validation

import (
	"testing"

	"patypatii_back_end/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

func TestStructValid(t *testing.T) {
	form := registerForm{
		Name:     "Wanjiku Kamau",
		Email:    "wanjiku@example.com",
		Password: "motdepasse123",
		Phone:    "+254712345678",
	}
	assert.Nil(t, Struct(form))
	assert.NoError(t, Check(form))
}

func TestStructCollectsAllViolations(t *testing.T) {
	form := registerForm{Name: "W", Email: "pas-un-email", Password: "court"}

	fields := Struct(form)
	require.Len(t, fields, 3, "la requête est rejetée en bloc, toutes les violations listées")

	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Contains(t, byField, "name")
	assert.Contains(t, byField, "email")
	assert.Contains(t, byField, "password")
	assert.Equal(t, "adresse e-mail invalide", byField["email"])
}

func TestStructUsesJSONFieldNames(t *testing.T) {
	form := registerForm{}
	fields := Struct(form)

	for _, f := range fields {
		assert.NotContains(t, []string{"Name", "Email", "Password"}, f.Field,
			"les erreurs citent le nom JSON, pas le nom Go")
	}
}

func TestCheckReturnsValidationError(t *testing.T) {
	err := Check(registerForm{})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Fields)
}

func TestPhoneRule(t *testing.T) {
	type form struct {
		Phone string `json:"phone" validate:"phone"`
	}

	assert.NoError(t, Check(form{Phone: "+254712345678"}))
	assert.NoError(t, Check(form{Phone: "0712345678"}))
	assert.Error(t, Check(form{Phone: "abc"}))
	assert.Error(t, Check(form{Phone: "12345"}))
}

func TestParsePagination(t *testing.T) {
	page, limit := ParsePagination("", "")
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultLimit, limit)

	page, limit = ParsePagination("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, limit)

	page, limit = ParsePagination("-1", "9999")
	assert.Equal(t, DefaultPage, page, "page négative → défaut")
	assert.Equal(t, MaxLimit, limit, "limit plafonné")

	page, limit = ParsePagination("abc", "xyz")
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultLimit, limit)
}

func TestIsValidSort(t *testing.T) {
	assert.True(t, IsValidSort("price_asc"))
	assert.True(t, IsValidSort("newest"))
	assert.False(t, IsValidSort("random"))
}
