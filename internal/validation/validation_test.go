package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "paella2024", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Exactly Max Length", strings.Repeat("a", 71) + "1", false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("a", 72) + "1", true},
		{"No Digit", "soloLetras", true},
		{"No Letter", "1234567890", true},
		{"Unicode Letters", "ñandú2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "chef_ana123", false},
		{"Too Short", "an", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Illegal Chars", "ana@cocina", true},
		{"Starts Dash", "-ana", true},
		{"Ends Underscore", "ana_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "ana@example.com", false},
		{"Subdomain", "ana@mail.example.es", false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "ana@", true},
		{"Multiple At Symbols", "ana@@example.com", true},
		{"Space In Local Part", "ana maria@example.com", true},
		{"Trailing Dot In Domain", "ana@example.com.", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeIngredients(t *testing.T) {
	t.Parallel()
	got := NormalizeIngredients([]string{"  harina ", "", "   ", "huevos"})
	assert.Equal(t, []string{"harina", "huevos"}, got)
	assert.Error(t, ValidateIngredients(NormalizeIngredients([]string{" ", ""})))
	assert.NoError(t, ValidateIngredients(got))
	assert.Error(t, ValidateIngredients([]string{strings.Repeat("x", MaxIngredientLength+1)}))
}

func TestRecipeFieldRules(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateTitle("   "))
	assert.Error(t, ValidateTitle(strings.Repeat("t", MaxTitleLength+1)))
	assert.NoError(t, ValidateTitle("Tortilla de patatas"))

	assert.Error(t, ValidatePrepTime(-1))
	assert.NoError(t, ValidatePrepTime(0))
	assert.Error(t, ValidatePrepTime(MaxPrepTimeMinutes+1))

	assert.Equal(t, []uint{3, 1, 2}, DedupeIDs([]uint{3, 0, 1, 3, 2, 1}))
}
