package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexora/lexora_backend/models"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Ravi Kumar", SanitizeInput("  Ravi Kumar\t"))
	assert.Equal(t, "a<b", SanitizeInput("a<b"))
	assert.Equal(t, "O'Brien & Sons", SanitizeInput(" O'Brien & Sons\n"))
	assert.Equal(t, "hi", SanitizeInput("<script>alert(1)</script>hi"))
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "98 765-43210", want: "+9876543210"},
		{in: "+91 98765 43210", want: "+919876543210"},
		{in: "123", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizePhone(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSanitizeEmail(t *testing.T) {
	got, err := SanitizeEmail(" Sales@Lexora.IN ")
	require.NoError(t, err)
	assert.Equal(t, "sales@lexora.in", got)

	_, err = SanitizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestValidatorNotBlank(t *testing.T) {
	v := NewValidator()
	err := v.Struct(models.CustomerInput{Name: "   ", Phone: "1", Address: "x", TokenSerial: "T"})
	require.Error(t, err)
	assert.Contains(t, ValidationMessage(err), "name: notblank")

	assert.NoError(t, v.Struct(models.CustomerInput{Name: "A", Phone: "1", Address: "x", TokenSerial: "T"}))
}
