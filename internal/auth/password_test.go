package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateName(t *testing.T) {
	cases := map[string]error{
		"":                       ErrNameRequired,
		"ab":                     ErrNameTooShort,
		"abc":                    nil,
		"user_01":                nil,
		"张三丰":                    nil,
		strings.Repeat("a", 20): nil,
		strings.Repeat("a", 21): ErrNameTooLong,
		"bad name":               ErrNameCharacters,
		"dash-ed":                ErrNameCharacters,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ValidateName(name))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]error{
		"":        ErrPasswordRequired,
		"Ab1":     ErrPasswordTooShort,
		"abcde1":  ErrPasswordUpper,
		"ABCDE1":  ErrPasswordLower,
		"Abcdef":  ErrPasswordDigit,
		"Secret1": nil,
		"Secret1" + strings.Repeat("x", 65): nil,
		"Secret1" + strings.Repeat("x", 66): ErrPasswordTooLong,
		"Secret1" + strings.Repeat("密", 22): ErrPasswordTooLong,
	}
	for password, want := range cases {
		t.Run(password, func(t *testing.T) {
			assert.Equal(t, want, ValidatePassword(password))
		})
	}
}

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("Secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", hash)
	assert.NoError(t, ComparePassword(hash, "Secret1"))
	assert.Error(t, ComparePassword(hash, "secret1"))
}
