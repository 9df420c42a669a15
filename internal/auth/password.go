package auth

import (
	"errors"
	"regexp"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Name and password policy violations. Messages are shown to the caller as-is.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooShort     = errors.New("name must be at least 3 characters")
	ErrNameTooLong      = errors.New("name must be at most 20 characters")
	ErrNameCharacters   = errors.New("name may contain only letters, digits, underscore or CJK characters")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordUpper    = errors.New("password must contain an uppercase letter")
	ErrPasswordLower    = errors.New("password must contain a lowercase letter")
	ErrPasswordDigit    = errors.New("password must contain a digit")
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_\x{4e00}-\x{9fa5}]+$`)

// ValidateName checks a registration name: 3 to 20 characters of
// letters, digits, underscore or CJK ideographs.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return ErrNameRequired
	case n < 3:
		return ErrNameTooShort
	case n > 20:
		return ErrNameTooLong
	case !namePattern.MatchString(name):
		return ErrNameCharacters
	}
	return nil
}

// ValidatePassword requires six characters with mixed case and a digit,
// within the bcrypt input limit.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(password) < 6 {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return ErrPasswordUpper
	case !lower:
		return ErrPasswordLower
	case !digit:
		return ErrPasswordDigit
	}
	return nil
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
