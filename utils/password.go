package utils

import (
	"unicode"

	"github.com/matthewhartstonge/argon2"
)

const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func VerifyPassword(encodedHash, password string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, err
	}
	return ok, nil
}

// PasswordPolicyViolations lists every rule the password breaks, in a fixed
// order. An empty result means the password is acceptable.
func PasswordPolicyViolations(password string) []string {
	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}

	violations := []string{}
	if len([]rune(password)) < MinPasswordLength {
		violations = append(violations, "Password must be at least 6 characters long.")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one digit.")
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter.")
	}
	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter.")
	}
	return violations
}
