package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1", hash)

	ok, err := VerifyPassword(hash, "Secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "Secret2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordPolicyViolations(t *testing.T) {
	tests := []struct {
		password string
		want     []string
	}{
		{"Secret1", []string{}},
		{"Ab1", []string{"Password must be at least 6 characters long."}},
		{"secret1", []string{"Password must contain at least one uppercase letter."}},
		{"SECRET1", []string{"Password must contain at least one lowercase letter."}},
		{"Secrets", []string{"Password must contain at least one digit."}},
		{"", []string{
			"Password must be at least 6 characters long.",
			"Password must contain at least one digit.",
			"Password must contain at least one lowercase letter.",
			"Password must contain at least one uppercase letter.",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordPolicyViolations(tt.password))
		})
	}
}
