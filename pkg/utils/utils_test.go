package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("branch-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "branch-secret", hashed)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	again, err := HashPassword("branch-secret")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "every hash gets its own salt")
}

func TestCheckPasswordHash(t *testing.T) {
	hashed, err := HashPassword("branch-secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"matching password", "branch-secret", hashed, true},
		{"wrong password", "branch-secreT", hashed, false},
		{"empty password", "", hashed, false},
		{"malformed hash", "branch-secret", "not-a-hash", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPasswordHash(tt.password, tt.hash))
		})
	}
}

func TestDummyHash(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(DummyHash))
	require.NoError(t, err, "dummy hash must parse so unknown logins pay a real comparison")
	assert.Equal(t, bcrypt.DefaultCost, cost)

	for _, password := range []string{"", "secret", "branch-secret"} {
		assert.False(t, CheckPasswordHash(password, DummyHash), password)
	}
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"treasurer@example.com", true},
		{"sub.admin@branch.example.co.uk", true},
		{"invalid-email", false},
		{"invalid@.com", false},
		{"@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEmail(tt.email), tt.email)
	}
}
