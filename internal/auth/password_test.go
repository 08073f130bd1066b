package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"at minimum length", "12345678", nil},
		{"one short", "1234567", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"at maximum length", strings.Repeat("a", 72), nil},
		{"one over", strings.Repeat("a", 73), ErrPasswordTooLong},
		// 25 three-byte runes are 75 bytes
		{"limit counts bytes", strings.Repeat("€", 25), ErrPasswordTooLong},
		{"eight runes of two bytes", "пароль12", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, ValidatePassword(tt.password))
		})
	}
}

func TestHashPassword(t *testing.T) {
	t.Run("uses the requested cost", func(t *testing.T) {
		hash, err := HashPassword("hymnal-password", bcrypt.MinCost+1)
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.MinCost+1, cost)
	})

	t.Run("salts every hash", func(t *testing.T) {
		a, err := HashPassword("hymnal-password", bcrypt.MinCost)
		require.NoError(t, err)
		b, err := HashPassword("hymnal-password", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects invalid lengths before hashing", func(t *testing.T) {
		hash, err := HashPassword("short", bcrypt.MinCost)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		assert.Empty(t, hash)
	})
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hymnal-password", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("hymnal-password", hash))
	assert.ErrorIs(t, CheckPassword("Hymnal-password", hash), ErrInvalidPassword)
	assert.ErrorIs(t, CheckPassword("", hash), ErrInvalidPassword)

	err = CheckPassword("hymnal-password", "not-a-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidPassword, "a malformed hash is not a wrong password")
}
