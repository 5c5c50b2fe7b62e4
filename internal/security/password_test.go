package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correctpassword")
	require.NoError(t, err)
	assert.NotEqual(t, "correctpassword", hash)

	t.Run("matches", func(t *testing.T) {
		t.Parallel()
		assert.True(t, h.Matches("correctpassword", hash))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		assert.False(t, h.Matches("wrongpassword", hash))
	})

	t.Run("garbage hash", func(t *testing.T) {
		t.Parallel()
		assert.False(t, h.Matches("correctpassword", "not-a-hash"))
	})
}

func TestBcryptHasher_SaltsEveryCall(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(0)
	hash, err := h.Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_TooLong(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("x", MaxPasswordBytes+1))
	assert.Error(t, err)
}
