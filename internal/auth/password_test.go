package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, ComparePassword(hash, "secret123"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), bcrypt.ErrMismatchedHashAndPassword)
}

func TestHashPasswordSalts(t *testing.T) {
	first, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashPasswordOutOfRangeCost(t *testing.T) {
	hash, err := HashPassword("secret123", 0)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPasswordLongerThanBcryptLimit(t *testing.T) {
	long := strings.Repeat("a", 80)
	hash, err := HashPassword(long, bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, long))
	assert.NoError(t, ComparePassword(hash, long[:maxPasswordBytes]))
	assert.Error(t, ComparePassword(hash, long[:maxPasswordBytes-1]))
}
