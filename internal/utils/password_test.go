package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-menu", 4) // min cost keeps the test fast
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-menu", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-menu"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "s3cret-menu"))
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	a, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	b, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
