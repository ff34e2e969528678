package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-for-access-tokens"

func parseClaims(t *testing.T, raw string) jwt.MapClaims {
	t.Helper()
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)
	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestNewAccessTokenRestaurant(t *testing.T) {
	access, err := NewAccessToken(testSecret, 42, "RESTAURANT", "pizza", 30)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)

	claims := parseClaims(t, access.Token)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "RESTAURANT", claims["role"])
	assert.Equal(t, "pizza", claims["subdomain"])

	exp := time.Unix(int64(claims["exp"].(float64)), 0)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), exp, time.Minute)
	assert.WithinDuration(t, access.Exp, exp, time.Second)
}

func TestNewAccessTokenCustomerOmitsSubdomain(t *testing.T) {
	access, err := NewAccessToken(testSecret, 7, "CUSTOMER", "", 30)
	require.NoError(t, err)

	claims := parseClaims(t, access.Token)
	assert.Equal(t, "CUSTOMER", claims["role"])
	_, present := claims["subdomain"]
	assert.False(t, present, "customer tokens must not carry a subdomain claim")
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	access, err := NewAccessToken(testSecret, 1, "RESTAURANT", "pizza", 30)
	require.NoError(t, err)

	_, err = jwt.Parse(access.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("some-other-secret"), nil
	})
	assert.Error(t, err)
}
