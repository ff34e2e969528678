package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-middleware"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

// echoWith runs a request through JWTAuth into a handler that echoes the
// context values the middleware is expected to set.
func echoWith(req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"principal_id": c.Get("principal_id"),
			"role":         c.Get("role"),
			"subdomain":    c.Get("subdomain"),
		})
	}, JWTAuth(testSecret))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":       42,
		"role":      "RESTAURANT",
		"subdomain": "pizza",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := echoWith(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"RESTAURANT"`)
	assert.Contains(t, rec.Body.String(), `"subdomain":"pizza"`)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := echoWith(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")
}

func TestJWTAuthExpiredToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":  42,
		"role": "RESTAURANT",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := echoWith(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestJWTAuthWrongSecret(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, "not-the-right-secret")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := echoWith(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestJWTAuthGarbageToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := echoWith(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     interface{}
		allowed  []string
		expected int
	}{
		{"matching role passes", "RESTAURANT", []string{"RESTAURANT"}, http.StatusOK},
		{"second allowed role passes", "ADMIN", []string{"CUSTOMER", "ADMIN"}, http.StatusOK},
		{"wrong role rejected", "CUSTOMER", []string{"RESTAURANT"}, http.StatusForbidden},
		{"absent role defaults to RESTAURANT", nil, []string{"RESTAURANT"}, http.StatusOK},
		{"absent role fails customer gate", nil, []string{"CUSTOMER"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			seed := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tt.role != nil {
						c.Set("role", tt.role)
					}
					return next(c)
				}
			}
			e.GET("/x", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, seed, RequireRole(tt.allowed...))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
