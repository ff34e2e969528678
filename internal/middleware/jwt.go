package middleware // middleware contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject, role and subdomain claims into the
// request context. The provided secret must match the one used when issuing
// tokens. Handlers behind it read the principal via c.Get("principal_id")
// and c.Get("role"); the Principal middleware then resolves those claims
// into a loaded restaurant or user.
//
// When the dev auth bypass middleware already attached a principal, the
// request passes through without a token.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get("auth_bypassed") == true {
				return next(c)
			}
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}

			c.Set("principal_id", claims["sub"])
			c.Set("role", claims["role"])
			if sub, ok := claims["subdomain"].(string); ok {
				c.Set("subdomain", sub)
			}
			return next(c)
		}
	}
}
