package middleware

// identity.go resolves the claims set by JWTAuth into a loaded principal.
// Exactly one of a restaurant or a user is attached to the request context,
// never both: a request acts either as a tenant owner or as a customer.

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/repository"
)

// contextWithTimeout bounds a middleware's DB work by the request context.
func contextWithTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), d)
}

// Principal returns a middleware that loads the entity behind the token
// claims. A missing or "RESTAURANT" role loads the restaurant (rejected 403
// when its active flag is off); any other role loads the regular user.
// The referenced entity having vanished maps to 404.
func Principal(restaurants *repository.RestaurantRepo, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get("restaurant") != nil || c.Get("user") != nil {
				return next(c) // principal already attached (dev bypass)
			}
			id, err := PrincipalID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}
			role, _ := c.Get("role").(string)

			ctx, cancel := contextWithTimeout(c, 5*time.Second)
			defer cancel()

			if role == "" || role == repository.RoleRestaurant {
				rest, err := restaurants.GetByID(ctx, id)
				if err != nil {
					if errors.Is(err, repository.ErrRestaurantNotFound) {
						return c.JSON(http.StatusNotFound, echo.Map{"message": "Restaurant not found"})
					}
					return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load principal failed"})
				}
				if !rest.IsActive {
					return c.JSON(http.StatusForbidden, echo.Map{"message": "restaurant is deactivated"})
				}
				c.Set("restaurant", rest)
				return next(c)
			}

			u, err := users.GetByID(ctx, id)
			if err != nil {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
			}
			c.Set("user", u)
			return next(c)
		}
	}
}

// PrincipalID extracts the principal id claim from context and converts it
// to uint64. Claims decoded from JSON arrive as float64.
func PrincipalID(c echo.Context) (uint64, error) {
	v := c.Get("principal_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid principal_id in context")
}

// RestaurantFrom returns the restaurant principal attached to the request,
// or nil when the request is not restaurant-authenticated.
func RestaurantFrom(c echo.Context) *repository.Restaurant {
	r, _ := c.Get("restaurant").(*repository.Restaurant)
	return r
}

// UserFrom returns the user principal attached to the request.
func UserFrom(c echo.Context) (repository.User, bool) {
	u, ok := c.Get("user").(repository.User)
	return u, ok
}
