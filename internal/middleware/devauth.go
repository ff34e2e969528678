package middleware

// devauth.go implements the insecure local-dev auth bypass. It fabricates a
// restaurant principal from the Host header's subdomain so a local frontend
// can exercise the dashboard without minting tokens. The bypass never
// shares a conditional with the runtime profile: it requires its own
// INSECURE_DEV_AUTH_BYPASS variable (surfaced as cfg.DevAuthBypass, which
// is only ever true when APP_ENV is "dev"). Requests that do carry an
// Authorization header are verified normally even when the bypass is on.

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/utils"
)

// DevAuthBypass resolves the Host subdomain to a restaurant and attaches it
// as the request principal, marking the context so JWTAuth skips token
// verification. Disabled (a passthrough) unless cfg.DevAuthBypass is set.
func DevAuthBypass(cfg config.Config, restaurants *repository.RestaurantRepo) echo.MiddlewareFunc {
	if !cfg.DevAuthBypass {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") != "" {
				return next(c)
			}
			sub := utils.SubdomainFromHost(c.Request().Host, cfg.BaseDomain)
			if sub == "" {
				return next(c)
			}
			ctx, cancel := contextWithTimeout(c, 5*time.Second)
			defer cancel()
			rest, err := restaurants.GetBySubdomain(ctx, sub)
			if err != nil {
				// Unknown subdomain or DB trouble: fall through to normal auth.
				return next(c)
			}
			c.Set("auth_bypassed", true)
			c.Set("principal_id", rest.ID)
			c.Set("role", repository.RoleRestaurant)
			c.Set("restaurant", rest)
			return next(c)
		}
	}
}
