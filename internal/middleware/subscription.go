package middleware

// subscription.go implements the two-tier subscription gate. Both tiers
// recompute the trial status and persist the trial→expired transition the
// first time it is observed; only the blocking tier rejects requests. The
// rule is uniform across the API: every mutating route goes through
// RequireActiveSubscription, every read route through CheckSubscription.

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/repository"
)

// refreshSubscription computes the effective status for the restaurant
// principal, persisting the expiry transition when it just happened. The
// computed status is stored in context for handlers that echo it back.
func refreshSubscription(c echo.Context, restaurants *repository.RestaurantRepo) (string, error) {
	rest := RestaurantFrom(c)
	if rest == nil {
		return "", echo.ErrForbidden
	}
	now := time.Now().UTC()
	status := rest.SubscriptionStatusAt(now)
	if status != rest.SubscriptionStatus {
		ctx, cancel := contextWithTimeout(c, 5*time.Second)
		defer cancel()
		if err := restaurants.UpdateSubscriptionStatus(ctx, rest.ID, status); err != nil {
			// The derived status still gates this request; the persist retries
			// on the next one.
			log.Printf("subscription: persist transition failed for restaurant %d: %v", rest.ID, err)
		}
		rest.SubscriptionStatus = status
	}
	c.Set("subscription_status", status)
	return status, nil
}

// CheckSubscription recomputes and exposes the subscription status without
// blocking anything. Read endpoints use it so an expired tenant can still
// browse their dashboard.
func CheckSubscription(restaurants *repository.RestaurantRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := refreshSubscription(c, restaurants); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireActiveSubscription blocks the request with 403 when the
// restaurant's subscription is expired. The body carries a
// machine-readable subscriptionStatus field so clients can disable their
// mutating controls.
func RequireActiveSubscription(restaurants *repository.RestaurantRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			status, err := refreshSubscription(c, restaurants)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			if status == repository.SubscriptionExpired {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message":            "subscription expired",
					"subscriptionStatus": repository.SubscriptionExpired,
				})
			}
			return next(c)
		}
	}
}
