package handler // handler defines http handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/middleware"
	"github.com/menuvio/menu-api/internal/repository"
)

// dbTimeout bounds each handler's database window. All waiting in this
// system is network latency to the database or image store, so requests
// fail with a 5xx rather than hang when a dependency stalls.
const dbTimeout = 10 * time.Second

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentRestaurant pulls the restaurant principal attached by the
// Principal middleware. Routes that reach handlers using it are already
// role-gated, so a missing principal is a server-side wiring bug reported
// as 401. The returned error is an *echo.HTTPError rendered by the
// top-level error handler.
func currentRestaurant(c echo.Context) (*repository.Restaurant, error) {
	rest := middleware.RestaurantFrom(c)
	if rest == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return rest, nil
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// formValue reads a (possibly multipart) form field, reporting whether the
// field was present at all. Presence matters for partial updates: an empty
// submitted value clears a field while an absent one leaves it untouched.
// Bilingual fields arrive under bracketed keys like "name[en]".
func formValue(c echo.Context, key string) (string, bool) {
	params, err := c.FormParams()
	if err != nil {
		return "", false
	}
	vs, ok := params[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// localized is the bilingual text shape used in public payloads.
type localized struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}
