package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/handler"
	"github.com/menuvio/menu-api/internal/middleware"
	"github.com/menuvio/menu-api/internal/repository"
)

// httpErrorHandler renders every error escaping a handler as the API's
// uniform {"message": ...} body. Internal errors never leak details to the
// client; echo's default handler would expose the error string.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"message": msg})
}

// RegisterRoutes wires the base surface of the server: the health check,
// the uploaded-image static mount and the error handler every other route
// relies on.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	e.HTTPErrorHandler = httpErrorHandler
	e.GET("/healthz", handler.Health)
	// Uploaded meal/category/logo images are served straight from disk.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers the unauthenticated credential routes for both
// principal kinds. The rate limiter fronts all four endpoints; register and
// login are where credential stuffing and subdomain squatting concentrate.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api", limiter)
	g.POST("/restaurants/register", a.RegisterRestaurant)
	g.POST("/restaurants/login", a.LoginRestaurant)
	g.POST("/users/register", a.RegisterUser)
	g.POST("/users/login", a.LoginUser)
}

// RegisterPublic registers the unauthenticated storefront routes. These
// are tenant-selected by subdomain path parameter and carry no JWT or role
// middleware; the Redis response cache fronts them because menu reads
// dominate traffic.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/api/restaurants/subdomain/:sub", p.GetRestaurant, cache)
	e.GET("/api/categories/restaurant/:sub", p.GetCategories, cache)
	e.GET("/api/meals/restaurant/:sub", p.GetMeals, cache)
}

// RegisterOwner registers the restaurant dashboard routes. Every route
// runs the full principal chain (dev bypass, JWT, principal load) plus the
// RESTAURANT role gate; reads then pass through the non-blocking
// subscription check while every mutation requires an unexpired
// subscription.
func RegisterOwner(
	e *echo.Echo,
	cfg config.Config,
	restaurants *repository.RestaurantRepo,
	users *repository.UserRepo,
	rh *handler.RestaurantHandler,
	ch *handler.CategoryHandler,
	mh *handler.MealHandler,
	dh *handler.DiscountHandler,
) {
	g := e.Group("/api",
		middleware.DevAuthBypass(cfg, restaurants),
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.Principal(restaurants, users),
		middleware.RequireRole(repository.RoleRestaurant),
	)
	read := middleware.CheckSubscription(restaurants)
	write := middleware.RequireActiveSubscription(restaurants)

	g.GET("/restaurants/profile", rh.Profile, read)
	g.PUT("/restaurants/profile", rh.UpdateProfile, write)
	// The subscription refresh stays reachable for expired tenants; it is
	// how they observe the expiry in the first place.
	g.PUT("/restaurants/subscription", rh.RefreshSubscription)

	g.POST("/categories", ch.Create, write)
	g.GET("/categories", ch.List, read)
	g.GET("/categories/:id", ch.Get, read)
	g.PUT("/categories/:id", ch.Update, write)
	g.DELETE("/categories/:id", ch.Delete, write)

	g.POST("/meals", mh.Create, write)
	g.GET("/meals", mh.List, read)
	g.GET("/meals/:id", mh.Get, read)
	g.PUT("/meals/:id", mh.Update, write)
	g.DELETE("/meals/:id", mh.Delete, write)

	g.POST("/meals/:id/discount", dh.Set, write)
	g.DELETE("/meals/:id/discount", dh.Remove, write)
	g.GET("/meals/discounts/active", dh.Active, read)
	g.POST("/meals/discounts/cleanup", dh.Cleanup, write)
	g.POST("/meals/bulk-discount", dh.BulkSet, write)
	g.DELETE("/meals/bulk-delete", dh.BulkDelete, write)
}

// RegisterReviews registers the customer-facing review routes. The dev
// bypass is deliberately absent here: it fabricates restaurant principals,
// and reviews belong to customer accounts.
func RegisterReviews(
	e *echo.Echo,
	cfg config.Config,
	restaurants *repository.RestaurantRepo,
	users *repository.UserRepo,
	rv *handler.ReviewHandler,
) {
	g := e.Group("/api",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.Principal(restaurants, users),
		middleware.RequireRole(repository.RoleCustomer, repository.RoleAdmin),
	)
	g.POST("/meals/:id/reviews", rv.Add)
	g.PUT("/meals/:id/reviews/:reviewId", rv.Update)
	g.DELETE("/meals/:id/reviews/:reviewId", rv.Delete)
}
