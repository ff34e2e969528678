package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints: restaurant
// registration/login and customer registration/login. Both principal kinds
// receive the same token shape (30-day HS256 access token, no refresh
// flow).
type AuthHandler struct {
	Cfg         config.Config
	Restaurants *repository.RestaurantRepo
	Users       *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, r *repository.RestaurantRepo, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Restaurants: r, Users: u}
}

// ----- DTOs -----

type restaurantRegisterReq struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Currency  string `json:"currency"`
	Language  string `json:"language"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userRegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// RegisterRestaurant creates a tenant and returns a token immediately. The
// requested subdomain (or the restaurant name when no subdomain is given)
// is slugified into the storefront label; the new tenant starts on a trial
// that ends TrialDays from now.
func (h *AuthHandler) RegisterRestaurant(c echo.Context) error {
	var req restaurantRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}
	source := req.Subdomain
	if strings.TrimSpace(source) == "" {
		source = req.Name
	}
	sub := utils.Slugify(source)
	if sub == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "subdomain is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create restaurant failed"})
	}
	rest := &repository.Restaurant{
		Subdomain:          sub,
		Email:              req.Email,
		PasswordHash:       hash,
		Name:               strings.TrimSpace(req.Name),
		SubscriptionStatus: repository.SubscriptionTrial,
		SubscriptionPlan:   "basic",
		TrialEndsAt:        time.Now().UTC().AddDate(0, 0, h.Cfg.TrialDays),
		Currency:           defaultStr(req.Currency, "USD"),
		Language:           defaultStr(req.Language, "en"),
	}
	if err := h.Restaurants.Create(ctx, rest); err != nil {
		switch err {
		case repository.ErrSubdomainExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "subdomain already exists"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create restaurant failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, rest.ID, repository.RoleRestaurant, rest.Subdomain, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"restaurant": rest,
		"access":     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// LoginRestaurant verifies credentials and returns a fresh token plus the
// restaurant record, so the dashboard can redirect to the tenant's
// subdomain without a second request.
func (h *AuthHandler) LoginRestaurant(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest, err := h.Restaurants.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(rest.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}
	if !rest.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "restaurant is deactivated"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, rest.ID, repository.RoleRestaurant, rest.Subdomain, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant": rest,
		"access":     tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// RegisterUser creates a customer account and returns a token immediately.
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var req userRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, strings.TrimSpace(req.Name), h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, repository.RoleCustomer, "", h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user":   echo.Map{"id": uid, "email": req.Email, "name": req.Name},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// LoginUser verifies customer credentials and returns a token.
func (h *AuthHandler) LoginUser(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, "", h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   echo.Map{"id": u.ID, "email": u.Email, "name": u.Name},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

func defaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
