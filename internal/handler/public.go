// This file defines handlers for the public storefront API. These routes
// allow diners to browse a restaurant's menu without authentication. The
// tenant is selected by subdomain (path parameter, mirroring the Host
// header label the storefront runs under) and sensitive fields (emails,
// password hashes, subscription internals) are filtered from responses.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing. It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Restaurants *repository.RestaurantRepo
	Categories  *repository.CategoryRepo
	Meals       *repository.MealRepo
	Reviews     *repository.ReviewRepo
}

// PublicRestaurant represents a storefront exposed via the public API. It
// carries the display settings a menu page needs and nothing else.
type PublicRestaurant struct {
	ID             uint64 `json:"id"`
	Subdomain      string `json:"subdomain"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	Language       string `json:"language"`
	LogoURL        string `json:"logo_url,omitempty"`
	BannerURL      string `json:"banner_url,omitempty"`
	InstagramURL   string `json:"instagram_url,omitempty"`
	FacebookURL    string `json:"facebook_url,omitempty"`
	WhatsappNumber string `json:"whatsapp_number,omitempty"`
}

// PublicCategory represents a category in public menu responses.
type PublicCategory struct {
	ID          uint64    `json:"id"`
	Name        localized `json:"name"`
	Description localized `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// PublicReview represents a review embedded in a public meal payload.
type PublicReview struct {
	ID        uint64    `json:"id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicMeal represents a meal in public menu responses, with the derived
// discount fields and the meal's reviews attached.
type PublicMeal struct {
	ID                 uint64         `json:"id"`
	CategoryID         uint64         `json:"category_id"`
	Name               localized      `json:"name"`
	Description        localized      `json:"description"`
	Price              float64        `json:"price"`
	ImageURL           string         `json:"image_url,omitempty"`
	DiscountPercentage float64        `json:"discount_percentage"`
	DiscountStartsAt   *time.Time     `json:"discount_starts_at,omitempty"`
	DiscountEndsAt     *time.Time     `json:"discount_ends_at,omitempty"`
	IsDiscountActive   bool           `json:"is_discount_active"`
	DiscountedPrice    float64        `json:"discounted_price"`
	Rating             float64        `json:"rating"`
	Reviews            []PublicReview `json:"reviews"`
}

func publicRestaurantFrom(r *repository.Restaurant) PublicRestaurant {
	return PublicRestaurant{
		ID:             r.ID,
		Subdomain:      r.Subdomain,
		Name:           r.Name,
		Currency:       r.Currency,
		Language:       r.Language,
		LogoURL:        r.LogoURL,
		BannerURL:      r.BannerURL,
		InstagramURL:   r.InstagramURL,
		FacebookURL:    r.FacebookURL,
		WhatsappNumber: r.WhatsappNumber,
	}
}

// resolveTenant looks up the restaurant behind the :sub path parameter.
// Unknown subdomains yield a 404 *echo.HTTPError rendered by the top-level
// error handler.
func (h *PublicHandler) resolveTenant(c echo.Context) (*repository.Restaurant, error) {
	sub := c.Param("sub")
	if sub == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "subdomain is required")
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	rest, err := h.Restaurants.GetBySubdomain(ctx, sub)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Restaurant not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return rest, nil
}

// GetRestaurant handles GET /api/restaurants/subdomain/:sub.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	rest, err := h.resolveTenant(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publicRestaurantFrom(rest))
}

// GetCategories handles GET /api/categories/restaurant/:sub.
func (h *PublicHandler) GetCategories(c echo.Context) error {
	rest, err := h.resolveTenant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	cats, err := h.Categories.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	out := make([]PublicCategory, 0, len(cats))
	for _, cat := range cats {
		out = append(out, PublicCategory{
			ID:          cat.ID,
			Name:        localized{EN: cat.NameEN, AR: cat.NameAR},
			Description: localized{EN: cat.DescriptionEN, AR: cat.DescriptionAR},
			ImageURL:    cat.ImageURL,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": publicRestaurantFrom(rest), "items": out})
}

// GetMeals handles GET /api/meals/restaurant/:sub. Every meal carries its
// derived discount fields and reviews so the storefront renders from a
// single request.
func (h *PublicHandler) GetMeals(c echo.Context) error {
	rest, err := h.resolveTenant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	meals, err := h.Meals.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	ids := make([]uint64, 0, len(meals))
	for _, m := range meals {
		ids = append(ids, m.ID)
	}
	reviewsByMeal, err := h.Reviews.ListByMealIDs(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}

	now := time.Now().UTC()
	out := make([]PublicMeal, 0, len(meals))
	for _, m := range meals {
		pm := PublicMeal{
			ID:                 m.ID,
			CategoryID:         m.CategoryID,
			Name:               localized{EN: m.NameEN, AR: m.NameAR},
			Description:        localized{EN: m.DescriptionEN, AR: m.DescriptionAR},
			Price:              m.Price,
			ImageURL:           m.ImageURL,
			DiscountPercentage: m.DiscountPercentage,
			DiscountStartsAt:   m.DiscountStartsAt,
			DiscountEndsAt:     m.DiscountEndsAt,
			IsDiscountActive:   m.DiscountActiveAt(now),
			DiscountedPrice:    m.DiscountedPriceAt(now),
			Rating:             m.Rating,
			Reviews:            []PublicReview{},
		}
		for _, rv := range reviewsByMeal[m.ID] {
			pm.Reviews = append(pm.Reviews, PublicReview{
				ID:        rv.ID,
				UserName:  rv.UserName,
				Rating:    rv.Rating,
				Comment:   rv.Comment,
				CreatedAt: rv.CreatedAt,
			})
		}
		out = append(out, pm)
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": publicRestaurantFrom(rest), "items": out})
}
