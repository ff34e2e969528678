package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/utils"
)

// RestaurantHandler serves the tenant's own profile and subscription
// endpoints.
type RestaurantHandler struct {
	Cfg         config.Config
	Restaurants *repository.RestaurantRepo
}

func NewRestaurantHandler(cfg config.Config, r *repository.RestaurantRepo) *RestaurantHandler {
	return &RestaurantHandler{Cfg: cfg, Restaurants: r}
}

// Profile handles GET /api/restaurants/profile. The subscription status in
// the payload is the derived one, so an expired trial reads as expired even
// before the transition has been persisted by a gate.
func (h *RestaurantHandler) Profile(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restaurant":         rest,
		"subscriptionStatus": rest.SubscriptionStatusAt(time.Now().UTC()),
	})
}

// UpdateProfile handles PUT /api/restaurants/profile. The request is
// multipart so the logo and banner can ride along; all other fields are
// optional and absent fields are left untouched.
func (h *RestaurantHandler) UpdateProfile(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}

	var u repository.ProfileUpdate
	set := func(dst **string, key string) {
		if v, ok := formValue(c, key); ok {
			val := v
			*dst = &val
		}
	}
	set(&u.Name, "name")
	set(&u.Currency, "currency")
	set(&u.Language, "language")
	set(&u.InstagramURL, "instagram_url")
	set(&u.FacebookURL, "facebook_url")
	set(&u.WhatsappNumber, "whatsapp_number")

	for _, img := range []struct {
		field string
		dst   **string
	}{
		{"logo", &u.LogoURL},
		{"banner", &u.BannerURL},
	} {
		fh, err := c.FormFile(img.field)
		if err != nil {
			continue // field absent
		}
		path, err := utils.SaveImage(fh, h.Cfg.UploadDir)
		if err != nil {
			if err == utils.ErrImageTooLarge || err == utils.ErrUnsupportedImageType {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": img.field + ": " + err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "image upload failed"})
		}
		*img.dst = &path
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	updated, err := h.Restaurants.UpdateProfile(ctx, rest.ID, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update profile failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant": updated})
}

// RefreshSubscription handles PUT /api/restaurants/subscription: recompute
// the subscription status from trial_ends_at and persist the transition
// when it happened. Clients call this to sync their UI after the trial
// window rolls over.
func (h *RestaurantHandler) RefreshSubscription(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	status := rest.SubscriptionStatusAt(now)
	if status != rest.SubscriptionStatus {
		ctx, cancel := reqContext(c)
		defer cancel()
		if err := h.Restaurants.UpdateSubscriptionStatus(ctx, rest.ID, status); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update subscription failed"})
		}
		rest.SubscriptionStatus = status
	}
	return c.JSON(http.StatusOK, echo.Map{
		"subscriptionStatus": status,
		"trial_ends_at":      rest.TrialEndsAt,
		"plan":               rest.SubscriptionPlan,
	})
}
