package handler

// discount.go implements the discount endpoints. Discount activity and the
// sale price are derived at read time from the stored window; nothing
// mutable is cached, so responses can never show a stale "active" flag.

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/queue"
	"github.com/menuvio/menu-api/internal/repository"
	queue_publisher "github.com/menuvio/menu-api/internal/service"
)

// DiscountHandler bundles dependencies for discount operations over the
// tenant's meal set.
type DiscountHandler struct {
	Meals *repository.MealRepo
}

func NewDiscountHandler(meals *repository.MealRepo) *DiscountHandler {
	return &DiscountHandler{Meals: meals}
}

// pricedMeal decorates a meal with its derived discount fields for JSON
// responses.
type pricedMeal struct {
	*repository.Meal
	IsDiscountActive bool    `json:"is_discount_active"`
	DiscountedPrice  float64 `json:"discounted_price"`
}

func pricedMealFrom(m *repository.Meal) pricedMeal {
	now := time.Now().UTC()
	return pricedMeal{Meal: m, IsDiscountActive: m.DiscountActiveAt(now), DiscountedPrice: m.DiscountedPriceAt(now)}
}

func withPricing(meals []*repository.Meal) []pricedMeal {
	out := make([]pricedMeal, 0, len(meals))
	now := time.Now().UTC()
	for _, m := range meals {
		out = append(out, pricedMeal{Meal: m, IsDiscountActive: m.DiscountActiveAt(now), DiscountedPrice: m.DiscountedPriceAt(now)})
	}
	return out
}

type discountReq struct {
	Percentage float64    `json:"percentage"`
	StartsAt   *time.Time `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
}

// validate checks the window invariants shared by single and bulk applies:
// percentage within [0,100] (zero is a valid write that the derivation
// treats as no discount), start strictly before end, and start not in the
// past at set-time.
func (r *discountReq) validate(now time.Time) string {
	if r.Percentage < 0 || r.Percentage > 100 {
		return "percentage must be between 0 and 100"
	}
	if r.StartsAt == nil || r.EndsAt == nil {
		return "starts_at and ends_at are required"
	}
	if !r.StartsAt.Before(*r.EndsAt) {
		return "starts_at must be before ends_at"
	}
	if r.StartsAt.Before(now.Add(-time.Minute)) {
		return "starts_at must not be in the past"
	}
	return ""
}

// Set handles POST /api/meals/:id/discount.
func (h *DiscountHandler) Set(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if msg := req.validate(time.Now().UTC()); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Meals.SetDiscount(ctx, id, rest.ID, req.Percentage, req.StartsAt.UTC(), req.EndsAt.UTC()); err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "set discount failed"})
	}
	meal, err := h.Meals.GetByIDAndRestaurant(ctx, id, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, pricedMealFrom(meal))
}

// Remove handles DELETE /api/meals/:id/discount: percentage back to zero,
// both window bounds cleared.
func (h *DiscountHandler) Remove(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Meals.RemoveDiscount(ctx, id, rest.ID); err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "remove discount failed"})
	}
	meal, err := h.Meals.GetByIDAndRestaurant(ctx, id, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, pricedMealFrom(meal))
}

// Active handles GET /api/meals/discounts/active: every meal of the tenant
// whose discount applies right now, with the sale price attached.
func (h *DiscountHandler) Active(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	items, err := h.Meals.ListActiveDiscounts(ctx, rest.ID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": withPricing(items)})
}

// Cleanup handles POST /api/meals/discounts/cleanup: bulk-reset every meal
// whose window already ended. Idempotent; a second call reports zero
// modified. Publishes a cleanup event for the audit log; publish failures
// never fail the request.
func (h *DiscountHandler) Cleanup(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	now := time.Now().UTC()
	n, err := h.Meals.CleanupExpiredDiscounts(ctx, rest.ID, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "cleanup failed"})
	}
	if n > 0 {
		if err := queue_publisher.PublishDiscountsCleaned(ctx, queue.DiscountsCleanedEvent{
			RestaurantID: rest.ID,
			Removed:      n,
			CleanedAt:    now.Format(time.RFC3339),
		}); err != nil {
			log.Printf("discount cleanup: publish event failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"modified": n})
}

type bulkDiscountReq struct {
	MealIDs []uint64 `json:"meal_ids"`
	discountReq
}

// BulkSet handles POST /api/meals/bulk-discount. Ids outside the tenant
// are silently excluded by the scoped update; the response carries the
// count of meals actually modified, not the count requested.
func (h *DiscountHandler) BulkSet(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	var req bulkDiscountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if len(req.MealIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "meal_ids is required"})
	}
	if msg := req.validate(time.Now().UTC()); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Meals.BulkSetDiscount(ctx, rest.ID, req.MealIDs, req.Percentage, req.StartsAt.UTC(), req.EndsAt.UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "bulk discount failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"modified": n})
}

type bulkDeleteReq struct {
	MealIDs []uint64 `json:"meal_ids"`
}

// BulkDelete handles DELETE /api/meals/bulk-delete. Only meals of the
// caller's tenant are deleted; the count reflects actual deletions.
func (h *DiscountHandler) BulkDelete(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	var req bulkDeleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if len(req.MealIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "meal_ids is required"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Meals.BulkDelete(ctx, rest.ID, req.MealIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "bulk delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
