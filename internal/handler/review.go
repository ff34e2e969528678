package handler

// review.go implements the customer-facing review endpoints. Reviews hang
// off a meal; the meal's cached mean rating is recomputed by the repository
// inside the same transaction as every mutation.

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/middleware"
	"github.com/menuvio/menu-api/internal/queue"
	"github.com/menuvio/menu-api/internal/repository"
	queue_publisher "github.com/menuvio/menu-api/internal/service"
)

// ReviewHandler bundles dependencies for review endpoints.
type ReviewHandler struct {
	Meals   *repository.MealRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(meals *repository.MealRepo, reviews *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Meals: meals, Reviews: reviews}
}

type reviewReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Add handles POST /api/meals/:id/reviews. Requires a customer principal;
// restaurant principals cannot review meals (the role gate enforces this
// before the handler runs). Publishes a review event for the audit log.
func (h *ReviewHandler) Add(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "customer account required"})
	}
	mealID, okID := parseID(c, "id")
	if !okID {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be an integer between 1 and 5"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	meal, err := h.Meals.GetByID(ctx, mealID)
	if err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}

	rv := &repository.Review{
		MealID:   mealID,
		UserID:   user.ID,
		UserName: user.Name,
		Rating:   req.Rating,
		Comment:  strings.TrimSpace(req.Comment),
	}
	if err := h.Reviews.Add(ctx, rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not add review"})
	}

	updated, err := h.Meals.GetByID(ctx, mealID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}

	if err := queue_publisher.PublishReviewCreated(ctx, queue.ReviewCreatedEvent{
		ReviewID:     rv.ID,
		MealID:       mealID,
		RestaurantID: meal.RestaurantID,
		UserID:       user.ID,
		UserName:     user.Name,
		Rating:       rv.Rating,
		MealRating:   updated.Rating,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("review add: publish event failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"review": rv, "rating": updated.Rating})
}

// canTouch reports whether the principal may edit or delete the review:
// the original author, or an elevated (admin) role.
func canTouch(u repository.User, rv *repository.Review) bool {
	return u.ID == rv.UserID || u.Role == repository.RoleAdmin
}

// Update handles PUT /api/meals/:id/reviews/:reviewId.
func (h *ReviewHandler) Update(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "customer account required"})
	}
	mealID, okMeal := parseID(c, "id")
	reviewID, okReview := parseID(c, "reviewId")
	if !okMeal || !okReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be an integer between 1 and 5"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rv, err := h.Reviews.GetByIDAndMeal(ctx, reviewID, mealID)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	if !canTouch(user, rv) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "only the author can modify this review"})
	}

	if err := h.Reviews.Update(ctx, reviewID, mealID, req.Rating, strings.TrimSpace(req.Comment)); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update review failed"})
	}
	meal, err := h.Meals.GetByID(ctx, mealID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rating": meal.Rating})
}

// Delete handles DELETE /api/meals/:id/reviews/:reviewId. The mean falls
// back to 0 when the last review goes.
func (h *ReviewHandler) Delete(c echo.Context) error {
	user, ok := middleware.UserFrom(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "customer account required"})
	}
	mealID, okMeal := parseID(c, "id")
	reviewID, okReview := parseID(c, "reviewId")
	if !okMeal || !okReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rv, err := h.Reviews.GetByIDAndMeal(ctx, reviewID, mealID)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	if !canTouch(user, rv) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "only the author can delete this review"})
	}

	if err := h.Reviews.Delete(ctx, reviewID, mealID); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete review failed"})
	}
	meal, err := h.Meals.GetByID(ctx, mealID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rating": meal.Rating})
}
