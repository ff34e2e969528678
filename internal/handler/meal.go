package handler // handler package contains tenant-scoped meal handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/utils"
)

// MealHandler bundles dependencies for the owner-facing meal CRUD. Meals
// reference a category that must belong to the same restaurant; a foreign
// category id is a validation error, never a silent cross-tenant link.
type MealHandler struct {
	Cfg        config.Config
	Meals      *repository.MealRepo
	Categories *repository.CategoryRepo
}

func NewMealHandler(cfg config.Config, meals *repository.MealRepo, cats *repository.CategoryRepo) *MealHandler {
	return &MealHandler{Cfg: cfg, Meals: meals, Categories: cats}
}

func (h *MealHandler) saveMealImage(c echo.Context, required bool) (string, bool, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if required {
			return "", false, echo.NewHTTPError(http.StatusBadRequest, "image is required")
		}
		return "", false, nil
	}
	path, err := utils.SaveImage(fh, h.Cfg.UploadDir)
	if err != nil {
		if err == utils.ErrImageTooLarge || err == utils.ErrUnsupportedImageType {
			return "", false, echo.NewHTTPError(http.StatusBadRequest, "image: "+err.Error())
		}
		return "", false, echo.NewHTTPError(http.StatusInternalServerError, "image upload failed")
	}
	return path, true, nil
}

// Create handles POST /api/meals (multipart). Names and descriptions in
// both languages, a positive price, an image and a category owned by the
// same restaurant are all required; the failing field is named in the
// error message.
func (h *MealHandler) Create(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}

	required := map[string]string{}
	for _, key := range []string{"name[en]", "name[ar]", "description[en]", "description[ar]"} {
		v, _ := formValue(c, key)
		v = strings.TrimSpace(v)
		if v == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": key + " is required"})
		}
		required[key] = v
	}

	priceStr, _ := formValue(c, "price")
	price, err := strconv.ParseFloat(strings.TrimSpace(priceStr), 64)
	if err != nil || price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "price must be a positive number"})
	}

	catStr, _ := formValue(c, "category_id")
	categoryID, err := strconv.ParseUint(strings.TrimSpace(catStr), 10, 64)
	if err != nil || categoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "category_id is required"})
	}

	imageURL, _, err := h.saveMealImage(c, true)
	if err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	// The category must exist within this tenant; a category of another
	// restaurant is indistinguishable from a missing one.
	if _, err := h.Categories.GetByIDAndRestaurant(ctx, categoryID, rest.ID); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "category_id does not reference a category of this restaurant"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}

	meal := &repository.Meal{
		RestaurantID:  rest.ID,
		CategoryID:    categoryID,
		NameEN:        required["name[en]"],
		NameAR:        required["name[ar]"],
		DescriptionEN: required["description[en]"],
		DescriptionAR: required["description[ar]"],
		Price:         price,
		ImageURL:      imageURL,
	}
	if err := h.Meals.Create(ctx, meal); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create meal"})
	}
	return c.JSON(http.StatusCreated, meal)
}

// List handles GET /api/meals and returns the tenant's meals with derived
// discount fields attached.
func (h *MealHandler) List(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	items, err := h.Meals.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": withPricing(items)})
}

// Get handles GET /api/meals/:id.
func (h *MealHandler) Get(c echo.Context) error {
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
	meal, err := h.Meals.GetByIDAndRestaurant(ctx, id, rest.ID)
	if err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, pricedMealFrom(meal))
}

// Update handles PUT /api/meals/:id (multipart, all fields optional). A
// category change re-validates tenant ownership of the new category.
func (h *MealHandler) Update(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var u repository.MealUpdate
	setStr := func(dst **string, key string) {
		if v, ok := formValue(c, key); ok {
			val := strings.TrimSpace(v)
			*dst = &val
		}
	}
	setStr(&u.NameEN, "name[en]")
	setStr(&u.NameAR, "name[ar]")
	setStr(&u.DescriptionEN, "description[en]")
	setStr(&u.DescriptionAR, "description[ar]")
	for key, v := range map[string]*string{"name[en]": u.NameEN, "name[ar]": u.NameAR} {
		if v != nil && *v == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": key + " must not be empty"})
		}
	}

	if v, ok := formValue(c, "price"); ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || price <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "price must be a positive number"})
		}
		u.Price = &price
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if v, ok := formValue(c, "category_id"); ok {
		categoryID, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil || categoryID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "category_id is invalid"})
		}
		if _, err := h.Categories.GetByIDAndRestaurant(ctx, categoryID, rest.ID); err != nil {
			if err == repository.ErrCategoryNotFound {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "category_id does not reference a category of this restaurant"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
		}
		u.CategoryID = &categoryID
	}

	if path, okImg, err := h.saveMealImage(c, false); err != nil {
		return err
	} else if okImg {
		u.ImageURL = &path
	}

	meal, err := h.Meals.Update(ctx, id, rest.ID, u)
	if err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, pricedMealFrom(meal))
}

// Delete handles DELETE /api/meals/:id. Hard delete; the meal's reviews go
// with it.
func (h *MealHandler) Delete(c echo.Context) error {
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
	if err := h.Meals.DeleteByIDAndRestaurant(ctx, id, rest.ID); err != nil {
		if err == repository.ErrMealNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Meal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
