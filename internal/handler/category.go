package handler // handler package contains tenant-scoped category handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/menuvio/menu-api/internal/config"
	"github.com/menuvio/menu-api/internal/repository"
	"github.com/menuvio/menu-api/internal/utils"
)

// CategoryHandler bundles dependencies for the owner-facing category CRUD.
// Every operation is scoped to the authenticated restaurant; ids belonging
// to another tenant behave as if they did not exist.
type CategoryHandler struct {
	Cfg        config.Config
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(cfg config.Config, cats *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Cfg: cfg, Categories: cats}
}

// saveCategoryImage stores the uploaded image when present. required
// controls whether a missing file is an error (creates) or a no-op
// (updates).
func (h *CategoryHandler) saveCategoryImage(c echo.Context, required bool) (string, bool, error) {
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

// Create handles POST /api/categories (multipart). Both language names and
// an image are required; per-restaurant uniqueness is checked in both
// languages so two categories never collide in either menu rendering.
func (h *CategoryHandler) Create(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	nameEN, _ := formValue(c, "name[en]")
	nameAR, _ := formValue(c, "name[ar]")
	nameEN = strings.TrimSpace(nameEN)
	nameAR = strings.TrimSpace(nameAR)
	if nameEN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name[en] is required"})
	}
	if nameAR == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name[ar] is required"})
	}
	descEN, _ := formValue(c, "description[en]")
	descAR, _ := formValue(c, "description[ar]")

	imageURL, _, err := h.saveCategoryImage(c, true)
	if err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	exists, err := h.Categories.NameExists(ctx, rest.ID, nameEN, nameAR, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"message": "category name already exists"})
	}

	cat := &repository.Category{
		RestaurantID:  rest.ID,
		NameEN:        nameEN,
		NameAR:        nameAR,
		DescriptionEN: descEN,
		DescriptionAR: descAR,
		ImageURL:      imageURL,
	}
	if err := h.Categories.Create(ctx, cat); err != nil {
		if err == repository.ErrCategoryNameExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "category name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "could not create category"})
	}
	return c.JSON(http.StatusCreated, cat)
}

// List handles GET /api/categories and returns the tenant's categories.
func (h *CategoryHandler) List(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	items, err := h.Categories.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /api/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
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
	cat, err := h.Categories.GetByIDAndRestaurant(ctx, id, rest.ID)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
	}
	return c.JSON(http.StatusOK, cat)
}

// Update handles PUT /api/categories/:id (multipart, all fields optional).
// A name change re-checks uniqueness excluding the row being updated.
func (h *CategoryHandler) Update(c echo.Context) error {
	rest, err := currentRestaurant(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var u repository.CategoryUpdate
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
	if u.NameEN != nil && *u.NameEN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name[en] must not be empty"})
	}
	if u.NameAR != nil && *u.NameAR == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "name[ar] must not be empty"})
	}

	if path, okImg, err := h.saveCategoryImage(c, false); err != nil {
		return err
	} else if okImg {
		u.ImageURL = &path
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if u.NameEN != nil || u.NameAR != nil {
		cur, err := h.Categories.GetByIDAndRestaurant(ctx, id, rest.ID)
		if err != nil {
			if err == repository.ErrCategoryNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "Category not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
		}
		checkEN, checkAR := cur.NameEN, cur.NameAR
		if u.NameEN != nil {
			checkEN = *u.NameEN
		}
		if u.NameAR != nil {
			checkAR = *u.NameAR
		}
		exists, err := h.Categories.NameExists(ctx, rest.ID, checkEN, checkAR, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "db error"})
		}
		if exists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "category name already exists"})
		}
	}

	cat, err := h.Categories.Update(ctx, id, rest.ID, u)
	if err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Category not found"})
		case repository.ErrCategoryNameExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update failed"})
	}
	return c.JSON(http.StatusOK, cat)
}

// Delete handles DELETE /api/categories/:id. Deleting a category that
// still has meals would orphan them, so that case returns 409 and the
// client must move or delete the meals first.
func (h *CategoryHandler) Delete(c echo.Context) error {
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
	if err := h.Categories.DeleteByIDAndRestaurant(ctx, id, rest.ID); err != nil {
		switch err {
		case repository.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Category not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "category still has meals assigned"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
