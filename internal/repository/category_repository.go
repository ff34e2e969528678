// This file defines the Category model and repository. A category groups
// meals inside a single restaurant's menu and carries a bilingual name.
// Category names must be unique per restaurant in each language, which is
// enforced both with a pre-check (for friendly errors naming the language)
// and with unique indexes (for correctness under concurrent writes).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category mirrors the 'categories' table.
type Category struct {
	ID            uint64    `json:"id"`
	RestaurantID  uint64    `json:"restaurant_id"`
	NameEN        string    `json:"name_en"`
	NameAR        string    `json:"name_ar"`
	DescriptionEN string    `json:"description_en"`
	DescriptionAR string    `json:"description_ar"`
	ImageURL      string    `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ErrCategoryNotFound is returned when a category cannot be found in the DB.
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategoryNameExists is returned when another category of the same
// restaurant already uses the requested name in either language.
var ErrCategoryNameExists = errors.New("category name already exists")

const categoryCols = `id, restaurant_id, name_en, name_ar,
	COALESCE(description_en, ''), COALESCE(description_ar, ''), image_url, created_at, updated_at`

// CategoryRepo encapsulates all database queries related to categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func scanCategory(row *sql.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.RestaurantID, &c.NameEN, &c.NameAR,
		&c.DescriptionEN, &c.DescriptionAR, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// NameExists reports whether another category of the restaurant already uses
// either name. excludeID skips the row being updated (0 for creates).
func (r *CategoryRepo) NameExists(ctx context.Context, restaurantID uint64, nameEN, nameAR string, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM categories
	           WHERE restaurant_id = ? AND (name_en = ? OR name_ar = ?) AND id <> ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, restaurantID, nameEN, nameAR, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new category for the restaurant. On success the ID and
// timestamp fields are populated.
func (r *CategoryRepo) Create(ctx context.Context, c *Category) error {
	const q = `INSERT INTO categories
		(restaurant_id, name_en, name_ar, description_en, description_ar, image_url)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.RestaurantID, c.NameEN, c.NameAR, c.DescriptionEN, c.DescriptionAR, c.ImageURL)
	if err != nil {
		if isDuplicate(err, "") {
			return ErrCategoryNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)

	got, err := r.GetByIDAndRestaurant(ctx, c.ID, c.RestaurantID)
	if err != nil {
		return err
	}
	*c = *got
	return nil
}

// GetByIDAndRestaurant fetches a category only if it belongs to the given
// restaurant. A category owned by another tenant is reported as not found,
// never as forbidden, so document ids leak nothing across tenants.
func (r *CategoryRepo) GetByIDAndRestaurant(ctx context.Context, id, restaurantID uint64) (*Category, error) {
	q := "SELECT " + categoryCols + " FROM categories WHERE id = ? AND restaurant_id = ?"
	return scanCategory(r.db.QueryRowContext(ctx, q, id, restaurantID))
}

// ListByRestaurant returns all categories of a restaurant ordered by id.
func (r *CategoryRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*Category, error) {
	q := "SELECT " + categoryCols + " FROM categories WHERE restaurant_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Category
	for rows.Next() {
		c := new(Category)
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.NameEN, &c.NameAR,
			&c.DescriptionEN, &c.DescriptionAR, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryUpdate carries optional fields of a category update. Nil pointers
// leave the stored value untouched.
type CategoryUpdate struct {
	NameEN        *string
	NameAR        *string
	DescriptionEN *string
	DescriptionAR *string
	ImageURL      *string
}

// Update applies a partial update to a category owned by the restaurant.
// Returns ErrCategoryNotFound when the row does not exist or belongs to a
// different tenant.
func (r *CategoryRepo) Update(ctx context.Context, id, restaurantID uint64, u CategoryUpdate) (*Category, error) {
	if _, err := r.GetByIDAndRestaurant(ctx, id, restaurantID); err != nil {
		return nil, err
	}
	sets := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name_en", u.NameEN)
	add("name_ar", u.NameAR)
	add("description_en", u.DescriptionEN)
	add("description_ar", u.DescriptionAR)
	add("image_url", u.ImageURL)
	if len(sets) > 0 {
		q := fmt.Sprintf("UPDATE categories SET %s WHERE id = ? AND restaurant_id = ?", strings.Join(sets, ", "))
		args = append(args, id, restaurantID)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			if isDuplicate(err, "") {
				return nil, ErrCategoryNameExists
			}
			return nil, err
		}
	}
	return r.GetByIDAndRestaurant(ctx, id, restaurantID)
}

// DeleteByIDAndRestaurant removes a category provided it belongs to the
// restaurant and no meal still references it. Deleting a category with
// dependent meals would orphan them, so the operation fails with
// ErrConflict instead.
func (r *CategoryRepo) DeleteByIDAndRestaurant(ctx context.Context, id, restaurantID uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM meals WHERE category_id = ? AND restaurant_id = ?",
		id, restaurantID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND restaurant_id = ?", id, restaurantID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
