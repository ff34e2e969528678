// This file defines the Meal model, its discount derivations and the meal
// repository. A meal belongs to one restaurant and references one category
// of the same restaurant. Discount activity and the sale price are never
// persisted; both are derived from the stored window at read time so they
// can never go stale.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Meal mirrors the 'meals' table. Rating caches the mean of the meal's
// review ratings; the review rows remain the source of truth and the cache
// is recomputed inside the same transaction as every review mutation.
type Meal struct {
	ID                 uint64     `json:"id"`
	RestaurantID       uint64     `json:"restaurant_id"`
	CategoryID         uint64     `json:"category_id"`
	NameEN             string     `json:"name_en"`
	NameAR             string     `json:"name_ar"`
	DescriptionEN      string     `json:"description_en"`
	DescriptionAR      string     `json:"description_ar"`
	Price              float64    `json:"price"`
	ImageURL           string     `json:"image_url"`
	DiscountPercentage float64    `json:"discount_percentage"`
	DiscountStartsAt   *time.Time `json:"discount_starts_at"`
	DiscountEndsAt     *time.Time `json:"discount_ends_at"`
	Rating             float64    `json:"rating"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DiscountActiveAt reports whether the meal's discount applies at the given
// instant. Unset window bounds are open: a missing start means "already
// started" and a missing end means "never expires".
func (m *Meal) DiscountActiveAt(now time.Time) bool {
	if m.DiscountPercentage <= 0 {
		return false
	}
	if m.DiscountStartsAt != nil && now.Before(*m.DiscountStartsAt) {
		return false
	}
	if m.DiscountEndsAt != nil && now.After(*m.DiscountEndsAt) {
		return false
	}
	return true
}

// DiscountedPriceAt returns the effective price at the given instant,
// rounded to two decimals. When the discount is inactive this is exactly
// the list price.
func (m *Meal) DiscountedPriceAt(now time.Time) float64 {
	if !m.DiscountActiveAt(now) {
		return m.Price
	}
	return round2(m.Price * (1 - m.DiscountPercentage/100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ErrMealNotFound is returned when a meal cannot be found in the DB.
var ErrMealNotFound = errors.New("meal not found")

const mealCols = `id, restaurant_id, category_id, name_en, name_ar,
	COALESCE(description_en, ''), COALESCE(description_ar, ''), price, image_url,
	discount_percentage, discount_starts_at, discount_ends_at, rating, created_at, updated_at`

// MealRepo encapsulates all database queries related to meals.
type MealRepo struct {
	db *sql.DB
}

func NewMealRepo(db *sql.DB) *MealRepo {
	return &MealRepo{db: db}
}

func scanMealFields(scan func(dest ...any) error) (*Meal, error) {
	var m Meal
	var starts, ends sql.NullTime
	err := scan(&m.ID, &m.RestaurantID, &m.CategoryID, &m.NameEN, &m.NameAR,
		&m.DescriptionEN, &m.DescriptionAR, &m.Price, &m.ImageURL,
		&m.DiscountPercentage, &starts, &ends, &m.Rating, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if starts.Valid {
		t := starts.Time
		m.DiscountStartsAt = &t
	}
	if ends.Valid {
		t := ends.Time
		m.DiscountEndsAt = &t
	}
	return &m, nil
}

func scanMealRow(row *sql.Row) (*Meal, error) {
	m, err := scanMealFields(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return m, nil
}

func collectMeals(rows *sql.Rows) ([]*Meal, error) {
	defer rows.Close()
	var out []*Meal
	for rows.Next() {
		m, err := scanMealFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new meal for the restaurant. The caller must already
// have verified that the category belongs to the same restaurant.
func (r *MealRepo) Create(ctx context.Context, m *Meal) error {
	const q = `INSERT INTO meals
		(restaurant_id, category_id, name_en, name_ar, description_en, description_ar, price, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		m.RestaurantID, m.CategoryID, m.NameEN, m.NameAR,
		m.DescriptionEN, m.DescriptionAR, m.Price, m.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)

	got, err := r.GetByIDAndRestaurant(ctx, m.ID, m.RestaurantID)
	if err != nil {
		return err
	}
	*m = *got
	return nil
}

// GetByID fetches a meal by id regardless of tenant. Used on the public
// review path where the caller is a customer, not a restaurant.
func (r *MealRepo) GetByID(ctx context.Context, id uint64) (*Meal, error) {
	q := "SELECT " + mealCols + " FROM meals WHERE id = ?"
	return scanMealRow(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDAndRestaurant fetches a meal only if it belongs to the restaurant.
// Foreign ids come back as ErrMealNotFound, never as a distinguishable
// forbidden error.
func (r *MealRepo) GetByIDAndRestaurant(ctx context.Context, id, restaurantID uint64) (*Meal, error) {
	q := "SELECT " + mealCols + " FROM meals WHERE id = ? AND restaurant_id = ?"
	return scanMealRow(r.db.QueryRowContext(ctx, q, id, restaurantID))
}

// ListByRestaurant returns all meals of a restaurant ordered by id.
func (r *MealRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]*Meal, error) {
	q := "SELECT " + mealCols + " FROM meals WHERE restaurant_id = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

// MealUpdate carries optional fields of a meal update. Nil pointers leave
// the stored value untouched.
type MealUpdate struct {
	CategoryID    *uint64
	NameEN        *string
	NameAR        *string
	DescriptionEN *string
	DescriptionAR *string
	Price         *float64
	ImageURL      *string
}

// Update applies a partial update to a meal owned by the restaurant.
func (r *MealRepo) Update(ctx context.Context, id, restaurantID uint64, u MealUpdate) (*Meal, error) {
	if _, err := r.GetByIDAndRestaurant(ctx, id, restaurantID); err != nil {
		return nil, err
	}
	sets := []string{}
	args := []any{}
	if u.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *u.CategoryID)
	}
	addStr := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	addStr("name_en", u.NameEN)
	addStr("name_ar", u.NameAR)
	addStr("description_en", u.DescriptionEN)
	addStr("description_ar", u.DescriptionAR)
	if u.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *u.Price)
	}
	addStr("image_url", u.ImageURL)
	if len(sets) > 0 {
		q := fmt.Sprintf("UPDATE meals SET %s WHERE id = ? AND restaurant_id = ?", strings.Join(sets, ", "))
		args = append(args, id, restaurantID)
		if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
			return nil, err
		}
	}
	return r.GetByIDAndRestaurant(ctx, id, restaurantID)
}

// DeleteByIDAndRestaurant removes a meal and its reviews provided the meal
// belongs to the restaurant.
func (r *MealRepo) DeleteByIDAndRestaurant(ctx context.Context, id, restaurantID uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var owner uint64
	if err = tx.QueryRowContext(ctx, "SELECT restaurant_id FROM meals WHERE id = ?", id).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrMealNotFound
		}
		return err
	}
	if owner != restaurantID {
		err = ErrMealNotFound
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM meal_reviews WHERE meal_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM meals WHERE id = ?", id); err != nil {
		return err
	}
	return nil
}

// SetDiscount persists a discount window on a single meal. Validation of
// the percentage range and window ordering happens in the handler; the
// repository only writes the three fields atomically.
func (r *MealRepo) SetDiscount(ctx context.Context, id, restaurantID uint64, percentage float64, start, end time.Time) error {
	const q = `UPDATE meals
	           SET discount_percentage = ?, discount_starts_at = ?, discount_ends_at = ?
	           WHERE id = ? AND restaurant_id = ?`
	res, err := r.db.ExecContext(ctx, q, percentage, start, end, id, restaurantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish "no such meal" from "already holds these values".
		if _, err := r.GetByIDAndRestaurant(ctx, id, restaurantID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveDiscount resets the percentage to zero and clears both window
// bounds on a single meal.
func (r *MealRepo) RemoveDiscount(ctx context.Context, id, restaurantID uint64) error {
	const q = `UPDATE meals
	           SET discount_percentage = 0, discount_starts_at = NULL, discount_ends_at = NULL
	           WHERE id = ? AND restaurant_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, restaurantID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByIDAndRestaurant(ctx, id, restaurantID); err != nil {
			return err
		}
	}
	return nil
}

// CleanupExpiredDiscounts bulk-resets every meal of the restaurant whose
// discount window has ended. Returns the number of rows actually modified,
// so a second run right after the first reports zero.
func (r *MealRepo) CleanupExpiredDiscounts(ctx context.Context, restaurantID uint64, now time.Time) (int64, error) {
	const q = `UPDATE meals
	           SET discount_percentage = 0, discount_starts_at = NULL, discount_ends_at = NULL
	           WHERE restaurant_id = ? AND discount_percentage > 0
	             AND discount_ends_at IS NOT NULL AND discount_ends_at < ?`
	res, err := r.db.ExecContext(ctx, q, restaurantID, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkSetDiscount applies the same discount window to every listed meal
// that belongs to the restaurant. Ids outside the tenant are silently
// excluded by the restaurant_id filter; the returned count reflects only
// rows actually modified.
func (r *MealRepo) BulkSetDiscount(ctx context.Context, restaurantID uint64, ids []uint64, percentage float64, start, end time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := fmt.Sprintf(`UPDATE meals
	           SET discount_percentage = ?, discount_starts_at = ?, discount_ends_at = ?
	           WHERE restaurant_id = ? AND id IN (%s)`, placeholders(len(ids)))
	args := []any{percentage, start, end, restaurantID}
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// BulkDelete removes every listed meal that belongs to the restaurant,
// along with the meals' reviews, and reports the number of meals deleted.
func (r *MealRepo) BulkDelete(ctx context.Context, restaurantID uint64, ids []uint64) (n int64, err error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	ph := placeholders(len(ids))
	args := []any{restaurantID}
	for _, id := range ids {
		args = append(args, id)
	}
	qReviews := fmt.Sprintf(`DELETE r FROM meal_reviews r
	           JOIN meals m ON m.id = r.meal_id
	           WHERE m.restaurant_id = ? AND m.id IN (%s)`, ph)
	if _, err = tx.ExecContext(ctx, qReviews, args...); err != nil {
		return 0, err
	}
	qMeals := fmt.Sprintf("DELETE FROM meals WHERE restaurant_id = ? AND id IN (%s)", ph)
	res, err := tx.ExecContext(ctx, qMeals, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListActiveDiscounts returns every meal of the restaurant whose discount
// is active at the given instant. The SQL filter mirrors DiscountActiveAt.
func (r *MealRepo) ListActiveDiscounts(ctx context.Context, restaurantID uint64, now time.Time) ([]*Meal, error) {
	q := "SELECT " + mealCols + ` FROM meals
	           WHERE restaurant_id = ? AND discount_percentage > 0
	             AND (discount_starts_at IS NULL OR discount_starts_at <= ?)
	             AND (discount_ends_at IS NULL OR discount_ends_at >= ?)
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, now, now)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

// placeholders builds a "?, ?, ?" list for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
