// This file defines the Review model and repository. Reviews are value
// rows owned by exactly one meal; they have no lifecycle of their own.
// Every mutation recomputes the meal's cached mean rating inside the same
// transaction, so the cache can lag a concurrent writer at worst by one
// recompute but never drift permanently (the review rows stay the source
// of truth).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Review mirrors the 'meal_reviews' table. UserName denormalizes the
// author's display name at write time so public menus render without a
// join against users.
type Review struct {
	ID        uint64    `json:"id"`
	MealID    uint64    `json:"meal_id"`
	UserID    uint64    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrReviewNotFound is returned when a review cannot be found in the DB.
var ErrReviewNotFound = errors.New("review not found")

const reviewCols = `id, meal_id, user_id, user_name, rating, COALESCE(comment, ''), created_at, updated_at`

// ReviewRepo encapsulates all database queries related to reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// recomputeRating refreshes the meal's cached mean rating. Runs inside the
// caller's transaction. A meal with no reviews left gets rating 0.
func recomputeRating(ctx context.Context, tx *sql.Tx, mealID uint64) error {
	const q = `UPDATE meals
	           SET rating = COALESCE((SELECT AVG(rating) FROM meal_reviews WHERE meal_id = ?), 0)
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, mealID, mealID)
	return err
}

// Add appends a review to a meal and recomputes the cached mean in the
// same transaction. On success the review's ID and timestamps are set.
func (r *ReviewRepo) Add(ctx context.Context, rv *Review) (err error) {
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
	res, err := tx.ExecContext(ctx,
		"INSERT INTO meal_reviews (meal_id, user_id, user_name, rating, comment) VALUES (?,?,?,?,?)",
		rv.MealID, rv.UserID, rv.UserName, rv.Rating, rv.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	if err = recomputeRating(ctx, tx, rv.MealID); err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM meal_reviews WHERE id = ?", rv.ID).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
	return err
}

// GetByIDAndMeal fetches a review by id within the given meal.
func (r *ReviewRepo) GetByIDAndMeal(ctx context.Context, id, mealID uint64) (*Review, error) {
	q := "SELECT " + reviewCols + " FROM meal_reviews WHERE id = ? AND meal_id = ?"
	var rv Review
	err := r.db.QueryRowContext(ctx, q, id, mealID).Scan(&rv.ID, &rv.MealID, &rv.UserID,
		&rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// Update rewrites a review's rating and comment and recomputes the cached
// mean in the same transaction. Authorization (author or elevated role) is
// checked by the handler before calling.
func (r *ReviewRepo) Update(ctx context.Context, id, mealID uint64, rating int, comment string) (err error) {
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
	res, err := tx.ExecContext(ctx,
		"UPDATE meal_reviews SET rating = ?, comment = ? WHERE id = ? AND meal_id = ?",
		rating, comment, id, mealID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The row may be unchanged rather than missing; verify it exists.
		var exists int
		if err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM meal_reviews WHERE id = ? AND meal_id = ?", id, mealID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			err = ErrReviewNotFound
			return err
		}
	}
	err = recomputeRating(ctx, tx, mealID)
	return err
}

// Delete removes a review and recomputes the cached mean in the same
// transaction. The mean falls back to 0 when the last review goes.
func (r *ReviewRepo) Delete(ctx context.Context, id, mealID uint64) (err error) {
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
	res, err := tx.ExecContext(ctx,
		"DELETE FROM meal_reviews WHERE id = ? AND meal_id = ?", id, mealID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrReviewNotFound
		return err
	}
	err = recomputeRating(ctx, tx, mealID)
	return err
}

// ListByMealIDs returns the reviews of every listed meal in one query,
// keyed by meal id. Used by the public menu listing to avoid a per-meal
// round-trip.
func (r *ReviewRepo) ListByMealIDs(ctx context.Context, mealIDs []uint64) (map[uint64][]*Review, error) {
	out := make(map[uint64][]*Review, len(mealIDs))
	if len(mealIDs) == 0 {
		return out, nil
	}
	q := "SELECT " + reviewCols + " FROM meal_reviews WHERE meal_id IN (" + placeholders(len(mealIDs)) + ") ORDER BY id DESC"
	args := make([]any, 0, len(mealIDs))
	for _, id := range mealIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.MealID, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out[rv.MealID] = append(out[rv.MealID], &rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByMeal returns all reviews of a meal, newest first.
func (r *ReviewRepo) ListByMeal(ctx context.Context, mealID uint64) ([]*Review, error) {
	q := "SELECT " + reviewCols + " FROM meal_reviews WHERE meal_id = ? ORDER BY id DESC"
	rows, err := r.db.QueryContext(ctx, q, mealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.MealID, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
