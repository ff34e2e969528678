package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMealRepoMock(t *testing.T) (*MealRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMealRepo(db), mock
}

const (
	setDiscountPattern = `UPDATE meals\s+SET discount_percentage = \?, discount_starts_at = \?, discount_ends_at = \?\s+WHERE id = \? AND restaurant_id = \?`
	resetDiscountScope = `SET discount_percentage = 0, discount_starts_at = NULL, discount_ends_at = NULL\s+WHERE`
)

func TestSetThenRemoveDiscountScopesToRestaurant(t *testing.T) {
	repo, mock := newMealRepoMock(t)
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	mock.ExpectExec(setDiscountPattern).
		WithArgs(20.0, start, end, int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetDiscount(ctx, 10, 1, 20, start, end))

	mock.ExpectExec(resetDiscountScope + ` id = \? AND restaurant_id = \?`).
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RemoveDiscount(ctx, 10, 1))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkSetDiscountExcludesForeignIDs(t *testing.T) {
	repo, mock := newMealRepoMock(t)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	// Two ids requested, but the restaurant_id filter matches only one row;
	// the reported count must be what the database touched.
	mock.ExpectExec(`UPDATE meals\s+SET discount_percentage = \?, discount_starts_at = \?, discount_ends_at = \?\s+WHERE restaurant_id = \? AND id IN \(\?,\?\)`).
		WithArgs(15.0, start, end, int64(1), int64(10), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.BulkSetDiscount(context.Background(), 1, []uint64{10, 99}, 15, start, end)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredDiscountsIdempotent(t *testing.T) {
	repo, mock := newMealRepoMock(t)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	pattern := resetDiscountScope + ` restaurant_id = \? AND discount_percentage > 0\s+AND discount_ends_at IS NOT NULL AND discount_ends_at < \?`

	mock.ExpectExec(pattern).WithArgs(int64(1), now).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(pattern).WithArgs(int64(1), now).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := repo.CleanupExpiredDiscounts(context.Background(), 1, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.CleanupExpiredDiscounts(context.Background(), 1, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "second cleanup pass must report zero modified")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDAndRestaurantForeignMeal(t *testing.T) {
	repo, mock := newMealRepoMock(t)

	// The meal exists but belongs to restaurant 1; restaurant 2 asking for
	// it gets not-found and no delete statement ever runs.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT restaurant_id FROM meals WHERE id = \?`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"restaurant_id"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.DeleteByIDAndRestaurant(context.Background(), 10, 2)
	assert.ErrorIs(t, err, ErrMealNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateForeignMealNotFound(t *testing.T) {
	repo, mock := newMealRepoMock(t)

	// The ownership pre-read is restaurant-scoped; a foreign meal scans no
	// rows and no UPDATE runs.
	mock.ExpectQuery(`FROM meals WHERE id = \? AND restaurant_id = \?`).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	name := "Shawarma"
	_, err := repo.Update(context.Background(), 10, 2, MealUpdate{NameEN: &name})
	assert.ErrorIs(t, err, ErrMealNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkDeleteScopesToRestaurant(t *testing.T) {
	repo, mock := newMealRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE r FROM meal_reviews r\s+JOIN meals m ON m.id = r.meal_id\s+WHERE m.restaurant_id = \? AND m.id IN \(\?,\?\)`).
		WithArgs(int64(1), int64(10), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM meals WHERE restaurant_id = \? AND id IN \(\?,\?\)`).
		WithArgs(int64(1), int64(10), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.BulkDelete(context.Background(), 1, []uint64{10, 99})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "count reflects meals actually deleted, not ids requested")
	require.NoError(t, mock.ExpectationsWereMet())
}
