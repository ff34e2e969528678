package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewRepoMock(t *testing.T) (*ReviewRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReviewRepo(db), mock
}

// The rating recompute statement: mean over the meal's remaining reviews,
// COALESCEd to 0 when none are left.
const recomputePattern = `UPDATE meals\s+SET rating = COALESCE\(\(SELECT AVG\(rating\) FROM meal_reviews WHERE meal_id = \?\), 0\)\s+WHERE id = \?`

func TestAddReviewRecomputesRatingInSameTx(t *testing.T) {
	repo, mock := newReviewRepoMock(t)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO meal_reviews \(meal_id, user_id, user_name, rating, comment\)`).
		WithArgs(int64(5), int64(7), "Dina", int64(4), "very good").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(recomputePattern).
		WithArgs(int64(5), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM meal_reviews WHERE id = \?`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	rv := &Review{MealID: 5, UserID: 7, UserName: "Dina", Rating: 4, Comment: "very good"}
	require.NoError(t, repo.Add(context.Background(), rv))
	assert.EqualValues(t, 11, rv.ID)
	assert.Equal(t, now, rv.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewRecomputesRatingInSameTx(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE meal_reviews SET rating = \?, comment = \? WHERE id = \? AND meal_id = \?`).
		WithArgs(int64(5), "even better", int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(recomputePattern).
		WithArgs(int64(5), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), 11, 5, 5, "even better"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReviewRecomputesRatingInSameTx(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM meal_reviews WHERE id = \? AND meal_id = \?`).
		WithArgs(int64(11), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(recomputePattern).
		WithArgs(int64(5), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 11, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingReviewSkipsRecompute(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM meal_reviews WHERE id = \? AND meal_id = \?`).
		WithArgs(int64(999), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 999, 5)
	assert.ErrorIs(t, err, ErrReviewNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
