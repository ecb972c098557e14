package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"taskCalendar/internal/models/task"
	"taskCalendar/internal/repository"
	"taskCalendar/internal/repository/task/sqlite"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStorage(t *testing.T) (*sqlite.Storage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewWithDB(db), mock
}

func assertStorageError(t *testing.T, err error, cause error) {
	t.Helper()
	require.Error(t, err)

	var sErr *repository.StorageError
	require.True(t, errors.As(err, &sErr), "ожидалась StorageError, получено %T", err)
	assert.ErrorIs(t, err, repository.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, repository.ErrValidation)
}

func TestStorage_CreateStorageError(t *testing.T) {
	storage, mock := setupMockStorage(t)
	diskErr := errors.New("disk I/O error")

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs("Run", nil, "personal", "2024-03-05", "aaron", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(diskErr)

	_, err := storage.Create(context.Background(), task.NewTask{
		Title: "Run", Category: "personal", Date: "2024-03-05", UserID: "aaron",
	})

	assertStorageError(t, err, diskErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ValidationBeforeStorageAccess(t *testing.T) {
	storage, mock := setupMockStorage(t)

	_, err := storage.Create(context.Background(), task.NewTask{Category: "personal", Date: "2024-03-05", UserID: "aaron"})
	assert.ErrorIs(t, err, repository.ErrValidation)

	_, err = storage.Update(context.Background(), 1, task.NewPatch(task.WithDate("05.03.2024")))
	assert.ErrorIs(t, err, repository.ErrValidation)

	_, err = storage.ListByMonth(context.Background(), 2024, 0, "")
	assert.ErrorIs(t, err, repository.ErrValidation)

	// ни одного запроса к базе
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ListStorageError(t *testing.T) {
	storage, mock := setupMockStorage(t)
	lockErr := errors.New("database is locked")

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE date >= \? AND date <= \? AND user_id = \? ORDER BY date, created_at, id`).
		WithArgs("2024-02-01", "2024-02-31", "emily").
		WillReturnError(lockErr)

	_, err := storage.ListByMonth(context.Background(), 2024, 2, "emily")

	assertStorageError(t, err, lockErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_DeleteStorageError(t *testing.T) {
	storage, mock := setupMockStorage(t)
	ioErr := errors.New("disk full")

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnError(ioErr)

	_, err := storage.Delete(context.Background(), 5)

	assertStorageError(t, err, ioErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateRollsBackOnError(t *testing.T) {
	storage, mock := setupMockStorage(t)
	ioErr := errors.New("disk I/O error")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET date = \?, updated_at = \? WHERE id = \?`).
		WithArgs("2024-03-07", sqlmock.AnyArg(), int64(3)).
		WillReturnError(ioErr)
	mock.ExpectRollback()

	_, err := storage.Update(context.Background(), 3, task.NewPatch(task.WithDate("2024-03-07")))

	assertStorageError(t, err, ioErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateMissingRowCommitsNothing(t *testing.T) {
	storage, mock := setupMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET updated_at = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	updated, err := storage.Update(context.Background(), 42, task.Patch{})

	assert.NoError(t, err)
	assert.Nil(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_InitWithoutPath(t *testing.T) {
	storage, _ := setupMockStorage(t)
	assert.Error(t, storage.Init(context.Background()))
}
