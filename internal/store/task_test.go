package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/apiserver/types"
)

func taskColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "status", "user_id", "created_at", "updated_at"})
}

func TestTaskRepositoryListByUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, title, description, status, user_id, created_at, updated_at").
		WithArgs(1).
		WillReturnRows(taskColumns().
			AddRow(10, "T", "D", "open", 1, now, now).
			AddRow(11, "U", nil, "done", 1, now, now))

	tasks, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "D", tasks[0].Description)
	assert.Empty(t, tasks[1].Description, "NULL description scans to empty string")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		now := time.Now()
		mock.ExpectQuery("SELECT id, title, description, status, user_id, created_at, updated_at").
			WithArgs(10).
			WillReturnRows(taskColumns().AddRow(10, "T", "D", "open", 1, now, now))

		task, err := repo.Get(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, 10, task.ID)
		assert.Equal(t, 1, task.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectQuery("SELECT id, title, description, status, user_id, created_at, updated_at").
			WithArgs(99).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTaskRepositoryCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectQuery("INSERT INTO tasks").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))

	task, err := repo.Create(context.Background(), types.Task{
		Title:       "T",
		Description: "D",
		Status:      "open",
		UserID:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryUpdate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectExec("UPDATE tasks").
			WillReturnResult(sqlmock.NewResult(0, 1))

		task, err := repo.Update(context.Background(), types.Task{
			ID:          10,
			Title:       "T2",
			Description: "D2",
			Status:      "done",
		})
		require.NoError(t, err)
		assert.Equal(t, "T2", task.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectExec("UPDATE tasks").
			WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.Update(context.Background(), types.Task{ID: 99, Title: "T"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTaskRepositoryDelete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectExec("DELETE FROM tasks").
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 10))
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewTaskRepository(db)

		mock.ExpectExec("DELETE FROM tasks").
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrNotFound)
	})
}
