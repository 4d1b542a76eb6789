package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment-be/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Officer gets a procurement profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WithArgs(sqlmock.AnyArg(), "Bola", "bola@example.com", "hash", utils.RoleOfficer, true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO procurement_officers").
			WithArgs(sqlmock.AnyArg(), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		u := &User{Name: "Bola", Email: "bola@example.com", PasswordHash: "hash", Role: utils.RoleOfficer, Active: true}
		require.NoError(t, repo.Create(ctx, u, 0))
		assert.NotEmpty(t, u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin has no profile", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, &User{Email: "a@example.com", Role: utils.RoleAdmin}, 0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err = repo.Create(ctx, &User{Email: "a@example.com", Role: utils.RoleAdmin}, 0)
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Profile failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO procurement_officers").WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err = repo.Create(ctx, &User{Email: "o@example.com", Role: utils.RoleOfficer}, 2)
		assert.EqualError(t, err, "db error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)
	ctx := context.Background()

	cols := []string{"id", "name", "email", "password_hash", "role", "is_active", "created_at"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("FROM users").WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("u-1", "Ada", "ada@example.com", "hash", "ADMIN", true, time.Now()))

		u, err := repo.FindByEmail(ctx, "Ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u-1", u.ID)
		assert.Equal(t, utils.RoleAdmin, u.Role)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("FROM users").WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.FindByEmail(ctx, "who@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
