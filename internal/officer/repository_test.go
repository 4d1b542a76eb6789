package officer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var officerCols = []string{"id", "name", "email", "is_active", "availability_status", "max_active_orders", "updated_at"}

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("FROM procurement_officers p JOIN users u ON u.id = p.user_id WHERE p.user_id = \\$1").
			WithArgs("officer-1").
			WillReturnRows(sqlmock.NewRows(officerCols).
				AddRow("officer-1", "Bola", "bola@example.com", true, "AVAILABLE", 5, time.Now()))

		o, err := repo.Get(context.Background(), "officer-1")
		require.NoError(t, err)
		assert.Equal(t, "Bola", o.Name)
		assert.Equal(t, Available, o.AvailabilityStatus)
		assert.True(t, o.Eligible())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE p.user_id").WillReturnRows(sqlmock.NewRows(officerCols))

		_, err := repo.Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, ErrOfficerNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListEligible(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("Excludes officer", func(t *testing.T) {
		mock.ExpectQuery("p.availability_status = 'AVAILABLE'").
			WithArgs("officer-1").
			WillReturnRows(sqlmock.NewRows(officerCols).
				AddRow("officer-2", "Chi", "chi@example.com", true, "AVAILABLE", 3, time.Now()))

		list, err := repo.ListEligible(context.Background(), "officer-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "officer-2", list[0].UserID)
		assert.Equal(t, 3, list[0].MaxActiveOrders)
	})

	t.Run("Query error", func(t *testing.T) {
		mock.ExpectQuery("p.availability_status").WillReturnError(errors.New("db down"))

		_, err := repo.ListEligible(context.Background(), "")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateAvailability(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		capacity := 8
		mock.ExpectExec("UPDATE procurement_officers").
			WithArgs("officer-1", Unavailable, capacity, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("WHERE p.user_id").
			WillReturnRows(sqlmock.NewRows(officerCols).
				AddRow("officer-1", "Bola", "bola@example.com", true, "UNAVAILABLE", 8, time.Now()))

		o, err := repo.UpdateAvailability(context.Background(), "officer-1", Unavailable, &capacity)
		require.NoError(t, err)
		assert.Equal(t, Unavailable, o.AvailabilityStatus)
		assert.Equal(t, 8, o.MaxActiveOrders)
	})

	t.Run("Keeps capacity when not given", func(t *testing.T) {
		mock.ExpectExec("COALESCE\\(\\$3, max_active_orders\\)").
			WithArgs("officer-1", Available, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("WHERE p.user_id").
			WillReturnRows(sqlmock.NewRows(officerCols).
				AddRow("officer-1", "Bola", "bola@example.com", true, "AVAILABLE", 8, time.Now()))

		_, err := repo.UpdateAvailability(context.Background(), "officer-1", Available, nil)
		require.NoError(t, err)
	})

	t.Run("Unknown officer", func(t *testing.T) {
		mock.ExpectExec("UPDATE procurement_officers").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := repo.UpdateAvailability(context.Background(), "ghost", Available, nil)
		assert.ErrorIs(t, err, ErrOfficerNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
