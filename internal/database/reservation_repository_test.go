package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycharter/booking-backend/internal/models"
)

var reservationRows = []string{
	"id", "reference", "resource_id", "requester_id", "start_time", "end_time",
	"seat_code", "passenger_count", "distance_km", "status", "quote_amount", "quote_currency", "quote_expires_at",
	"payment_status", "payment_ref", "paid_at", "created_at", "updated_at",
}

func pendingRow(id, resourceID, requesterID uuid.UUID, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(reservationRows).AddRow(
		id, "CH-20250601-a1b2c3", resourceID, requesterID, now.Add(24*time.Hour), now.Add(26*time.Hour),
		nil, 3, 120.0, "pending", nil, nil, nil,
		nil, nil, nil, now, now,
	)
}

func TestCreateReservation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success With Preassigned ID", func(t *testing.T) {
		id := uuid.New()
		res := &models.Reservation{
			ID:             id,
			Reference:      "CH-20250601-a1b2c3",
			ResourceID:     uuid.New(),
			RequesterID:    uuid.New(),
			StartTime:      time.Now().Add(24 * time.Hour),
			EndTime:        time.Now().Add(26 * time.Hour),
			PassengerCount: 3,
			DistanceKm:     120,
		}

		mock.ExpectExec(`INSERT INTO reservations`).
			WithArgs(id, res.Reference, res.ResourceID, res.RequesterID, res.StartTime, res.EndTime,
				nil, 3, 120.0, "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(res)
		require.NoError(t, err)
		// The hold already references this ID, so Create must not reassign it
		assert.Equal(t, id, res.ID)
		assert.Equal(t, models.StatusPending, res.Status)
		assert.False(t, res.CreatedAt.IsZero())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Assigns ID When Missing", func(t *testing.T) {
		res := &models.Reservation{
			Reference:      "FL-20250601-d4e5f6",
			ResourceID:     uuid.New(),
			RequesterID:    uuid.New(),
			StartTime:      time.Now().Add(24 * time.Hour),
			EndTime:        time.Now().Add(26 * time.Hour),
			PassengerCount: 1,
		}

		mock.ExpectExec(`INSERT INTO reservations`).
			WithArgs(sqlmock.AnyArg(), res.Reference, res.ResourceID, res.RequesterID, res.StartTime, res.EndTime,
				nil, 1, 0.0, "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(res)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, res.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		res := &models.Reservation{
			ID:          uuid.New(),
			Reference:   "CH-20250601-a1b2c3",
			ResourceID:  uuid.New(),
			RequesterID: uuid.New(),
		}

		mock.ExpectExec(`INSERT INTO reservations`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(res)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create reservation")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetReservationByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success With Quote And Payment", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()
		paidAt := now.Add(-time.Hour)

		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				id, "CH-20250601-a1b2c3", uuid.New(), uuid.New(), now.Add(24*time.Hour), now.Add(26*time.Hour),
				nil, 3, 120.0, "paid", 9500.0, "USD", now.Add(10*time.Minute),
				"paid", "pay_7f3k2", paidAt, now, now,
			))

		res, err := repo.GetByID(id)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, models.StatusPaid, res.Status)
		require.NotNil(t, res.Quote)
		assert.Equal(t, 9500.0, res.Quote.Amount)
		assert.Equal(t, "USD", res.Quote.Currency)
		require.NotNil(t, res.Payment)
		assert.Equal(t, models.PaymentStatusPaid, res.Payment.Status)
		assert.Equal(t, "pay_7f3k2", res.Payment.ExternalRef)
		require.NotNil(t, res.Payment.PaidAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found Returns Nil", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		res, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.Nil(t, res)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, "paid", "completed").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				id, "CH-20250601-a1b2c3", uuid.New(), uuid.New(), now.Add(-26*time.Hour), now.Add(-24*time.Hour),
				nil, 3, 120.0, "completed", 9500.0, "USD", now,
				"paid", "pay_7f3k2", now, now, now,
			))

		res, err := repo.TransitionStatus(id, models.StatusPaid, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, res.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Guard Violation", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, "paid", "completed").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		res, err := repo.TransitionStatus(id, models.StatusPaid, models.StatusCompleted)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Reservation", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, "paid", "completed").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		res, err := repo.TransitionStatus(id, models.StatusPaid, models.StatusCompleted)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, models.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAttachQuote(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()
		quote := models.Quote{Amount: 9500, Currency: "USD", ExpiresAt: now.Add(10 * time.Minute)}

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, 9500.0, "USD", quote.ExpiresAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				id, "CH-20250601-a1b2c3", uuid.New(), uuid.New(), now.Add(24*time.Hour), now.Add(26*time.Hour),
				nil, 3, 120.0, "quoted", 9500.0, "USD", quote.ExpiresAt,
				nil, nil, nil, now, now,
			))

		res, err := repo.AttachQuote(id, quote)
		require.NoError(t, err)
		assert.Equal(t, models.StatusQuoted, res.Status)
		require.NotNil(t, res.Quote)
		assert.Equal(t, 9500.0, res.Quote.Amount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Quoted", func(t *testing.T) {
		id := uuid.New()
		quote := models.Quote{Amount: 9500, Currency: "USD", ExpiresAt: time.Now()}

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, 9500.0, "USD", quote.ExpiresAt).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		res, err := repo.AttachQuote(id, quote)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, "pay_7f3k2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				id, "CH-20250601-a1b2c3", uuid.New(), uuid.New(), now.Add(24*time.Hour), now.Add(26*time.Hour),
				nil, 3, 120.0, "paid", 9500.0, "USD", now.Add(10*time.Minute),
				"paid", "pay_7f3k2", now, now, now,
			))

		res, err := repo.MarkPaid(id, "pay_7f3k2", now)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaid, res.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Double Payment Rejected", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id, "pay_7f3k2", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		res, err := repo.MarkPaid(id, "pay_7f3k2", time.Now())
		assert.Nil(t, res)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelReservation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM reservations WHERE id`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(reservationRows).AddRow(
				id, "CH-20250601-a1b2c3", uuid.New(), uuid.New(), now.Add(24*time.Hour), now.Add(26*time.Hour),
				nil, 3, 120.0, "cancelled", nil, nil, nil,
				nil, nil, nil, now, now,
			))

		res, err := repo.Cancel(id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, res.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Second Cancel Loses The Race", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`UPDATE reservations`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		res, err := repo.Cancel(id)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetActiveByResource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	resourceID := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM reservations`).
		WithArgs(resourceID).
		WillReturnRows(pendingRow(id, resourceID, uuid.New(), time.Now()))

	active, err := repo.GetActiveByResource(resourceID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, id, active[0].ID)
	assert.True(t, active[0].Status.IsActive())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExpiredPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: db}
	repo := NewReservationRepository(mockDB)

	cutoff := time.Now().Add(-15 * time.Minute)
	id := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM reservations`).
		WithArgs(cutoff, 100).
		WillReturnRows(pendingRow(id, uuid.New(), uuid.New(), time.Now().Add(-20*time.Minute)))

	stale, err := repo.GetExpiredPending(cutoff, 100)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, id, stale[0].ID)
	assert.Equal(t, models.StatusPending, stale[0].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// mockDatabase wraps sqlmock's *sql.DB behind the DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
