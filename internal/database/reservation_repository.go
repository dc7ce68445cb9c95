package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skycharter/booking-backend/internal/models"
)

// ReservationRepository is the durable record of reservations. Every status
// change goes through a compare-and-swap update guarded on the expected
// current status, so concurrent writers for the same reservation get exactly
// one winner.
type ReservationRepository struct {
	db DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, reference, resource_id, requester_id, start_time, end_time,
		seat_code, passenger_count, distance_km, status, quote_amount, quote_currency, quote_expires_at,
		payment_status, payment_ref, paid_at, created_at, updated_at`

func scanReservation(row interface {
	Scan(dest ...interface{}) error
}) (*models.Reservation, error) {
	var res models.Reservation
	var quoteAmount sql.NullFloat64
	var quoteCurrency, paymentStatus, paymentRef sql.NullString
	var quoteExpiresAt, paidAt sql.NullTime

	err := row.Scan(
		&res.ID, &res.Reference, &res.ResourceID, &res.RequesterID, &res.StartTime, &res.EndTime,
		&res.SeatCode, &res.PassengerCount, &res.DistanceKm, &res.Status, &quoteAmount, &quoteCurrency, &quoteExpiresAt,
		&paymentStatus, &paymentRef, &paidAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quoteAmount.Valid {
		res.Quote = &models.Quote{
			Amount:    quoteAmount.Float64,
			Currency:  quoteCurrency.String,
			ExpiresAt: quoteExpiresAt.Time,
		}
	}
	if paymentStatus.Valid {
		res.Payment = &models.Payment{
			Status:      models.PaymentStatus(paymentStatus.String),
			ExternalRef: paymentRef.String,
		}
		if paidAt.Valid {
			t := paidAt.Time
			res.Payment.PaidAt = &t
		}
	}
	return &res, nil
}

// Create inserts a new reservation in pending status. ID and timestamps are
// assigned here; the external reference must already be set by the caller.
func (r *ReservationRepository) Create(res *models.Reservation) error {
	// The lifecycle pre-assigns the ID so the inventory hold can reference it
	// before this row exists
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.Status = models.StatusPending
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt

	query := `
		INSERT INTO reservations (
			id, reference, resource_id, requester_id, start_time, end_time,
			seat_code, passenger_count, distance_km, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(query,
		res.ID, res.Reference, res.ResourceID, res.RequesterID, res.StartTime, res.EndTime,
		res.SeatCode, res.PassengerCount, res.DistanceKm, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation by ID. Returns nil, nil when not found.
func (r *ReservationRepository) GetByID(id uuid.UUID) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// GetByReference retrieves a reservation by its external reference
func (r *ReservationRepository) GetByReference(ref string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE reference = $1`

	res, err := scanReservation(r.db.QueryRow(query, ref))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation by reference: %w", err)
	}
	return res, nil
}

// GetByRequester retrieves a requester's reservations, newest first
func (r *ReservationRepository) GetByRequester(requesterID uuid.UUID, limit, offset int) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE requester_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.queryReservations(query, requesterID, limit, offset)
}

// GetActiveByResource retrieves all reservations still holding inventory on a resource
func (r *ReservationRepository) GetActiveByResource(resourceID uuid.UUID) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE resource_id = $1
		  AND status IN ('pending', 'quoted', 'confirmed', 'paid')
		ORDER BY start_time`

	return r.queryReservations(query, resourceID)
}

// GetExpiredPending retrieves pending reservations created before the cutoff.
// Feed for the hold expiry sweep.
func (r *ReservationRepository) GetExpiredPending(cutoff time.Time, limit int) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	return r.queryReservations(query, cutoff, limit)
}

func (r *ReservationRepository) queryReservations(query string, args ...interface{}) ([]*models.Reservation, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// TransitionStatus moves a reservation from an expected status to a new one.
// The guard is part of the update statement: zero rows affected means the
// reservation was not in the expected status (ErrInvalidTransition) or does
// not exist (ErrNotFound).
func (r *ReservationRepository) TransitionStatus(id uuid.UUID, from, to models.ReservationStatus) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(query, id, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to transition reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, r.transitionFailure(id)
	}
	return r.GetByID(id)
}

// AttachQuote transitions pending -> quoted and stores the quote in the same
// guarded statement
func (r *ReservationRepository) AttachQuote(id uuid.UUID, quote models.Quote) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'quoted', quote_amount = $2, quote_currency = $3, quote_expires_at = $4,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.Exec(query, id, quote.Amount, quote.Currency, quote.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to attach quote: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, r.transitionFailure(id)
	}
	return r.GetByID(id)
}

// MarkPaid transitions quoted/confirmed -> paid and records the external
// payment exactly once. paid_at is only ever written by this statement.
func (r *ReservationRepository) MarkPaid(id uuid.UUID, externalRef string, paidAt time.Time) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'paid', payment_status = 'paid', payment_ref = $2, paid_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('quoted', 'confirmed')`

	result, err := r.db.Exec(query, id, externalRef, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark reservation paid: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, r.transitionFailure(id)
	}
	return r.GetByID(id)
}

// Cancel transitions pending/quoted/confirmed -> cancelled in one guarded
// statement. Of two concurrent cancels, exactly one sees the affected row;
// the other gets ErrInvalidTransition and must not release inventory.
func (r *ReservationRepository) Cancel(id uuid.UUID) (*models.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'quoted', 'confirmed')`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, r.transitionFailure(id)
	}
	return r.GetByID(id)
}

// transitionFailure distinguishes a missing reservation from a status guard
// violation after a zero-row CAS update
func (r *ReservationRepository) transitionFailure(id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check reservation existence: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}
