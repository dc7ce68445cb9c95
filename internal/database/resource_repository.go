package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skycharter/booking-backend/internal/models"
)

// ResourceRepository is the single source of truth for resource availability.
// Window-scheduled resources are guarded by conditional inserts into
// resource_holds; seat-mapped resources by conditional updates on
// flight_seats. Both re-check availability inside the statement itself, so a
// prior read is never trusted.
type ResourceRepository struct {
	db DB
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, type, model, flight_number, name, passenger_capacity, baggage_kg,
		base_rate, minimum_hours, currency, status, created_at, updated_at`

func scanResource(row interface {
	Scan(dest ...interface{}) error
}) (*models.Resource, error) {
	var r models.Resource
	err := row.Scan(
		&r.ID, &r.Type, &r.Model, &r.FlightNumber, &r.Name, &r.PassengerCapacity, &r.BaggageKg,
		&r.BaseRate, &r.MinimumHours, &r.Currency, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetByID retrieves a resource by ID. Returns nil, nil when not found.
func (r *ResourceRepository) GetByID(id uuid.UUID) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	resource, err := scanResource(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return resource, nil
}

// List retrieves resources, optionally filtered by type
func (r *ResourceRepository) List(resourceType string) ([]*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	args := []interface{}{}
	if resourceType != "" {
		query += ` WHERE type = $1`
		args = append(args, resourceType)
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

// CheckWindowAvailable reports whether a window-scheduled resource has no
// active hold overlapping [start, end]. Advisory only: HoldWindow re-checks
// atomically before committing.
func (r *ResourceRepository) CheckWindowAvailable(resourceID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM resource_holds
		WHERE resource_id = $1
		  AND NOT released
		  AND start_time <= $3 AND $2 <= end_time`

	var overlapping int
	if err := r.db.QueryRow(query, resourceID, start, end).Scan(&overlapping); err != nil {
		return false, fmt.Errorf("failed to check window availability: %w", err)
	}
	return overlapping == 0, nil
}

// CheckSeatAvailable reports whether a seat exists and is currently free
func (r *ResourceRepository) CheckSeatAvailable(resourceID uuid.UUID, seatCode string) (bool, error) {
	query := `SELECT occupied FROM flight_seats WHERE resource_id = $1 AND seat_code = $2`

	var occupied bool
	err := r.db.QueryRow(query, resourceID, seatCode).Scan(&occupied)
	if err == sql.ErrNoRows {
		return false, models.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seat availability: %w", err)
	}
	return !occupied, nil
}

// HoldWindow atomically commits a time-window hold for a reservation. The
// overlap check runs inside the insert statement, so two concurrent holds for
// overlapping windows can never both succeed. Returns ErrConflict when the
// window was taken.
func (r *ResourceRepository) HoldWindow(resourceID, reservationID uuid.UUID, start, end time.Time) error {
	query := `
		INSERT INTO resource_holds (id, resource_id, reservation_id, start_time, end_time)
		SELECT $1, $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM resource_holds
			WHERE resource_id = $2
			  AND NOT released
			  AND start_time <= $5 AND $4 <= end_time
		)`

	result, err := r.db.Exec(query, uuid.New(), resourceID, reservationID, start, end)
	if err != nil {
		return fmt.Errorf("failed to hold window: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return models.ErrConflict
	}
	return nil
}

// HoldSeat atomically marks a seat occupied for a reservation. The occupancy
// check and the write are a single statement. Returns a SeatUnavailableError
// when the seat is taken and ErrNotFound when the seat does not exist.
func (r *ResourceRepository) HoldSeat(resourceID uuid.UUID, seatCode string, reservationID uuid.UUID) error {
	query := `
		UPDATE flight_seats
		SET occupied = TRUE, reservation_id = $3, updated_at = NOW()
		WHERE resource_id = $1 AND seat_code = $2 AND NOT occupied`

	result, err := r.db.Exec(query, resourceID, seatCode, reservationID)
	if err != nil {
		return fmt.Errorf("failed to hold seat: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 1 {
		return nil
	}

	// Zero rows: either the seat is occupied or it does not exist
	var exists bool
	err = r.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM flight_seats WHERE resource_id = $1 AND seat_code = $2)`,
		resourceID, seatCode,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check seat existence: %w", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return &models.SeatUnavailableError{ResourceID: resourceID.String(), SeatCode: seatCode}
}

// ReleaseHold releases whatever the reservation holds: its window hold, its
// seat, or nothing. Releasing an already-released hold is a no-op, which makes
// retry-after-timeout paths safe. Returns the number of rows released.
func (r *ResourceRepository) ReleaseHold(reservationID uuid.UUID) (int, error) {
	released := 0

	result, err := r.db.Exec(`
		UPDATE resource_holds
		SET released = TRUE, released_at = NOW()
		WHERE reservation_id = $1 AND NOT released`, reservationID)
	if err != nil {
		return 0, fmt.Errorf("failed to release window hold: %w", err)
	}
	rows, _ := result.RowsAffected()
	released += int(rows)

	result, err = r.db.Exec(`
		UPDATE flight_seats
		SET occupied = FALSE, reservation_id = NULL, updated_at = NOW()
		WHERE reservation_id = $1`, reservationID)
	if err != nil {
		return released, fmt.Errorf("failed to release seat: %w", err)
	}
	rows, _ = result.RowsAffected()
	released += int(rows)

	return released, nil
}

// ReleaseOrphanedHolds releases holds whose reservation has already reached a
// terminal status. Heals the rare case where a cancel committed but the
// release call afterwards failed. Returns the number of rows released.
func (r *ResourceRepository) ReleaseOrphanedHolds() (int, error) {
	released := 0

	result, err := r.db.Exec(`
		UPDATE resource_holds
		SET released = TRUE, released_at = NOW()
		WHERE NOT released
		  AND reservation_id IN (SELECT id FROM reservations WHERE status IN ('cancelled', 'completed'))`)
	if err != nil {
		return 0, fmt.Errorf("failed to release orphaned window holds: %w", err)
	}
	rows, _ := result.RowsAffected()
	released += int(rows)

	result, err = r.db.Exec(`
		UPDATE flight_seats
		SET occupied = FALSE, reservation_id = NULL, updated_at = NOW()
		WHERE occupied
		  AND reservation_id IN (SELECT id FROM reservations WHERE status IN ('cancelled', 'completed'))`)
	if err != nil {
		return released, fmt.Errorf("failed to release orphaned seats: %w", err)
	}
	rows, _ = result.RowsAffected()
	released += int(rows)

	return released, nil
}

// SeatMap returns the full seat map of a seat-mapped resource
func (r *ResourceRepository) SeatMap(resourceID uuid.UUID) ([]models.Seat, error) {
	query := `
		SELECT id, resource_id, seat_code, occupied, reservation_id, updated_at
		FROM flight_seats
		WHERE resource_id = $1
		ORDER BY seat_code`

	rows, err := r.db.Query(query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat map: %w", err)
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.ResourceID, &s.SeatCode, &s.Occupied, &s.ReservationID, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// CountActiveHolds returns the number of unreleased window holds plus occupied
// seats for a resource
func (r *ResourceRepository) CountActiveHolds(resourceID uuid.UUID) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM resource_holds WHERE resource_id = $1 AND NOT released)
			+ (SELECT COUNT(*) FROM flight_seats WHERE resource_id = $1 AND occupied)`

	var count int
	if err := r.db.QueryRow(query, resourceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active holds: %w", err)
	}
	return count, nil
}
