package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, date, time, weekday, category, person_id, status, cancelled_by, created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(db base.DBTX) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(db)}
}

// Create inserts a booking and fills its id and timestamps.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (date, time, weekday, category, person_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		model.DateOf(booking.Date),
		booking.Time,
		booking.Weekday,
		booking.Category,
		booking.PersonID,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns nil when the booking does not exist.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

func (r *BookingRepository) ListByPerson(ctx context.Context, personID int64) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE person_id = $1 ORDER BY date DESC, time DESC`

	bookings, err := r.list(ctx, query, personID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by person: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) FindActive(ctx context.Context, key model.BookingKey, excludeID int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE date = $1 AND time = $2 AND weekday = $3 AND category = $4
		  AND status <> 'CANCELLED' AND id <> $5
		LIMIT 1
	`

	booking, err := scanBooking(r.QueryRow(ctx, query, model.DateOf(key.Date), key.Time, key.Weekday, key.Category, excludeID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active booking: %w", err)
	}

	return booking, nil
}

func (r *BookingRepository) HasScheduled(ctx context.Context, key model.SlotKey, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE weekday = $1 AND time = $2 AND category = $3
			  AND status = 'SCHEDULED' AND id <> $4
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, key.Weekday, key.Time, key.Category, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check scheduled booking: %w", err)
	}

	return exists, nil
}

func (r *BookingRepository) ScheduledSlotKeys(ctx context.Context) ([]model.SlotKey, error) {
	rows, err := r.Query(ctx, `
		SELECT DISTINCT weekday, time, category
		FROM bookings
		WHERE status = 'SCHEDULED'
	`)
	if err != nil {
		return nil, fmt.Errorf("list scheduled slot keys: %w", err)
	}
	defer rows.Close()

	var keys []model.SlotKey
	for rows.Next() {
		var key model.SlotKey
		if err := rows.Scan(&key.Weekday, &key.Time, &key.Category); err != nil {
			return nil, fmt.Errorf("scan slot key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// LatestActiveDate returns the most recent non-cancelled booking date, or nil.
func (r *BookingRepository) LatestActiveDate(ctx context.Context, personID int64) (*time.Time, error) {
	var latest *time.Time
	err := r.QueryRow(ctx, `
		SELECT MAX(date) FROM bookings
		WHERE person_id = $1 AND status <> 'CANCELLED'
	`, personID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("latest booking date: %w", err)
	}

	return latest, nil
}

func (r *BookingRepository) ListActiveInRange(ctx context.Context, category model.Category, from, to time.Time) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE category = $1 AND date >= $2 AND date <= $3 AND status <> 'CANCELLED'
		ORDER BY date, time
	`

	bookings, err := r.list(ctx, query, category, model.DateOf(from), model.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("list bookings in range: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) ListScheduledUntil(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'SCHEDULED' AND date <= $1
		ORDER BY date, time
	`

	bookings, err := r.list(ctx, query, model.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("list scheduled bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateSchedule(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET date = $1, time = $2, weekday = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, model.DateOf(booking.Date), booking.Time, booking.Weekday, booking.ID).
		Scan(&booking.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrUniqueViolation
		}
		if base.IsNotFound(err) {
			return fmt.Errorf("booking %d not found", booking.ID)
		}
		return fmt.Errorf("update booking schedule: %w", err)
	}

	return nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, cancelledBy *model.CancelledBy) error {
	var by *string
	if cancelledBy != nil {
		s := string(*cancelledBy)
		by = &s
	}

	affected, err := r.ExecAffected(ctx, `
		UPDATE bookings
		SET status = $1, cancelled_by = $2, updated_at = NOW()
		WHERE id = $3
	`, status, by, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return fmt.Errorf("update booking status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("booking %d not found", id)
	}

	return nil
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking     model.Booking
		cancelledBy *string
	)
	err := row.Scan(
		&booking.ID,
		&booking.Date,
		&booking.Time,
		&booking.Weekday,
		&booking.Category,
		&booking.PersonID,
		&booking.Status,
		&cancelledBy,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cancelledBy != nil {
		by := model.CancelledBy(*cancelledBy)
		booking.CancelledBy = &by
	}

	return &booking, nil
}
