package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/workplace-booking/internal/persistence"
)

// BookingRepository implements persistence.BookingRepository on SQLite.
type BookingRepository struct {
	pool *ConnectionPool
}

// NewBookingRepository creates a SQLite backed booking repository.
func NewBookingRepository(pool *ConnectionPool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// CreateBooking inserts a new booking.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	var slotStart, slotEnd any
	if booking.Slot != nil {
		slotStart = booking.Slot.Start
		slotEnd = booking.Slot.End
	}

	query := `
		INSERT INTO bookings (id, resource_id, user_id, date, recurring, recurring_days, slot_start, slot_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		booking.ID,
		booking.ResourceID,
		booking.UserID,
		booking.Date,
		booking.Recurring,
		strings.Join(booking.RecurringDays, ","),
		slotStart,
		slotEnd,
		booking.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetBooking retrieves a booking by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (persistence.Booking, error) {
	query := `
		SELECT id, resource_id, user_id, date, recurring, recurring_days, slot_start, slot_end, created_at
		FROM bookings
		WHERE id = ?
	`
	return r.scanBooking(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListBookings returns bookings matching the filter, ordered by date then id.
func (r *BookingRepository) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `
		SELECT id, resource_id, user_id, date, recurring, recurring_days, slot_start, slot_end, created_at
		FROM bookings
	`
	conditions := []string{}
	args := []any{}
	if filter.ResourceID != "" {
		conditions = append(conditions, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bookings, nil
}

// DeleteBooking removes a booking by id.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteBookingsBefore removes one-off bookings dated strictly before the
// cutoff. Recurring bookings carry no end date and are kept.
func (r *BookingRepository) DeleteBookingsBefore(ctx context.Context, dateKey string) (int, error) {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM bookings WHERE date < ? AND recurring = 0", dateKey)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *BookingRepository) scanBooking(row rowScanner) (persistence.Booking, error) {
	var booking persistence.Booking
	var recurringDays, createdAt string
	var slotStart, slotEnd sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.ResourceID,
		&booking.UserID,
		&booking.Date,
		&booking.Recurring,
		&recurringDays,
		&slotStart,
		&slotEnd,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, mapError(err)
	}

	if recurringDays != "" {
		booking.RecurringDays = strings.Split(recurringDays, ",")
	}
	if slotStart.Valid && slotEnd.Valid {
		booking.Slot = &persistence.TimeSlot{Start: slotStart.String, End: slotEnd.String}
	}
	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("parse created_at: %w", err)
	}
	return booking, nil
}
