package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"renthub/internal/domain"
	"renthub/internal/models"
)

const bookingColumns = `b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	var b models.Booking
	var startStr, endStr string
	err := row.Scan(&b.ID, &b.ItemID, &b.BookerID, &startStr, &endStr, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if b.StartDate, err = parseTime(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking start %s: %w", startStr, err)
	}
	if b.EndDate, err = parseTime(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse booking end %s: %w", endStr, err)
	}
	return &b, nil
}

// SaveBooking inserts the booking when it has no id yet, otherwise updates
// its status. Item, booker and interval are immutable after creation.
func (db *DB) SaveBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	now := time.Now()

	if booking.ID == 0 {
		query := `INSERT INTO bookings (item_id, booker_id, start_date, end_date, status, created_at, updated_at)
                  VALUES (?, ?, ?, ?, ?, ?, ?)`
		result, err := db.ExecContext(ctx, query,
			booking.ItemID,
			booking.BookerID,
			formatTime(booking.StartDate),
			formatTime(booking.EndDate),
			booking.Status,
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}

		saved := *booking
		saved.ID = id
		saved.CreatedAt = now
		saved.UpdatedAt = now
		return &saved, nil
	}

	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, booking.Status, now, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrBookingNotFound
	}

	saved := *booking
	saved.UpdatedAt = now
	return &saved, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// statePredicate compiles a temporal class into a WHERE fragment against
// the caller-supplied moment.
func statePredicate(state models.State, now time.Time) (string, []interface{}, error) {
	nowStr := formatTime(now)
	switch state {
	case models.StateAll:
		return "", nil, nil
	case models.StateCurrent:
		return "AND b.start_date < ? AND b.end_date > ?", []interface{}{nowStr, nowStr}, nil
	case models.StatePast:
		return "AND b.end_date < ?", []interface{}{nowStr}, nil
	case models.StateFuture:
		return "AND b.start_date > ?", []interface{}{nowStr}, nil
	case models.StateWaiting:
		return "AND b.status = ?", []interface{}{models.StatusWaiting}, nil
	case models.StateRejected:
		return "AND b.status = ?", []interface{}{models.StatusRejected}, nil
	default:
		return "", nil, fmt.Errorf("unsupported state: %s", state)
	}
}

func orderClause(order domain.Order) string {
	if order == domain.OrderStartAsc {
		return "ORDER BY b.start_date ASC, b.id ASC"
	}
	return "ORDER BY b.start_date DESC, b.id DESC"
}

func (db *DB) queryBookings(ctx context.Context, base string, baseArgs []interface{}, state models.State, now time.Time, opts domain.QueryOptions) ([]*models.Booking, error) {
	predicate, predicateArgs, err := statePredicate(state, now)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM bookings b %s %s %s LIMIT ? OFFSET ?`,
		bookingColumns, base, predicate, orderClause(opts.Order))

	args := append(append(baseArgs, predicateArgs...), opts.Limit, opts.Offset)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) QueryByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, opts domain.QueryOptions) ([]*models.Booking, error) {
	return db.queryBookings(ctx, "WHERE b.booker_id = ?", []interface{}{bookerID}, state, now, opts)
}

func (db *DB) QueryByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, opts domain.QueryOptions) ([]*models.Booking, error) {
	base := "JOIN items i ON i.id = b.item_id WHERE i.owner_id = ?"
	return db.queryBookings(ctx, base, []interface{}{ownerID}, state, now, opts)
}

// LastApprovedBefore returns the approved booking of the item with the
// greatest start before the given moment, or nil when there is none.
func (db *DB) LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = ? AND b.start_date < ?
              ORDER BY b.start_date DESC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, formatTime(now)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last approved booking: %w", err)
	}
	return booking, nil
}

// NextApprovedAfter returns the approved booking of the item with the
// least start after the given moment, or nil when there is none.
func (db *DB) NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = ? AND b.start_date > ?
              ORDER BY b.start_date ASC LIMIT 1`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, models.StatusApproved, formatTime(now)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next approved booking: %w", err)
	}
	return booking, nil
}

// HasFinishedApprovedBooking reports whether the user completed an
// approved rental of the item before the given moment.
func (db *DB) HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS (
                  SELECT 1 FROM bookings b
                  WHERE b.item_id = ? AND b.booker_id = ? AND b.status = ? AND b.end_date < ?
              )`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, models.StatusApproved, formatTime(now)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return exists, nil
}
