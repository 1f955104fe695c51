package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrBookingNotFound = errors.New("booking not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, user_id, service_id, trainer_id, date, start_time, end_time,
	status, participants, special_requests, amount_cents, payment_status, created_at, updated_at`

// slotLockKey derives the advisory-lock key for a (service, date, start)
// slot. Two transactions for the same slot always serialize on it.
func slotLockKey(serviceID int, date time.Time, start TimeOfDay) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s|%s", serviceID, date.Format("2006-01-02"), start)
	return int64(h.Sum64())
}

// lockedCapacityCheck takes the slot's advisory lock and re-reads the
// committed participant total, excluding the booking being rescheduled if
// any. Holding the lock until commit closes the race between concurrent
// requests for the same slot.
func lockedCapacityCheck(ctx context.Context, tx *sqlx.Tx, serviceID int, date time.Time, start TimeOfDay, excludeID *int, requested, max int) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, slotLockKey(serviceID, date, start)); err != nil {
		return err
	}

	query := `
		SELECT COALESCE(SUM(participants), 0)
		FROM bookings
		WHERE service_id = $1 AND date = $2 AND start_time = $3
		  AND status IN ('pending', 'confirmed')
	`
	args := []interface{}{serviceID, date, start}
	if excludeID != nil {
		query += " AND id <> $4"
		args = append(args, *excludeID)
	}

	var booked int
	if err := tx.GetContext(ctx, &booked, query, args...); err != nil {
		return err
	}

	if rejection := capacityRejection(booked, requested, max); rejection != nil {
		return rejection
	}

	return nil
}

// mapUniqueViolation turns the partial unique indexes guarding user and
// trainer double-booking into their rejection reasons.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "uniq_user_active_slot":
			return reject(ReasonUserDoubleBooked, "You already have a booking at this time.")
		case "uniq_trainer_active_slot":
			return reject(ReasonTrainerUnavailable, "This trainer is not available at this time.")
		}
	}
	return err
}

func (r *repository) Create(ctx context.Context, b *Booking, maxParticipants int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := lockedCapacityCheck(ctx, tx, b.ServiceID, b.Date, b.StartTime, nil, b.Participants, maxParticipants); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bookings (user_id, service_id, trainer_id, date, start_time, end_time,
			status, participants, special_requests, amount_cents, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + bookingColumns

	var created Booking
	err = tx.GetContext(ctx, &created, query,
		b.UserID, b.ServiceID, b.TrainerID, b.Date, b.StartTime, b.EndTime,
		b.Status, b.Participants, b.SpecialRequests, b.AmountCents, b.PaymentStatus)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) Reschedule(ctx context.Context, id int, date time.Time, start, end TimeOfDay, trainerID *int, maxParticipants int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current Booking
	err = tx.GetContext(ctx, &current, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	self := id
	if err := lockedCapacityCheck(ctx, tx, current.ServiceID, date, start, &self, current.Participants, maxParticipants); err != nil {
		return nil, err
	}

	query := `
		UPDATE bookings
		SET date = $1, start_time = $2, end_time = $3, trainer_id = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + bookingColumns

	var updated Booking
	err = tx.GetContext(ctx, &updated, query, date, start, end, trainerID, id)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) GetDetailByID(ctx context.Context, id int) (*BookingWithService, error) {
	query := `
		SELECT b.id, b.user_id, b.service_id, b.trainer_id, b.date, b.start_time, b.end_time,
			b.status, b.participants, b.special_requests, b.amount_cents, b.payment_status,
			b.created_at, b.updated_at,
			s.name AS service_name, s.service_type
		FROM bookings b
		JOIN services s ON b.service_id = s.id
		WHERE b.id = $1
	`

	var b BookingWithService
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'confirmed')
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) ListForUser(ctx context.Context, userID int, filter ListFilter) ([]BookingWithService, error) {
	query := `
		SELECT b.id, b.user_id, b.service_id, b.trainer_id, b.date, b.start_time, b.end_time,
			b.status, b.participants, b.special_requests, b.amount_cents, b.payment_status,
			b.created_at, b.updated_at,
			s.name AS service_name, s.service_type
		FROM bookings b
		JOIN services s ON b.service_id = s.id
		WHERE b.user_id = $1
	`
	args := []interface{}{userID}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	if filter.ServiceID != 0 {
		args = append(args, filter.ServiceID)
		query += fmt.Sprintf(" AND b.service_id = $%d", len(args))
	}

	query += " ORDER BY b.date DESC, b.start_time DESC"

	var bookings []BookingWithService
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) StatsForUser(ctx context.Context, userID int, today time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE date >= $2 AND status IN ('pending', 'confirmed')) AS upcoming,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled
		FROM bookings
		WHERE user_id = $1
	`

	var stats Stats
	err := r.db.GetContext(ctx, &stats, query, userID, today)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *repository) ActiveForUserAt(ctx context.Context, userID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	query := `
		SELECT id, participants
		FROM bookings
		WHERE user_id = $1 AND date = $2 AND start_time = $3
		  AND status IN ('pending', 'confirmed')
	`
	return r.selectActive(ctx, query, userID, date, start)
}

func (r *repository) ActiveForSlot(ctx context.Context, serviceID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	query := `
		SELECT id, participants
		FROM bookings
		WHERE service_id = $1 AND date = $2 AND start_time = $3
		  AND status IN ('pending', 'confirmed')
	`
	return r.selectActive(ctx, query, serviceID, date, start)
}

func (r *repository) ActiveForTrainerAt(ctx context.Context, trainerID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	query := `
		SELECT id, participants
		FROM bookings
		WHERE trainer_id = $1 AND date = $2 AND start_time = $3
		  AND status IN ('pending', 'confirmed')
	`
	return r.selectActive(ctx, query, trainerID, date, start)
}

func (r *repository) selectActive(ctx context.Context, query string, args ...interface{}) ([]ActiveBooking, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ActiveBooking
	for rows.Next() {
		var b ActiveBooking
		if err := rows.Scan(&b.ID, &b.Participants); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	return result, rows.Err()
}

func (r *repository) SlotUsage(ctx context.Context, serviceID int, from, to time.Time) ([]SlotUsage, error) {
	query := `
		SELECT date, start_time, SUM(participants) AS participants
		FROM bookings
		WHERE service_id = $1 AND date BETWEEN $2 AND $3
		  AND status IN ('pending', 'confirmed')
		GROUP BY date, start_time
		ORDER BY date, start_time
	`

	var usage []SlotUsage
	err := r.db.SelectContext(ctx, &usage, query, serviceID, from, to)
	if err != nil {
		return nil, err
	}

	return usage, nil
}

func (r *repository) SlotUsageForDate(ctx context.Context, serviceID int, date time.Time) ([]SlotUsage, error) {
	query := `
		SELECT date, start_time, SUM(participants) AS participants
		FROM bookings
		WHERE service_id = $1 AND date = $2
		  AND status IN ('pending', 'confirmed')
		GROUP BY date, start_time
		ORDER BY start_time
	`

	var usage []SlotUsage
	err := r.db.SelectContext(ctx, &usage, query, serviceID, date)
	if err != nil {
		return nil, err
	}

	return usage, nil
}
