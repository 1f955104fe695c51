package booking

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts the booking inside a transaction that holds the slot
	// lock and re-checks capacity against committed state. A capacity or
	// uniqueness conflict comes back as a *Rejection.
	Create(ctx context.Context, b *Booking, maxParticipants int) (*Booking, error)

	// Reschedule moves an existing booking to a new slot under the same
	// locked capacity re-check, excluding the booking itself.
	Reschedule(ctx context.Context, id int, date time.Time, start, end TimeOfDay, trainerID *int, maxParticipants int) (*Booking, error)

	GetByID(ctx context.Context, id int) (*Booking, error)
	GetDetailByID(ctx context.Context, id int) (*BookingWithService, error)
	Cancel(ctx context.Context, id int) error
	ListForUser(ctx context.Context, userID int, filter ListFilter) ([]BookingWithService, error)
	StatsForUser(ctx context.Context, userID int, today time.Time) (*Stats, error)

	// Snapshot queries. They return all active rows; excluding the
	// candidate's own booking on reschedule is the validator's job.
	ActiveForUserAt(ctx context.Context, userID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error)
	ActiveForSlot(ctx context.Context, serviceID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error)
	ActiveForTrainerAt(ctx context.Context, trainerID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error)

	// Aggregated participant totals for availability views.
	SlotUsage(ctx context.Context, serviceID int, from, to time.Time) ([]SlotUsage, error)
	SlotUsageForDate(ctx context.Context, serviceID int, date time.Time) ([]SlotUsage, error)
}
