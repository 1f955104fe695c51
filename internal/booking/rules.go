package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/catalog"
)

// Reason is the closed set of grounds on which a booking request can be
// turned down. Every rejection is user-correctable; none is fatal.
type Reason string

const (
	ReasonPastDate                Reason = "past_date"
	ReasonTooFarInAdvance         Reason = "too_far_in_advance"
	ReasonOutsideBusinessHours    Reason = "outside_business_hours"
	ReasonInvalidParticipantCount Reason = "invalid_participant_count"
	ReasonMembershipRequired      Reason = "membership_required"
	ReasonUserDoubleBooked        Reason = "user_double_booked"
	ReasonSlotFull                Reason = "slot_full"
	ReasonSlotPartiallyFull       Reason = "slot_partially_full"
	ReasonTrainerUnavailable      Reason = "trainer_unavailable"
)

// Rejection is returned when a candidate fails validation. SpotsLeft is
// only meaningful for ReasonSlotPartiallyFull.
type Rejection struct {
	Reason    Reason
	SpotsLeft int
	Message   string
}

func (r *Rejection) Error() string {
	return r.Message
}

func reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

// ErrInvalidInput marks malformed requests: unparseable dates or times,
// unknown services. It is surfaced before any rule runs and is distinct
// from every Rejection.
var ErrInvalidInput = errors.New("invalid input")

// ActiveBooking is the slice of an existing reservation the validator
// needs: its identity (to exclude the candidate itself on reschedule) and
// its participant count.
type ActiveBooking struct {
	ID           int
	Participants int
}

// Candidate is a proposed booking, parsed and resolved, awaiting a verdict.
type Candidate struct {
	// SelfID is set when the candidate reschedules an existing booking;
	// that booking is ignored in every conflict scan.
	SelfID *int

	UserID       int
	Service      catalog.Service
	TrainerID    *int
	Date         time.Time
	StartTime    TimeOfDay
	Participants int
}

// Snapshot is the already-fetched state the rules run against. Building it
// is the caller's job; the validator itself never touches storage.
type Snapshot struct {
	// MemberActive reports whether the user holds an active membership.
	MemberActive bool

	// UserBookings are the user's active bookings at the candidate's
	// exact date and start time, across all services.
	UserBookings []ActiveBooking

	// SlotBookings are the active bookings for the candidate's
	// (service, date, start time) slot.
	SlotBookings []ActiveBooking

	// TrainerBookings are the requested trainer's active bookings at the
	// candidate's date and start time. Empty when no trainer was asked for.
	TrainerBookings []ActiveBooking
}

// Decision carries the derived fields of an accepted booking.
type Decision struct {
	EndTime     TimeOfDay
	AmountCents int64
}

// Validate decides whether the candidate may take its slot. Checks run in a
// fixed order and the first failure wins. The returned error is always a
// *Rejection when non-nil.
func Validate(c Candidate, snap Snapshot, now time.Time) (*Decision, error) {
	today := DateOf(now)
	date := DateOf(c.Date)

	if date.Before(today) {
		return nil, reject(ReasonPastDate, "Cannot book sessions in the past.")
	}
	if date.After(today.AddDate(0, 0, MaxAdvanceDays)) {
		return nil, reject(ReasonTooFarInAdvance,
			fmt.Sprintf("Cannot book more than %d days in advance.", MaxAdvanceDays))
	}

	if c.StartTime.Minute != 0 || c.StartTime.Hour < OpeningHour || c.StartTime.Hour >= ClosingHour {
		return nil, reject(ReasonOutsideBusinessHours,
			"Sessions are only available on the hour between 9:00 AM and 8:00 PM.")
	}

	if c.Participants < 1 || c.Participants > c.Service.MaxParticipants {
		return nil, reject(ReasonInvalidParticipantCount,
			fmt.Sprintf("This service allows between 1 and %d participants.", c.Service.MaxParticipants))
	}

	if c.Service.RequiresMembership && !snap.MemberActive {
		return nil, reject(ReasonMembershipRequired,
			fmt.Sprintf("%s requires an active membership.", c.Service.Name))
	}

	if hasOther(snap.UserBookings, c.SelfID) {
		return nil, reject(ReasonUserDoubleBooked, "You already have a booking at this time.")
	}

	if rejection := checkCapacity(snap.SlotBookings, c.SelfID, c.Participants, c.Service.MaxParticipants); rejection != nil {
		return nil, rejection
	}

	if c.TrainerID != nil && hasOther(snap.TrainerBookings, c.SelfID) {
		return nil, reject(ReasonTrainerUnavailable, "This trainer is not available at this time.")
	}

	duration := time.Duration(c.Service.DurationMinutes) * time.Minute
	return &Decision{
		EndTime:     c.StartTime.Add(duration),
		AmountCents: c.Service.PriceCents,
	}, nil
}

// checkCapacity compares booked participants against the service cap,
// distinguishing a fully booked slot from one with too few spots left.
func checkCapacity(slot []ActiveBooking, selfID *int, requested, max int) *Rejection {
	return capacityRejection(countParticipants(slot, selfID), requested, max)
}

// capacityRejection is the capacity rule over an already-summed count. The
// repository re-runs it inside the create transaction, under the slot
// lock, against freshly committed state.
func capacityRejection(booked, requested, max int) *Rejection {
	if booked+requested <= max {
		return nil
	}

	spotsLeft := max - booked
	if spotsLeft <= 0 {
		return reject(ReasonSlotFull, "This time slot is fully booked.")
	}

	r := reject(ReasonSlotPartiallyFull,
		fmt.Sprintf("Only %d spots available at this time.", spotsLeft))
	r.SpotsLeft = spotsLeft
	return r
}

func countParticipants(bookings []ActiveBooking, selfID *int) int {
	total := 0
	for _, b := range bookings {
		if selfID != nil && b.ID == *selfID {
			continue
		}
		total += b.Participants
	}
	return total
}

func hasOther(bookings []ActiveBooking, selfID *int) bool {
	for _, b := range bookings {
		if selfID != nil && b.ID == *selfID {
			continue
		}
		return true
	}
	return false
}

// CanModify reports whether a booking may still be cancelled or
// rescheduled: more than 24 hours before its start, and not yet in a
// terminal state. The same guard applies to both operations.
func CanModify(date time.Time, start TimeOfDay, status string, now time.Time) bool {
	if status != StatusPending && status != StatusConfirmed {
		return false
	}
	return now.Add(ModifyNotice).Before(Combine(date, start))
}
