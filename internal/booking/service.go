package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/catalog"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/logger"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/membership"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/metrics"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/trainer"
)

var (
	ErrNotOwner        = errors.New("booking belongs to another user")
	ErrTooLateToModify = errors.New("bookings can only be changed more than 24 hours in advance")
)

// Notifier queues member-facing messages about booking lifecycle events.
type Notifier interface {
	BookingConfirmed(ctx context.Context, userID int, serviceName string, startsAt time.Time)
	BookingCancelled(ctx context.Context, userID int, serviceName string, startsAt time.Time)
}

type Service interface {
	Create(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error)
	ListMine(ctx context.Context, userID int, filter ListFilter) ([]BookingWithService, *Stats, error)
	GetDetail(ctx context.Context, userID, bookingID int) (*BookingDetailResponse, error)
	Cancel(ctx context.Context, userID, bookingID int) error
	Reschedule(ctx context.Context, userID, bookingID int, req RescheduleRequest) (*Booking, error)
	AvailableTimes(ctx context.Context, serviceID int, date string) ([]Slot, error)
	Calendar(ctx context.Context, serviceID int) ([]Slot, error)
}

type service struct {
	repo           Repository
	catalogRepo    catalog.Repository
	membershipRepo membership.Repository
	trainerRepo    trainer.Repository
	notifier       Notifier
	now            func() time.Time
}

func NewService(
	repo Repository,
	catalogRepo catalog.Repository,
	membershipRepo membership.Repository,
	trainerRepo trainer.Repository,
	notifier Notifier,
) Service {
	return &service{
		repo:           repo,
		catalogRepo:    catalogRepo,
		membershipRepo: membershipRepo,
		trainerRepo:    trainerRepo,
		notifier:       notifier,
		now:            time.Now,
	}
}

// resolveCandidate parses the wire request and resolves its references.
// Anything malformed or unknown surfaces as ErrInvalidInput before the
// rules run.
func (s *service) resolveCandidate(ctx context.Context, userID int, serviceID int, trainerID *int, dateStr, startStr string, participants int, selfID *int) (*Candidate, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, dateStr)
	}

	start, err := ParseTimeOfDay(startStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time %q", ErrInvalidInput, startStr)
	}

	svc, err := s.catalogRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: unknown service %d", ErrInvalidInput, serviceID)
		}
		return nil, err
	}
	if !svc.IsActive {
		return nil, fmt.Errorf("%w: service %d is not bookable", ErrInvalidInput, serviceID)
	}

	if trainerID != nil {
		if _, err := s.trainerRepo.GetByID(ctx, *trainerID); err != nil {
			if errors.Is(err, trainer.ErrTrainerNotFound) {
				return nil, fmt.Errorf("%w: unknown trainer %d", ErrInvalidInput, *trainerID)
			}
			return nil, err
		}
	}

	return &Candidate{
		SelfID:       selfID,
		UserID:       userID,
		Service:      *svc,
		TrainerID:    trainerID,
		Date:         date,
		StartTime:    start,
		Participants: participants,
	}, nil
}

// buildSnapshot fetches the state the validator runs against.
func (s *service) buildSnapshot(ctx context.Context, c *Candidate, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{}

	if c.Service.RequiresMembership {
		active, err := s.membershipRepo.IsActive(ctx, c.UserID, now)
		if err != nil {
			return nil, err
		}
		snap.MemberActive = active
	}

	var err error
	snap.UserBookings, err = s.repo.ActiveForUserAt(ctx, c.UserID, c.Date, c.StartTime)
	if err != nil {
		return nil, err
	}

	snap.SlotBookings, err = s.repo.ActiveForSlot(ctx, c.Service.ID, c.Date, c.StartTime)
	if err != nil {
		return nil, err
	}

	if c.TrainerID != nil {
		snap.TrainerBookings, err = s.repo.ActiveForTrainerAt(ctx, *c.TrainerID, c.Date, c.StartTime)
		if err != nil {
			return nil, err
		}
	}

	return snap, nil
}

func (s *service) Create(ctx context.Context, userID int, req CreateBookingRequest) (*Booking, error) {
	now := s.now()

	candidate, err := s.resolveCandidate(ctx, userID, req.ServiceID, req.TrainerID, req.Date, req.StartTime, req.Participants, nil)
	if err != nil {
		return nil, err
	}

	snap, err := s.buildSnapshot(ctx, candidate, now)
	if err != nil {
		return nil, err
	}

	decision, err := Validate(*candidate, *snap, now)
	if err != nil {
		return nil, s.recordRejection(err)
	}

	b := &Booking{
		UserID:          userID,
		ServiceID:       candidate.Service.ID,
		TrainerID:       req.TrainerID,
		Date:            DateOf(candidate.Date),
		StartTime:       candidate.StartTime,
		EndTime:         decision.EndTime,
		Status:          StatusPending,
		Participants:    req.Participants,
		SpecialRequests: req.SpecialRequests,
		AmountCents:     decision.AmountCents,
		PaymentStatus:   PaymentPending,
	}

	created, err := s.repo.Create(ctx, b, candidate.Service.MaxParticipants)
	if err != nil {
		return nil, s.recordRejection(err)
	}

	logger.Info("booking created",
		"booking_id", created.ID,
		"user_id", userID,
		"service_id", created.ServiceID,
		"date", created.Date.Format("2006-01-02"),
		"start_time", created.StartTime.String(),
	)
	metrics.RecordBookingAccepted(candidate.Service.ServiceType)

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, userID, candidate.Service.Name, Combine(created.Date, created.StartTime))
	}

	return created, nil
}

func (s *service) ListMine(ctx context.Context, userID int, filter ListFilter) ([]BookingWithService, *Stats, error) {
	bookings, err := s.repo.ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.repo.StatsForUser(ctx, userID, DateOf(s.now()))
	if err != nil {
		return nil, nil, err
	}

	return bookings, stats, nil
}

func (s *service) GetDetail(ctx context.Context, userID, bookingID int) (*BookingDetailResponse, error) {
	b, err := s.repo.GetDetailByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, ErrNotOwner
	}

	canModify := CanModify(b.Date, b.StartTime, b.Status, s.now())
	return &BookingDetailResponse{
		Booking:       b,
		CanCancel:     canModify,
		CanReschedule: canModify,
	}, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID int) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if b.UserID != userID {
		return ErrNotOwner
	}

	if !CanModify(b.Date, b.StartTime, b.Status, s.now()) {
		return ErrTooLateToModify
	}

	if err := s.repo.Cancel(ctx, bookingID); err != nil {
		return err
	}

	logger.Info("booking cancelled", "booking_id", bookingID, "user_id", userID)
	metrics.RecordCancellation()

	if s.notifier != nil {
		svc, err := s.catalogRepo.GetByID(ctx, b.ServiceID)
		serviceName := "your session"
		if err == nil {
			serviceName = svc.Name
		}
		s.notifier.BookingCancelled(ctx, userID, serviceName, Combine(b.Date, b.StartTime))
	}

	return nil
}

func (s *service) Reschedule(ctx context.Context, userID, bookingID int, req RescheduleRequest) (*Booking, error) {
	now := s.now()

	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, ErrNotOwner
	}

	if !CanModify(b.Date, b.StartTime, b.Status, now) {
		return nil, ErrTooLateToModify
	}

	trainerID := req.TrainerID
	if trainerID == nil {
		trainerID = b.TrainerID
	}

	self := bookingID
	candidate, err := s.resolveCandidate(ctx, userID, b.ServiceID, trainerID, req.Date, req.StartTime, b.Participants, &self)
	if err != nil {
		return nil, err
	}

	snap, err := s.buildSnapshot(ctx, candidate, now)
	if err != nil {
		return nil, err
	}

	decision, err := Validate(*candidate, *snap, now)
	if err != nil {
		return nil, s.recordRejection(err)
	}

	updated, err := s.repo.Reschedule(ctx, bookingID, DateOf(candidate.Date), candidate.StartTime, decision.EndTime, trainerID, candidate.Service.MaxParticipants)
	if err != nil {
		return nil, s.recordRejection(err)
	}

	logger.Info("booking rescheduled",
		"booking_id", bookingID,
		"user_id", userID,
		"date", updated.Date.Format("2006-01-02"),
		"start_time", updated.StartTime.String(),
	)
	metrics.RecordReschedule()

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, userID, candidate.Service.Name, Combine(updated.Date, updated.StartTime))
	}

	return updated, nil
}

func (s *service) AvailableTimes(ctx context.Context, serviceID int, date string) ([]Slot, error) {
	svc, err := s.catalogRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: unknown service %d", ErrInvalidInput, serviceID)
		}
		return nil, err
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, date)
	}

	usage, err := s.repo.SlotUsageForDate(ctx, serviceID, DateOf(day))
	if err != nil {
		return nil, err
	}

	return AvailableTimesForDate(*svc, usage, day, s.now()), nil
}

func (s *service) Calendar(ctx context.Context, serviceID int) ([]Slot, error) {
	svc, err := s.catalogRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: unknown service %d", ErrInvalidInput, serviceID)
		}
		return nil, err
	}

	now := s.now()
	today := DateOf(now)
	usage, err := s.repo.SlotUsage(ctx, serviceID, today, today.AddDate(0, 0, LookaheadDays-1))
	if err != nil {
		return nil, err
	}

	return EnumerateSlots(*svc, usage, now, LookaheadDays), nil
}

// recordRejection counts rejections without altering the error.
func (s *service) recordRejection(err error) error {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		metrics.RecordBookingRejected(string(rejection.Reason))
	}
	return err
}
