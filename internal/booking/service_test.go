package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/catalog"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/membership"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/trainer"
)

// fakeRepo mirrors the real repository's concurrency contract: every
// create and reschedule holds a lock while re-checking capacity and the
// per-user and per-trainer uniqueness of active slots.
type fakeRepo struct {
	mu       sync.Mutex
	nextID   int
	bookings map[int]*Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, bookings: make(map[int]*Booking)}
}

func (r *fakeRepo) activeAt(serviceID int, date time.Time, start TimeOfDay, excludeID int) int {
	total := 0
	for _, b := range r.bookings {
		if b.ID != excludeID && b.IsActive() && b.ServiceID == serviceID && b.Date.Equal(date) && b.StartTime == start {
			total += b.Participants
		}
	}
	return total
}

func (r *fakeRepo) userConflict(userID int, date time.Time, start TimeOfDay, excludeID int) bool {
	for _, b := range r.bookings {
		if b.ID != excludeID && b.IsActive() && b.UserID == userID && b.Date.Equal(date) && b.StartTime == start {
			return true
		}
	}
	return false
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking, maxParticipants int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rejection := capacityRejection(r.activeAt(b.ServiceID, b.Date, b.StartTime, 0), b.Participants, maxParticipants); rejection != nil {
		return nil, rejection
	}
	if r.userConflict(b.UserID, b.Date, b.StartTime, 0) {
		return nil, reject(ReasonUserDoubleBooked, "You already have a booking at this time.")
	}

	stored := *b
	stored.ID = r.nextID
	r.nextID++
	r.bookings[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *fakeRepo) Reschedule(ctx context.Context, id int, date time.Time, start, end TimeOfDay, trainerID *int, maxParticipants int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}

	if rejection := capacityRejection(r.activeAt(b.ServiceID, date, start, id), b.Participants, maxParticipants); rejection != nil {
		return nil, rejection
	}

	b.Date, b.StartTime, b.EndTime, b.TrainerID = date, start, end, trainerID
	out := *b
	return &out, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (r *fakeRepo) GetDetailByID(ctx context.Context, id int) (*BookingWithService, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BookingWithService{Booking: *b, ServiceName: "HIIT Class", ServiceType: catalog.TypeGroupClass}, nil
}

func (r *fakeRepo) Cancel(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !b.IsActive() {
		return ErrBookingNotFound
	}
	b.Status = StatusCancelled
	return nil
}

func (r *fakeRepo) ListForUser(ctx context.Context, userID int, filter ListFilter) ([]BookingWithService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []BookingWithService
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.ServiceID != 0 && b.ServiceID != filter.ServiceID {
			continue
		}
		out = append(out, BookingWithService{Booking: *b})
	}
	return out, nil
}

func (r *fakeRepo) StatsForUser(ctx context.Context, userID int, today time.Time) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &Stats{}
	for _, b := range r.bookings {
		if b.UserID != userID {
			continue
		}
		stats.Total++
		switch {
		case b.Status == StatusCompleted:
			stats.Completed++
		case b.Status == StatusCancelled:
			stats.Cancelled++
		case b.IsActive() && !b.Date.Before(today):
			stats.Upcoming++
		}
	}
	return stats, nil
}

func (r *fakeRepo) ActiveForUserAt(ctx context.Context, userID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ActiveBooking
	for _, b := range r.bookings {
		if b.IsActive() && b.UserID == userID && b.Date.Equal(date) && b.StartTime == start {
			out = append(out, ActiveBooking{ID: b.ID, Participants: b.Participants})
		}
	}
	return out, nil
}

func (r *fakeRepo) ActiveForSlot(ctx context.Context, serviceID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ActiveBooking
	for _, b := range r.bookings {
		if b.IsActive() && b.ServiceID == serviceID && b.Date.Equal(date) && b.StartTime == start {
			out = append(out, ActiveBooking{ID: b.ID, Participants: b.Participants})
		}
	}
	return out, nil
}

func (r *fakeRepo) ActiveForTrainerAt(ctx context.Context, trainerID int, date time.Time, start TimeOfDay) ([]ActiveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ActiveBooking
	for _, b := range r.bookings {
		if b.IsActive() && b.TrainerID != nil && *b.TrainerID == trainerID && b.Date.Equal(date) && b.StartTime == start {
			out = append(out, ActiveBooking{ID: b.ID, Participants: b.Participants})
		}
	}
	return out, nil
}

func (r *fakeRepo) SlotUsage(ctx context.Context, serviceID int, from, to time.Time) ([]SlotUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[slotKey]int)
	for _, b := range r.bookings {
		if b.IsActive() && b.ServiceID == serviceID && !b.Date.Before(from) && !b.Date.After(to) {
			totals[slotKey{b.Date.Format("2006-01-02"), b.StartTime}] += b.Participants
		}
	}
	var out []SlotUsage
	for k, total := range totals {
		date, _ := time.Parse("2006-01-02", k.date)
		out = append(out, SlotUsage{Date: date, StartTime: k.start, Participants: total})
	}
	return out, nil
}

func (r *fakeRepo) SlotUsageForDate(ctx context.Context, serviceID int, date time.Time) ([]SlotUsage, error) {
	return r.SlotUsage(ctx, serviceID, date, date)
}

// stubCatalog serves a fixed set of services.
type stubCatalog struct {
	services map[int]catalog.Service
}

func (s *stubCatalog) GetByID(ctx context.Context, id int) (*catalog.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, catalog.ErrServiceNotFound
	}
	return &svc, nil
}

func (s *stubCatalog) Create(ctx context.Context, req catalog.CreateServiceRequest) (*catalog.Service, error) {
	return nil, errors.New("not supported")
}

func (s *stubCatalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Service, error) {
	return nil, nil
}

func (s *stubCatalog) Update(ctx context.Context, id int, req catalog.UpdateServiceRequest) (*catalog.Service, error) {
	return nil, errors.New("not supported")
}

func (s *stubCatalog) Deactivate(ctx context.Context, id int) error { return nil }

// stubMembership answers the active-membership check with a constant.
type stubMembership struct {
	membership.Repository
	active bool
}

func (s *stubMembership) IsActive(ctx context.Context, userID int, at time.Time) (bool, error) {
	return s.active, nil
}

// stubTrainers knows a fixed set of trainer IDs.
type stubTrainers struct {
	trainer.Repository
	ids map[int]bool
}

func (s *stubTrainers) GetByID(ctx context.Context, id int) (*trainer.Profile, error) {
	if !s.ids[id] {
		return nil, trainer.ErrTrainerNotFound
	}
	return &trainer.Profile{ID: id}, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed int
	cancelled int
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, userID int, serviceName string, startsAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, userID int, serviceName string, startsAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

type serviceFixture struct {
	svc      Service
	repo     *fakeRepo
	notifier *recordingNotifier
}

func newFixture(t *testing.T, services map[int]catalog.Service, memberActive bool) *serviceFixture {
	t.Helper()
	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	svc := NewService(
		repo,
		&stubCatalog{services: services},
		&stubMembership{active: memberActive},
		&stubTrainers{ids: map[int]bool{5: true}},
		notifier,
	)
	svc.(*service).now = func() time.Time { return testNow }
	return &serviceFixture{svc: svc, repo: repo, notifier: notifier}
}

func defaultServices() map[int]catalog.Service {
	return map[int]catalog.Service{1: testService()}
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		ServiceID:    1,
		Date:         testNow.AddDate(0, 0, 7).Format("2006-01-02"),
		StartTime:    "10:00",
		Participants: 1,
	}
}

func TestServiceCreateBooking(t *testing.T) {
	f := newFixture(t, defaultServices(), false)

	b, err := f.svc.Create(context.Background(), 42, validRequest())

	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)
	assert.Equal(t, NewTimeOfDay(11, 0), b.EndTime)
	assert.Equal(t, int64(25000), b.AmountCents)
	assert.Equal(t, 1, f.notifier.confirmed)
}

func TestServiceCreateInvalidInput(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	req := validRequest()
	req.Date = "10-06-2025"
	_, err := f.svc.Create(ctx, 42, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.StartTime = "noon"
	_, err = f.svc.Create(ctx, 42, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.ServiceID = 99
	_, err = f.svc.Create(ctx, 42, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	unknownTrainer := 77
	req = validRequest()
	req.TrainerID = &unknownTrainer
	_, err = f.svc.Create(ctx, 42, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceCreateInactiveService(t *testing.T) {
	inactive := testService()
	inactive.IsActive = false
	f := newFixture(t, map[int]catalog.Service{1: inactive}, false)

	_, err := f.svc.Create(context.Background(), 42, validRequest())

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceCreateMembershipRequired(t *testing.T) {
	gated := testService()
	gated.RequiresMembership = true

	f := newFixture(t, map[int]catalog.Service{1: gated}, false)
	_, err := f.svc.Create(context.Background(), 42, validRequest())
	assertRejected(t, err, ReasonMembershipRequired)

	f = newFixture(t, map[int]catalog.Service{1: gated}, true)
	_, err = f.svc.Create(context.Background(), 42, validRequest())
	require.NoError(t, err)
}

func TestServiceCreateDoubleBooked(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, 42, validRequest())
	assertRejected(t, err, ReasonUserDoubleBooked)
}

func TestServiceCancel(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	// Another member cannot touch it.
	assert.ErrorIs(t, f.svc.Cancel(ctx, 43, b.ID), ErrNotOwner)

	require.NoError(t, f.svc.Cancel(ctx, 42, b.ID))
	assert.Equal(t, 1, f.notifier.cancelled)

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestServiceCancelTooLate(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	// Tomorrow 10:00 is 22 hours from the fixed clock at 12:00.
	req := validRequest()
	req.Date = testNow.AddDate(0, 0, 1).Format("2006-01-02")
	b, err := f.svc.Create(ctx, 42, req)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Cancel(ctx, 42, b.ID), ErrTooLateToModify)
}

func TestServiceReschedule(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(ctx, 42, b.ID, RescheduleRequest{
		Date:      testNow.AddDate(0, 0, 8).Format("2006-01-02"),
		StartTime: "15:00",
	})

	require.NoError(t, err)
	assert.Equal(t, NewTimeOfDay(15, 0), moved.StartTime)
	assert.Equal(t, NewTimeOfDay(16, 0), moved.EndTime)
}

func TestServiceRescheduleIntoOwnSlot(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	req := validRequest()
	moved, err := f.svc.Reschedule(ctx, 42, b.ID, RescheduleRequest{Date: req.Date, StartTime: req.StartTime})

	require.NoError(t, err)
	assert.Equal(t, b.StartTime, moved.StartTime)
}

func TestServiceRescheduleRejectedSlot(t *testing.T) {
	single := testService()
	single.MaxParticipants = 1
	f := newFixture(t, map[int]catalog.Service{1: single}, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.StartTime = "11:00"
	second, err := f.svc.Create(ctx, 43, req)
	require.NoError(t, err)

	// 43 cannot move onto 42's full slot.
	_, err = f.svc.Reschedule(ctx, 43, second.ID, RescheduleRequest{Date: req.Date, StartTime: "10:00"})
	assertRejected(t, err, ReasonSlotFull)
}

func TestServiceGetDetail(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, 42, validRequest())
	require.NoError(t, err)

	detail, err := f.svc.GetDetail(ctx, 42, b.ID)
	require.NoError(t, err)
	assert.True(t, detail.CanCancel)
	assert.True(t, detail.CanReschedule)

	_, err = f.svc.GetDetail(ctx, 43, b.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestServiceAvailableTimes(t *testing.T) {
	f := newFixture(t, defaultServices(), false)
	ctx := context.Background()

	req := validRequest()
	_, err := f.svc.Create(ctx, 42, req)
	require.NoError(t, err)

	slots, err := f.svc.AvailableTimes(ctx, 1, req.Date)
	require.NoError(t, err)
	require.Len(t, slots, ClosingHour-OpeningHour)

	for _, s := range slots {
		if s.StartTime == NewTimeOfDay(10, 0) {
			assert.Equal(t, 9, s.SpotsLeft)
		}
	}

	_, err = f.svc.AvailableTimes(ctx, 1, "not-a-date")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceCalendar(t *testing.T) {
	f := newFixture(t, defaultServices(), false)

	slots, err := f.svc.Calendar(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, slots, LookaheadDays*(ClosingHour-OpeningHour))
}

// Concurrent requests for the last spot must produce exactly one
// accepted booking. The repository's locked re-check closes the window
// between validation and insert.
func TestServiceConcurrentCreateLastSpot(t *testing.T) {
	single := testService()
	single.MaxParticipants = 1
	f := newFixture(t, map[int]catalog.Service{1: single}, false)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		userID := 100 + i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), userID, validRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	accepted, full := 0, 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		var rejection *Rejection
		require.True(t, errors.As(err, &rejection), "unexpected error: %v", err)
		assert.Equal(t, ReasonSlotFull, rejection.Reason)
		full++
	}

	assert.Equal(t, 1, accepted)
	assert.Equal(t, workers-1, full)
}
