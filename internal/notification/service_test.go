package notification

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/logger"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init()

	os.Exit(m.Run())
}

type stubUsers struct {
	user.Repository
	users map[int]*user.User
}

func (s *stubUsers) FindByID(ctx context.Context, id int) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func newTestService(rdb *redis.Client) *Service {
	return &Service{
		redis: rdb,
		users: &stubUsers{users: map[int]*user.User{
			42: {ID: 42, Name: "Thabo", Email: "thabo@example.com"},
		}},
		from:     "noreply@timmygym.co.za",
		fromName: "Timmy's Gym",
		smtpHost: "smtp.test.com",
		smtpPort: "587",
	}
}

func TestBookingConfirmedQueuesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)
	svc.BookingConfirmed(ctx, 42, "HIIT Class", time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancelledQueuesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)
	svc.BookingCancelled(ctx, 42, "HIIT Class", time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipStartedQueuesJob(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.Regexp().ExpectLPush(queueKey, `.*`).SetVal(1)

	svc := newTestService(db)
	svc.MembershipStarted(ctx, 42, "Premium Monthly", time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnknownRecipientQueuesNothing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	svc := newTestService(db)
	svc.BookingConfirmed(ctx, 99, "HIIT Class", time.Now())

	// No LPush was expected and none happened.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueuePayload(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	// The queued payload carries the job type and the resolved recipient.
	mock.Regexp().ExpectLPush(queueKey, `.*"type":"booking_confirmed".*"to":"thabo@example\.com".*`).SetVal(1)

	svc := newTestService(db)
	svc.BookingConfirmed(ctx, 42, "HIIT Class", time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	mock.ExpectLLen(queueKey).SetVal(3)

	svc := newTestService(db)
	assert.Equal(t, int64(3), svc.QueueLength(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
