package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/config"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/logger"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/metrics"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/user"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"

	maxTries = 3
)

// Job is one queued email, serialized onto the Redis list.
type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues booking and membership emails on Redis and drains the
// queue in a background worker. Queueing never blocks a request on SMTP.
type Service struct {
	redis    *redis.Client
	users    user.Repository
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(cfg *config.Config, users user.Repository) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		}),
		users:    users,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		smtpUser: cfg.SMTPUser,
		smtpPass: cfg.SMTPPass,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue notification", "type", job.Type, "to", job.To, "error", err)
		return err
	}

	metrics.RecordNotification(job.Type)
	logger.Info("notification queued", "type", job.Type, "to", job.To)
	return nil
}

// Send queues an arbitrary email to a known address.
func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{
		Type:    "adhoc",
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
	})
}

// notifyUser resolves the recipient and queues the job. Lookup failures
// are logged and swallowed: a missing email never fails the booking.
func (s *Service) notifyUser(ctx context.Context, userID int, notifType, subject string, body func(name string) string) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		logger.Error("cannot resolve notification recipient", "user_id", userID, "error", err)
		return
	}

	_ = s.enqueue(ctx, Job{
		Type:    notifType,
		To:      u.Email,
		Name:    u.Name,
		Subject: subject,
		Body:    body(u.Name),
	})
}

// BookingConfirmed implements booking.Notifier.
func (s *Service) BookingConfirmed(ctx context.Context, userID int, serviceName string, startsAt time.Time) {
	s.notifyUser(ctx, userID, "booking_confirmed", "Booking Confirmed - "+serviceName, func(name string) string {
		return fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Session: %s
Time: %s

See you at the gym!

- Timmy's Gym`, name, serviceName, startsAt.Format("Jan 2, 2006 at 3:04 PM"))
	})
}

// BookingCancelled implements booking.Notifier.
func (s *Service) BookingCancelled(ctx context.Context, userID int, serviceName string, startsAt time.Time) {
	s.notifyUser(ctx, userID, "booking_cancelled", "Booking Cancelled - "+serviceName, func(name string) string {
		return fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Session: %s
Time: %s

- Timmy's Gym`, name, serviceName, startsAt.Format("Jan 2, 2006 at 3:04 PM"))
	})
}

// MembershipStarted implements membership.Notifier.
func (s *Service) MembershipStarted(ctx context.Context, userID int, planName string, endDate time.Time) {
	s.notifyUser(ctx, userID, "membership_started", "Welcome to Timmy's Gym", func(name string) string {
		return fmt.Sprintf(`Hi %s,

Welcome to Timmy's Gym!

Your %s membership is active until %s.

- Timmy's Gym`, name, planName, endDate.Format("Jan 2, 2006"))
	})
}

// Start drains the queue until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.NotificationQueueLength.Set(float64(s.QueueLength(ctx)))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad notification payload", "error", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Error("failed to send notification", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}

		s.saveFailed(job, err)
		return
	}

	logger.Info("notification sent", "type", job.Type, "to", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, sendErr error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": sendErr.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Error("notification moved to failed queue", "to", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
