package membership

import (
	"context"
	"errors"
	"time"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/logger"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/metrics"
)

var (
	ErrAlreadyMember  = errors.New("user already has an active membership")
	ErrPaymentDeclined = errors.New("payment declined")
)

type Service interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResponse, error)
	GetMine(ctx context.Context, userID int) (*MembershipWithPlan, error)
	Cancel(ctx context.Context, userID int) error
	IsActive(ctx context.Context, userID int, at time.Time) (bool, error)
}

// Notifier queues the welcome email once a membership is active.
type Notifier interface {
	MembershipStarted(ctx context.Context, userID int, planName string, endDate time.Time)
}

type service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier) Service {
	return &service{repo: repo, notifier: notifier, now: time.Now}
}

func (s *service) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx)
}

// Purchase runs the mocked payment and activates a monthly membership.
// Payment always succeeds; the card details are validated for shape and
// discarded.
func (s *service) Purchase(ctx context.Context, userID int, req PurchaseRequest) (*PurchaseResponse, error) {
	now := s.now()

	active, err := s.repo.IsActive(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadyMember
	}

	plan, err := s.repo.GetPlanByID(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	amount := plan.MonthlyCents + plan.SetupFeeCents
	if !processMockPayment(req, amount) {
		return nil, ErrPaymentDeclined
	}

	start := now
	if !req.StartImmediately {
		start = now.AddDate(0, 0, 1)
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end := start.AddDate(0, 1, 0)

	m, err := s.repo.CreateMembership(ctx, userID, plan.ID, start, end, end)
	if err != nil {
		return nil, err
	}

	logger.Info("membership created", "user_id", userID, "plan_type", plan.PlanType)
	metrics.RecordMembership(plan.PlanType)

	if s.notifier != nil {
		s.notifier.MembershipStarted(ctx, userID, plan.Name, end)
	}

	return &PurchaseResponse{
		Membership:  m,
		AmountCents: amount,
		PaidWith:    "card (mock)",
	}, nil
}

func (s *service) GetMine(ctx context.Context, userID int) (*MembershipWithPlan, error) {
	return s.repo.GetForUser(ctx, userID)
}

func (s *service) Cancel(ctx context.Context, userID int) error {
	m, err := s.repo.GetForUser(ctx, userID)
	if err != nil {
		return err
	}

	if m.Status != StatusActive {
		return ErrMembershipNotFound
	}

	return s.repo.UpdateStatus(ctx, m.ID, StatusCancelled)
}

func (s *service) IsActive(ctx context.Context, userID int, at time.Time) (bool, error) {
	return s.repo.IsActive(ctx, userID, at)
}

// processMockPayment stands in for a real gateway. It declines only an
// obviously expired card so the flow is exercisable end to end.
func processMockPayment(req PurchaseRequest, amountCents int64) bool {
	if amountCents < 0 {
		return false
	}

	now := time.Now()
	expiry := time.Date(2000+req.ExpiryYY, time.Month(req.ExpiryMM), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return expiry.After(now)
}
