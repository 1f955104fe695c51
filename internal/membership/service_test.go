package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMembershipRepo struct{ mock.Mock }

func (m *MockMembershipRepo) ListPlans(ctx context.Context) ([]Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockMembershipRepo) GetPlanByID(ctx context.Context, id int) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockMembershipRepo) CreateMembership(ctx context.Context, userID, planID int, start, end, nextBilling time.Time) (*Membership, error) {
	args := m.Called(ctx, userID, planID, start, end, nextBilling)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Membership), args.Error(1)
}

func (m *MockMembershipRepo) GetForUser(ctx context.Context, userID int) (*MembershipWithPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MembershipWithPlan), args.Error(1)
}

func (m *MockMembershipRepo) IsActive(ctx context.Context, userID int, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepo) UpdateStatus(ctx context.Context, membershipID int, status string) error {
	return m.Called(ctx, membershipID, status).Error(0)
}

func (m *MockMembershipRepo) IncrementClassesUsed(ctx context.Context, membershipID int) error {
	return m.Called(ctx, membershipID).Error(0)
}

func validCard() PurchaseRequest {
	return PurchaseRequest{
		PlanID:           1,
		StartImmediately: true,
		CardNumber:       "4111111111111111",
		CardHolder:       "T Malatjie",
		ExpiryMM:         12,
		ExpiryYY:         39,
	}
}

func TestPurchase(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("IsActive", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("GetPlanByID", mock.Anything, 1).Return(&Plan{
		ID:           1,
		PlanType:     PlanPremium,
		MonthlyCents: 79900,
	}, nil)
	repo.On("CreateMembership", mock.Anything, 1, 1, mock.Anything, mock.Anything, mock.Anything).
		Return(&Membership{ID: 10, UserID: 1, PlanID: 1, Status: StatusActive}, nil)

	svc := NewService(repo, nil)

	resp, err := svc.Purchase(context.Background(), 1, validCard())
	require.NoError(t, err)
	assert.Equal(t, int64(79900), resp.AmountCents)
	assert.Equal(t, StatusActive, resp.Membership.Status)
	repo.AssertExpectations(t)
}

func TestPurchase_AlreadyMember(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("IsActive", mock.Anything, 1, mock.Anything).Return(true, nil)

	svc := NewService(repo, nil)

	_, err := svc.Purchase(context.Background(), 1, validCard())
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestPurchase_ExpiredCard(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("IsActive", mock.Anything, 1, mock.Anything).Return(false, nil)
	repo.On("GetPlanByID", mock.Anything, 1).Return(&Plan{ID: 1, MonthlyCents: 100}, nil)

	svc := NewService(repo, nil)

	req := validCard()
	req.ExpiryYY = 20
	_, err := svc.Purchase(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestCancel(t *testing.T) {
	repo := new(MockMembershipRepo)
	repo.On("GetForUser", mock.Anything, 1).Return(&MembershipWithPlan{
		Membership: Membership{ID: 10, Status: StatusActive},
	}, nil)
	repo.On("UpdateStatus", mock.Anything, 10, StatusCancelled).Return(nil)

	svc := NewService(repo, nil)

	require.NoError(t, svc.Cancel(context.Background(), 1))
	repo.AssertExpectations(t)
}

func TestRemainingClasses(t *testing.T) {
	limited := &MembershipWithPlan{
		Membership:     Membership{ClassesUsed: 3},
		ClassAllowance: AllowanceLimited,
		ClassLimit:     8,
	}
	left, capped := limited.RemainingClasses()
	assert.True(t, capped)
	assert.Equal(t, 5, left)

	unlimited := &MembershipWithPlan{ClassAllowance: AllowanceUnlimited}
	_, capped = unlimited.RemainingClasses()
	assert.False(t, capped)

	none := &MembershipWithPlan{ClassAllowance: AllowanceNone}
	left, capped = none.RemainingClasses()
	assert.True(t, capped)
	assert.Equal(t, 0, left)

	overused := &MembershipWithPlan{
		Membership:     Membership{ClassesUsed: 12},
		ClassAllowance: AllowanceLimited,
		ClassLimit:     8,
	}
	left, _ = overused.RemainingClasses()
	assert.Equal(t, 0, left)
}
