package membership

import (
	"context"
	"time"
)

type Repository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlanByID(ctx context.Context, id int) (*Plan, error)

	CreateMembership(ctx context.Context, userID, planID int, start, end, nextBilling time.Time) (*Membership, error)
	GetForUser(ctx context.Context, userID int) (*MembershipWithPlan, error)
	IsActive(ctx context.Context, userID int, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, membershipID int, status string) error
	IncrementClassesUsed(ctx context.Context, membershipID int) error
}
