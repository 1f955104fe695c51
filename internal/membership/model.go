package membership

import "time"

// Plan types mirror the tiers sold at the front desk.
const (
	PlanBasic     = "basic"
	PlanPremium   = "premium"
	PlanVIP       = "vip"
	PlanCorporate = "corporate"
)

// Membership statuses.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
)

// Class allowance modes. An explicit tri-state: a plan either includes no
// group classes, a fixed number per month, or unlimited classes. The zero
// value of the limit never doubles as "unlimited".
const (
	AllowanceNone      = "none"
	AllowanceLimited   = "limited"
	AllowanceUnlimited = "unlimited"
)

type Plan struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	PlanType         string    `db:"plan_type" json:"plan_type"`
	Description      string    `db:"description" json:"description"`
	MonthlyCents     int64     `db:"monthly_cents" json:"monthly_cents"`
	SetupFeeCents    int64     `db:"setup_fee_cents" json:"setup_fee_cents"`
	GymAccess        bool      `db:"gym_access" json:"gym_access"`
	ClassAllowance   string    `db:"class_allowance" json:"class_allowance"`
	ClassLimit       int       `db:"class_limit" json:"class_limit,omitempty"`
	PTSessions       int       `db:"pt_sessions" json:"pt_sessions"`
	GuestPasses      int       `db:"guest_passes" json:"guest_passes"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	SortOrder        int       `db:"sort_order" json:"sort_order"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Membership struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	PlanID          int       `db:"plan_id" json:"plan_id"`
	Status          string    `db:"status" json:"status"`
	StartDate       time.Time `db:"start_date" json:"start_date"`
	EndDate         time.Time `db:"end_date" json:"end_date"`
	NextBillingDate time.Time `db:"next_billing_date" json:"next_billing_date"`
	ClassesUsed     int       `db:"classes_used" json:"classes_used"`
	PTSessionsUsed  int       `db:"pt_sessions_used" json:"pt_sessions_used"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// MembershipWithPlan joins the plan for member-facing views.
type MembershipWithPlan struct {
	Membership
	PlanName       string `db:"plan_name" json:"plan_name"`
	PlanType       string `db:"plan_type" json:"plan_type"`
	ClassAllowance string `db:"class_allowance" json:"class_allowance"`
	ClassLimit     int    `db:"class_limit" json:"class_limit"`
}

// RemainingClasses reports how many group classes are left this month.
// The second return value is false when the plan is unlimited.
func (m *MembershipWithPlan) RemainingClasses() (int, bool) {
	switch m.ClassAllowance {
	case AllowanceUnlimited:
		return 0, false
	case AllowanceLimited:
		left := m.ClassLimit - m.ClassesUsed
		if left < 0 {
			left = 0
		}
		return left, true
	default:
		return 0, true
	}
}

type PurchaseRequest struct {
	PlanID           int  `json:"plan_id" binding:"required"`
	StartImmediately bool `json:"start_immediately"`

	// Mock billing details; never stored, never charged.
	CardNumber string `json:"card_number" binding:"required,min=12,max=19"`
	CardHolder string `json:"card_holder" binding:"required"`
	ExpiryMM   int    `json:"expiry_mm" binding:"required,min=1,max=12"`
	ExpiryYY   int    `json:"expiry_yy" binding:"required"`
}

type PurchaseResponse struct {
	Membership  *Membership `json:"membership"`
	AmountCents int64       `json:"amount_cents"`
	PaidWith    string      `json:"paid_with" example:"card (mock)"`
}
