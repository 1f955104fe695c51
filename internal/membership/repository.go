package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPlanNotFound       = errors.New("membership plan not found")
	ErrMembershipNotFound = errors.New("membership not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const planColumns = `id, name, plan_type, description, monthly_cents, setup_fee_cents,
	gym_access, class_allowance, class_limit, pt_sessions, guest_passes, is_active,
	sort_order, created_at`

func (r *repository) ListPlans(ctx context.Context) ([]Plan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans
		WHERE is_active = TRUE
		ORDER BY sort_order ASC, monthly_cents ASC`

	var plans []Plan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) GetPlanByID(ctx context.Context, id int) (*Plan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1 AND is_active = TRUE`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &plan, nil
}

const membershipColumns = `id, user_id, plan_id, status, start_date, end_date,
	next_billing_date, classes_used, pt_sessions_used, created_at, updated_at`

func (r *repository) CreateMembership(ctx context.Context, userID, planID int, start, end, nextBilling time.Time) (*Membership, error) {
	query := `
		INSERT INTO memberships (user_id, plan_id, status, start_date, end_date, next_billing_date)
		VALUES ($1, $2, 'active', $3, $4, $5)
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query, userID, planID, start, end, nextBilling)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetForUser(ctx context.Context, userID int) (*MembershipWithPlan, error) {
	query := `
		SELECT m.id, m.user_id, m.plan_id, m.status, m.start_date, m.end_date,
			m.next_billing_date, m.classes_used, m.pt_sessions_used, m.created_at, m.updated_at,
			p.name AS plan_name, p.plan_type, p.class_allowance, p.class_limit
		FROM memberships m
		JOIN membership_plans p ON m.plan_id = p.id
		WHERE m.user_id = $1
	`

	var m MembershipWithPlan
	err := r.db.GetContext(ctx, &m, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) IsActive(ctx context.Context, userID int, at time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM memberships
			WHERE user_id = $1 AND status = 'active' AND end_date >= $2::date
		)
	`

	var active bool
	err := r.db.GetContext(ctx, &active, query, userID, at)
	if err != nil {
		return false, err
	}

	return active, nil
}

func (r *repository) UpdateStatus(ctx context.Context, membershipID int, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, membershipID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

func (r *repository) IncrementClassesUsed(ctx context.Context, membershipID int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET classes_used = classes_used + 1, updated_at = NOW() WHERE id = $1`,
		membershipID)
	return err
}
