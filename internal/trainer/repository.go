package trainer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrTrainerNotFound = errors.New("trainer not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const profileColumns = `id, user_id, specialization, certifications, years_experience,
	hourly_rate_cents, is_accepting_clients, bio, created_at`

func (r *repository) Create(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	query := `
		INSERT INTO trainer_profiles (user_id, specialization, certifications, years_experience,
			hourly_rate_cents, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + profileColumns

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query,
		req.UserID, req.Specialization, req.Certifications, req.YearsExperience,
		req.HourlyRateCents, req.Bio)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM trainer_profiles WHERE id = $1`

	var profile Profile
	err := r.db.GetContext(ctx, &profile, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &profile, nil
}

func (r *repository) ListAccepting(ctx context.Context) ([]ProfileWithName, error) {
	query := `
		SELECT tp.id, tp.user_id, tp.specialization, tp.certifications, tp.years_experience,
			tp.hourly_rate_cents, tp.is_accepting_clients, tp.bio, tp.created_at,
			u.name
		FROM trainer_profiles tp
		JOIN users u ON tp.user_id = u.id
		WHERE tp.is_accepting_clients = TRUE
		ORDER BY u.name ASC
	`

	var profiles []ProfileWithName
	err := r.db.SelectContext(ctx, &profiles, query)
	if err != nil {
		return nil, err
	}

	return profiles, nil
}

func (r *repository) SetAcceptingClients(ctx context.Context, id int, accepting bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE trainer_profiles SET is_accepting_clients = $1 WHERE id = $2`, accepting, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrTrainerNotFound
	}

	return nil
}
