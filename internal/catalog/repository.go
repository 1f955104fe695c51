package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrServiceNotFound = errors.New("service not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const serviceColumns = `id, name, service_type, description, duration_minutes, price_cents,
	max_participants, requires_membership, minimum_fitness_level, is_active, created_at`

func (r *repository) Create(ctx context.Context, req CreateServiceRequest) (*Service, error) {
	query := `
		INSERT INTO services (name, service_type, description, duration_minutes, price_cents,
			max_participants, requires_membership, minimum_fitness_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + serviceColumns

	var svc Service
	err := r.db.GetContext(ctx, &svc, query,
		req.Name, req.ServiceType, req.Description, req.DurationMinutes, req.PriceCents,
		req.MaxParticipants, req.RequiresMembership, req.MinimumFitnessLevel)
	if err != nil {
		return nil, err
	}

	return &svc, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc Service
	err := r.db.GetContext(ctx, &svc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &svc, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active = TRUE`
	args := []interface{}{}

	if filter.ServiceType != "" {
		args = append(args, filter.ServiceType)
		query += fmt.Sprintf(" AND service_type = $%d", len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY name ASC"

	var services []Service
	err := r.db.SelectContext(ctx, &services, query, args...)
	if err != nil {
		return nil, err
	}

	return services, nil
}

func (r *repository) Update(ctx context.Context, id int, req UpdateServiceRequest) (*Service, error) {
	sets := []string{}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.DurationMinutes != nil {
		add("duration_minutes", *req.DurationMinutes)
	}
	if req.PriceCents != nil {
		add("price_cents", *req.PriceCents)
	}
	if req.MaxParticipants != nil {
		add("max_participants", *req.MaxParticipants)
	}
	if req.RequiresMembership != nil {
		add("requires_membership", *req.RequiresMembership)
	}
	if req.MinimumFitnessLevel != nil {
		add("minimum_fitness_level", *req.MinimumFitnessLevel)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE services SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), serviceColumns)

	var svc Service
	err := r.db.GetContext(ctx, &svc, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &svc, nil
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE services SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}
