package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	return repo, mock, func() { sqlxDB.Close() }
}

func serviceRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "service_type", "description", "duration_minutes", "price_cents",
		"max_participants", "requires_membership", "minimum_fitness_level", "is_active", "created_at",
	}).AddRow(1, "MMA Fundamentals", TypeMMASession, "Intro MMA class", 60, 25000, 10, true, LevelBeginner, true, now)
}

func TestCreateService(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("INSERT INTO services").
		WithArgs("MMA Fundamentals", TypeMMASession, "Intro MMA class", 60, int64(25000), 10, true, LevelBeginner).
		WillReturnRows(serviceRows(time.Now()))

	svc, err := repo.Create(context.Background(), CreateServiceRequest{
		Name:                "MMA Fundamentals",
		ServiceType:         TypeMMASession,
		Description:         "Intro MMA class",
		DurationMinutes:     60,
		PriceCents:          25000,
		MaxParticipants:     10,
		RequiresMembership:  true,
		MinimumFitnessLevel: LevelBeginner,
	})
	require.NoError(t, err)
	require.Equal(t, 1, svc.ID)
	require.Equal(t, 10, svc.MaxParticipants)
}

func TestGetServiceByID_NotFound(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery("SELECT .+ FROM services WHERE id").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestListServices_TypeFilter(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("AND service_type = $1")).
		WithArgs(TypeMMASession).
		WillReturnRows(serviceRows(time.Now()))

	services, err := repo.List(context.Background(), ListFilter{ServiceType: TypeMMASession})
	require.NoError(t, err)
	require.Len(t, services, 1)
	require.Equal(t, TypeMMASession, services[0].ServiceType)
}

func TestDeactivateService(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE services SET is_active = FALSE WHERE id = $1")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), 1))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE services SET is_active = FALSE WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, repo.Deactivate(context.Background(), 2), ErrServiceNotFound)
}
