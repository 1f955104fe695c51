package catalog

import "time"

// Service types offered by the gym.
const (
	TypePersonalTraining = "personal_training"
	TypeGroupClass       = "group_class"
	TypeMMASession       = "mma_session"
	TypeConsultation     = "consultation"
	TypeAssessment       = "assessment"
)

// Fitness levels a service may require.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelAthlete      = "athlete"
)

type Service struct {
	ID                  int       `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	ServiceType         string    `db:"service_type" json:"service_type"`
	Description         string    `db:"description" json:"description"`
	DurationMinutes     int       `db:"duration_minutes" json:"duration_minutes"`
	PriceCents          int64     `db:"price_cents" json:"price_cents"`
	MaxParticipants     int       `db:"max_participants" json:"max_participants"`
	RequiresMembership  bool      `db:"requires_membership" json:"requires_membership"`
	MinimumFitnessLevel string    `db:"minimum_fitness_level" json:"minimum_fitness_level,omitempty"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type CreateServiceRequest struct {
	Name                string `json:"name" binding:"required,max=100"`
	ServiceType         string `json:"service_type" binding:"required,oneof=personal_training group_class mma_session consultation assessment"`
	Description         string `json:"description" binding:"required"`
	DurationMinutes     int    `json:"duration_minutes" binding:"required,min=15,max=240"`
	PriceCents          int64  `json:"price_cents" binding:"required,min=0"`
	MaxParticipants     int    `json:"max_participants" binding:"required,min=1"`
	RequiresMembership  bool   `json:"requires_membership"`
	MinimumFitnessLevel string `json:"minimum_fitness_level" binding:"omitempty,oneof=beginner intermediate advanced athlete"`
}

type UpdateServiceRequest struct {
	Name                *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Description         *string `json:"description,omitempty"`
	DurationMinutes     *int    `json:"duration_minutes,omitempty" binding:"omitempty,min=15,max=240"`
	PriceCents          *int64  `json:"price_cents,omitempty" binding:"omitempty,min=0"`
	MaxParticipants     *int    `json:"max_participants,omitempty" binding:"omitempty,min=1"`
	RequiresMembership  *bool   `json:"requires_membership,omitempty"`
	MinimumFitnessLevel *string `json:"minimum_fitness_level,omitempty" binding:"omitempty,oneof=beginner intermediate advanced athlete"`
	IsActive            *bool   `json:"is_active,omitempty"`
}

// ListFilter narrows the public services listing.
type ListFilter struct {
	ServiceType string
	Search      string
}
