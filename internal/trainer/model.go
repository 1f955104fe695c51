package trainer

import "time"

// Specializations a trainer can hold.
const (
	SpecPersonalTraining = "personal_training"
	SpecMMA              = "mma"
	SpecBoxing           = "boxing"
	SpecStrength         = "strength"
	SpecYoga             = "yoga"
	SpecPilates          = "pilates"
	SpecNutrition        = "nutrition"
	SpecPhysiotherapy    = "physiotherapy"
)

type Profile struct {
	ID                 int       `db:"id" json:"id"`
	UserID             int       `db:"user_id" json:"user_id"`
	Specialization     string    `db:"specialization" json:"specialization"`
	Certifications     string    `db:"certifications" json:"certifications"`
	YearsExperience    int       `db:"years_experience" json:"years_experience"`
	HourlyRateCents    int64     `db:"hourly_rate_cents" json:"hourly_rate_cents"`
	IsAcceptingClients bool      `db:"is_accepting_clients" json:"is_accepting_clients"`
	Bio                string    `db:"bio" json:"bio"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ProfileWithName joins in the trainer's display name for listings.
type ProfileWithName struct {
	Profile
	Name string `db:"name" json:"name"`
}

type CreateProfileRequest struct {
	UserID          int    `json:"user_id" binding:"required"`
	Specialization  string `json:"specialization" binding:"required,oneof=personal_training mma boxing strength yoga pilates nutrition physiotherapy"`
	Certifications  string `json:"certifications" binding:"required"`
	YearsExperience int    `json:"years_experience" binding:"min=0"`
	HourlyRateCents int64  `json:"hourly_rate_cents" binding:"required,min=0"`
	Bio             string `json:"bio" binding:"max=1000"`
}
