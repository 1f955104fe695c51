package user

import "time"

// Fitness levels tracked on member profiles.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelAthlete      = "athlete"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	FitnessLevel string    `db:"fitness_level" json:"fitness_level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Phone        string `json:"phone" binding:"omitempty,e164"`
	FitnessLevel string `json:"fitness_level" binding:"omitempty,oneof=beginner intermediate advanced athlete"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name         *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Phone        *string `json:"phone,omitempty" binding:"omitempty,e164"`
	FitnessLevel *string `json:"fitness_level,omitempty" binding:"omitempty,oneof=beginner intermediate advanced athlete"`
}
