package booking

import "time"

// Booking statuses. Completed, cancelled and no_show are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Payment statuses carried on a booking.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Booking struct {
	ID              int       `db:"id" json:"id"`
	UserID          int       `db:"user_id" json:"user_id"`
	ServiceID       int       `db:"service_id" json:"service_id"`
	TrainerID       *int      `db:"trainer_id" json:"trainer_id,omitempty"`
	Date            time.Time `db:"date" json:"date"`
	StartTime       TimeOfDay `db:"start_time" json:"start_time"`
	EndTime         TimeOfDay `db:"end_time" json:"end_time"`
	Status          string    `db:"status" json:"status"`
	Participants    int       `db:"participants" json:"participants"`
	SpecialRequests string    `db:"special_requests" json:"special_requests,omitempty"`
	AmountCents     int64     `db:"amount_cents" json:"amount_cents"`
	PaymentStatus   string    `db:"payment_status" json:"payment_status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the booking still holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BookingWithService joins in service details for listings.
type BookingWithService struct {
	Booking
	ServiceName string `db:"service_name" json:"service_name"`
	ServiceType string `db:"service_type" json:"service_type"`
}

type CreateBookingRequest struct {
	ServiceID       int    `json:"service_id" binding:"required"`
	TrainerID       *int   `json:"trainer_id,omitempty"`
	Date            string `json:"date" binding:"required"`       // YYYY-MM-DD
	StartTime       string `json:"start_time" binding:"required"` // HH:MM
	Participants    int    `json:"participants" binding:"required"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

type RescheduleRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	TrainerID *int   `json:"trainer_id,omitempty"`
}

// ListFilter narrows a member's booking history.
type ListFilter struct {
	Status    string
	ServiceID int
}

// Stats summarises a member's booking history.
type Stats struct {
	Total     int `db:"total" json:"total"`
	Completed int `db:"completed" json:"completed"`
	Upcoming  int `db:"upcoming" json:"upcoming"`
	Cancelled int `db:"cancelled" json:"cancelled"`
}

type BookingDetailResponse struct {
	Booking       *BookingWithService `json:"booking"`
	CanCancel     bool                `json:"can_cancel"`
	CanReschedule bool                `json:"can_reschedule"`
}
