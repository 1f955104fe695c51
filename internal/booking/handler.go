package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/api"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RejectionResponse is returned when a booking fails a business rule.
type RejectionResponse struct {
	Reason    string `json:"reason"`
	Error     string `json:"error"`
	SpotsLeft *int   `json:"spots_left,omitempty"`
}

// ListResponse bundles a member's bookings with their history stats.
type ListResponse struct {
	Bookings []BookingWithService `json:"bookings"`
	Stats    *Stats               `json:"stats"`
}

// writeError maps service errors onto HTTP responses. Rule rejections
// carry their reason so clients can react to slot_partially_full.
func writeError(c *gin.Context, err error) {
	var rejection *Rejection
	switch {
	case errors.As(err, &rejection):
		resp := RejectionResponse{Reason: string(rejection.Reason), Error: rejection.Message}
		if rejection.Reason == ReasonSlotPartiallyFull {
			spots := rejection.SpotsLeft
			resp.SpotsLeft = &spots
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "Not your booking"})
	case errors.Is(err, ErrTooLateToModify):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
	}
}

// CreateBooking godoc
// @Summary      Book a session
// @Description  Validates the requested slot against business rules and creates the booking.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking details"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      422      {object}  RejectionResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListBookings godoc
// @Summary      List my bookings
// @Description  Returns the caller's bookings with history stats, optionally filtered.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        status      query     string  false  "Status filter"
// @Param        service_id  query     int     false  "Service filter"
// @Success      200         {object}  ListResponse
// @Failure      500         {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	filter := ListFilter{Status: c.Query("status")}
	if raw := c.Query("service_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service_id"})
			return
		}
		filter.ServiceID = id
	}

	bookings, stats, err := h.service.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Bookings: bookings, Stats: stats})
}

// GetBooking godoc
// @Summary      Booking detail
// @Description  Returns one booking with cancel and reschedule eligibility.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  BookingDetailResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancels an upcoming booking. Only allowed more than 24 hours before the start.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking cancelled"})
}

// RescheduleBooking godoc
// @Summary      Reschedule booking
// @Description  Moves a booking to a new slot. The new slot passes the same rules as a fresh booking.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                true  "Booking ID"
// @Param        request    body      RescheduleRequest  true  "New slot"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Failure      422        {object}  RejectionResponse
// @Router       /bookings/{bookingID}/reschedule [post]
func (h *Handler) RescheduleBooking(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
		return
	}

	id, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), userID, id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// AvailableTimes godoc
// @Summary      Available times
// @Description  Returns the open start times for a service on a given date.
// @Tags         bookings
// @Produce      json
// @Param        serviceID  path      int     true  "Service ID"
// @Param        date       query     string  true  "Date (YYYY-MM-DD)"
// @Success      200        {array}   Slot
// @Failure      400        {object}  api.ErrorResponse
// @Router       /services/{serviceID}/available-times [get]
func (h *Handler) AvailableTimes(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date query parameter is required"})
		return
	}

	slots, err := h.service.AvailableTimes(c.Request.Context(), id, date)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

// Calendar godoc
// @Summary      Booking calendar
// @Description  Returns open slots for a service over the next 30 days.
// @Tags         bookings
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {array}   Slot
// @Failure      400        {object}  api.ErrorResponse
// @Router       /services/{serviceID}/calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	slots, err := h.service.Calendar(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}
