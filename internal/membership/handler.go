package membership

import (
	"errors"
	"net/http"

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

// ListPlans godoc
// @Summary      List membership plans
// @Tags         memberships
// @Produce      json
// @Success      200  {array}   Plan
// @Failure      500  {object}  api.ErrorResponse
// @Router       /membership-plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// Purchase godoc
// @Summary      Purchase membership
// @Description  Activates a monthly membership after a mocked card payment.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      PurchaseRequest  true  "Plan and mock billing details"
// @Success      201      {object}  PurchaseResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      402      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /memberships/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.Purchase(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyMember):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have an active membership"})
		case errors.Is(err, ErrPlanNotFound):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown membership plan"})
		case errors.Is(err, ErrPaymentDeclined):
			c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "Payment declined"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to purchase membership"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetMine godoc
// @Summary      My membership
// @Description  Returns the caller's membership with remaining class credits.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /memberships/me [get]
func (h *Handler) GetMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	m, err := h.service.GetMine(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No membership found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch membership"})
		return
	}

	resp := gin.H{"membership": m}
	if left, limited := m.RemainingClasses(); limited {
		resp["classes_remaining"] = left
	} else {
		resp["classes_remaining"] = "unlimited"
	}

	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancel membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /memberships/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	if err := h.service.Cancel(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "No active membership to cancel"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel membership"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Membership cancelled"})
}
