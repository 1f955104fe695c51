package trainer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/api"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// ListTrainers godoc
// @Summary      List trainers
// @Description  Returns trainers currently accepting clients.
// @Tags         trainers
// @Produce      json
// @Success      200  {array}   ProfileWithName
// @Failure      500  {object}  api.ErrorResponse
// @Router       /trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	profiles, err := h.repo.ListAccepting(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch trainers"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// CreateTrainer godoc
// @Summary      Create trainer profile
// @Description  Registers a trainer profile for an existing user. Admin only.
// @Tags         trainers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProfileRequest  true  "Trainer profile data"
// @Success      201      {object}  Profile
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/trainers [post]
func (h *Handler) CreateTrainer(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	profile, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create trainer profile"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// SetAccepting godoc
// @Summary      Toggle accepting clients
// @Tags         trainers
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path      int   true  "Trainer ID"
// @Param        accepting  query     bool  true  "Accepting clients"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/trainers/{trainerID}/accepting [post]
func (h *Handler) SetAccepting(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID"})
		return
	}

	accepting, err := strconv.ParseBool(c.Query("accepting"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "accepting query param must be true or false"})
		return
	}

	if err := h.repo.SetAcceptingClients(c.Request.Context(), id, accepting); err != nil {
		if errors.Is(err, ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Trainer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update trainer"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Trainer updated"})
}
