package catalog

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

// ListServices godoc
// @Summary      List services
// @Description  Returns active bookable services, optionally filtered by type or search term.
// @Tags         services
// @Produce      json
// @Param        type    query     string  false  "Service type filter"
// @Param        search  query     string  false  "Search in name and description"
// @Success      200     {array}   Service
// @Failure      500     {object}  api.ErrorResponse
// @Router       /services [get]
func (h *Handler) ListServices(c *gin.Context) {
	filter := ListFilter{
		ServiceType: c.Query("type"),
		Search:      c.Query("search"),
	}

	services, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService godoc
// @Summary      Get service
// @Tags         services
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {object}  Service
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /services/{serviceID} [get]
func (h *Handler) GetService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	svc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Database error"})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// CreateService godoc
// @Summary      Create service
// @Description  Creates a new bookable service. Admin only.
// @Tags         services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateServiceRequest  true  "Service data"
// @Success      201      {object}  Service
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /admin/services [post]
func (h *Handler) CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	svc, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// UpdateService godoc
// @Summary      Update service
// @Description  Administrative edit of an existing service.
// @Tags         services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        serviceID  path      int                   true  "Service ID"
// @Param        request    body      UpdateServiceRequest  true  "Fields to update"
// @Success      200        {object}  Service
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/services/{serviceID} [patch]
func (h *Handler) UpdateService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	svc, err := h.repo.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update service"})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// DeactivateService godoc
// @Summary      Deactivate service
// @Tags         services
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /admin/services/{serviceID} [delete]
func (h *Handler) DeactivateService(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Service not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to deactivate service"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Service deactivated"})
}
