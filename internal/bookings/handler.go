package bookings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
	"listinghub/marketplace/marketplace-backend/internal/listings"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires the authenticated booking routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/bookings", auth.RequireRole(auth.RoleHomeowner), h.Create)
	router.GET("/bookings", h.List)
	router.GET("/bookings/:id", h.Get)
	router.POST("/bookings/:id/transition", h.Transition)
}

func (h *Handler) Create(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.Create(c.Request.Context(), callerID, req)
	if err != nil {
		if errors.Is(err, listings.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		h.logger.Error("Failed to create booking", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) List(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var (
		results []Booking
		listErr error
	)
	if auth.Role(c.GetString(auth.ContextRole)) == auth.RoleContractor {
		results, listErr = h.service.ListByContractor(c.Request.Context(), callerID)
	} else {
		results, listErr = h.service.ListByHomeowner(c.Request.Context(), callerID)
	}
	if listErr != nil {
		h.logger.Error("Failed to list bookings", zap.Error(listErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": results, "count": len(results)})
}

func (h *Handler) Get(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	booking, err := h.service.Get(c.Request.Context(), callerID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not part of this booking"})
		default:
			h.logger.Error("Failed to get booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *Handler) Transition(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.Transition(c.Request.Context(), callerID, bookingID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to transition booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transition booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}
