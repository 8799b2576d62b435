package reviews

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes wires the read-only review routes
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/listings/:id/reviews", h.ListByListing)
}

// RegisterRoutes wires the authenticated review routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/reviews", auth.RequireRole(auth.RoleHomeowner), h.Create)
	router.POST("/reviews/:id/response", auth.RequireRole(auth.RoleContractor), h.Respond)
}

func (h *Handler) Create(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.Create(c.Request.Context(), callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking already reviewed"})
		case errors.Is(err, ErrBookingNotCompleted):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is not completed"})
		case errors.Is(err, ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the booking's homeowner may review it"})
		default:
			h.logger.Error("Failed to create review", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *Handler) Respond(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.Respond(c.Request.Context(), callerID, reviewID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		case errors.Is(err, ErrNotResponder):
			c.JSON(http.StatusForbidden, gin.H{"error": "Only the reviewed contractor may respond"})
		default:
			h.logger.Error("Failed to respond to review", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to review"})
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *Handler) ListByListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	results, err := h.service.ListByListing(c.Request.Context(), listingID)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": results, "count": len(results)})
}
