package contractors

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

// RegisterPublicRoutes wires the routes that need no authentication
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/contractors/:id", h.GetProfile)
}

// RegisterRoutes wires the authenticated contractor and admin routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.PUT("/contractors/me", auth.RequireRole(auth.RoleContractor), h.UpdateProfile)
	router.POST("/contractors/me/verification", auth.RequireRole(auth.RoleContractor), h.SubmitVerification)

	admin := router.Group("/admin", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/verifications", h.ListPendingVerifications)
	admin.POST("/verifications/:id/review", h.ReviewVerification)
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}
		h.logger.Error("Failed to get contractor profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contractor profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), callerID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}
		h.logger.Error("Failed to update contractor profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contractor profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *Handler) SubmitVerification(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vr, err := h.service.SubmitVerification(c.Request.Context(), callerID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contractor not found"})
			return
		}
		h.logger.Error("Failed to submit verification request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit verification request"})
		return
	}

	c.JSON(http.StatusCreated, vr)
}

func (h *Handler) ListPendingVerifications(c *gin.Context) {
	requests, err := h.service.ListPendingVerifications(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list verification requests", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list verification requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
}

func (h *Handler) ReviewVerification(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	reviewerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ReviewVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vr, err := h.service.ReviewVerification(c.Request.Context(), requestID, reviewerID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrVerificationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Verification request not found"})
		case errors.Is(err, ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": "Verification request already reviewed"})
		default:
			h.logger.Error("Failed to review verification request", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to review verification request"})
		}
		return
	}

	c.JSON(http.StatusOK, vr)
}
