package listings

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

// RegisterPublicRoutes wires browse and read routes
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/listings", h.Browse)
	router.GET("/listings/:id", h.GetListing)
	router.GET("/categories", h.ListCategories)
	router.GET("/contractors/:id/listings", h.ListByContractor)
}

// RegisterRoutes wires the authenticated routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/listings", auth.RequireRole(auth.RoleContractor), h.CreateListing)
	router.PUT("/listings/:id", auth.RequireRole(auth.RoleContractor), h.UpdateListing)
	router.POST("/listings/:id/bookmark", h.ToggleBookmark)
	router.GET("/bookmarks", h.ListBookmarked)
}

func (h *Handler) Browse(c *gin.Context) {
	var filter BrowseFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Browse(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to browse listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to browse listings"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetListing(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	listing, err := h.service.GetListing(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		h.logger.Error("Failed to get listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listing"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListByContractor(c *gin.Context) {
	contractorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
		return
	}

	results, err := h.service.ListByContractor(c.Request.Context(), contractorID)
	if err != nil {
		h.logger.Error("Failed to list contractor listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contractor listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": results, "count": len(results)})
}

func (h *Handler) CreateListing(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.service.CreateListing(c.Request.Context(), callerID, req)
	if err != nil {
		h.logger.Error("Failed to create listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *Handler) UpdateListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.service.UpdateListing(c.Request.Context(), callerID, listingID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Listing belongs to another contractor"})
		default:
			h.logger.Error("Failed to update listing", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		}
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) ToggleBookmark(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookmarked, err := h.service.ToggleBookmark(c.Request.Context(), callerID, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		h.logger.Error("Failed to toggle bookmark", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle bookmark"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}

func (h *Handler) ListBookmarked(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	results, err := h.service.ListBookmarked(c.Request.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list bookmarks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookmarks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": results, "count": len(results)})
}
