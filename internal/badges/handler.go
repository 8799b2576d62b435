package badges

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for contractor badges
type Handler struct {
	engine *Engine
	store  Store
	logger *zap.Logger
}

// NewHandler creates a new badges handler
func NewHandler(engine *Engine, store Store, logger *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers badge routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	contractors := router.Group("/contractors")
	{
		contractors.GET("/:id/badges", h.listBadges)
		contractors.POST("/:id/badges/recompute", h.recompute)
	}
}

// listBadges handles GET /api/v1/contractors/:id/badges
func (h *Handler) listBadges(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractor id"})
		return
	}

	records, err := h.store.ListBadgeRecords(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list badges", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list badges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": records})
}

// recompute handles POST /api/v1/contractors/:id/badges/recompute
func (h *Handler) recompute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractor id"})
		return
	}

	delta, err := h.engine.Recompute(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contractor profile not found"})
			return
		}
		h.logger.Error("Failed to recompute badges",
			zap.String("contractorId", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recompute badges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges":  delta.Final,
		"created": len(delta.ToCreate),
		"removed": len(delta.ToRemove),
	})
}
