package jobs

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

// RegisterRoutes wires the authenticated job and quote routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/jobs", auth.RequireRole(auth.RoleHomeowner), h.CreateJob)
	router.GET("/jobs", auth.RequireRole(auth.RoleContractor), h.ListOpenJobs)
	router.GET("/jobs/mine", auth.RequireRole(auth.RoleHomeowner), h.ListMyJobs)
	router.GET("/jobs/:id", h.GetJob)
	router.POST("/jobs/:id/close", auth.RequireRole(auth.RoleHomeowner), h.CloseJob)
	router.POST("/jobs/:id/quotes", auth.RequireRole(auth.RoleContractor), h.SubmitQuote)
	router.GET("/quotes/mine", auth.RequireRole(auth.RoleContractor), h.ListMyQuotes)
	router.POST("/quotes/:id/accept", auth.RequireRole(auth.RoleHomeowner), h.AcceptQuote)
}

func (h *Handler) CreateJob(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), callerID, req)
	if err != nil {
		h.logger.Error("Failed to create job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job"})
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *Handler) ListOpenJobs(c *gin.Context) {
	var filter JobFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobs, err := h.service.ListOpenJobs(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list open jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list open jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) ListMyJobs(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	jobs, err := h.service.ListJobsByHomeowner(c.Request.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list homeowner jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, quotes, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.logger.Error("Failed to get job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job, "quotes": quotes})
}

func (h *Handler) CloseJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Status JobStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.service.CloseJob(c.Request.Context(), callerID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.Is(err, ErrNotJobOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Job belongs to another homeowner"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *Handler) SubmitQuote(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote, err := h.service.SubmitQuote(c.Request.Context(), callerID, jobID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.Is(err, ErrJobClosed):
			c.JSON(http.StatusConflict, gin.H{"error": "Job is not open for quotes"})
		case errors.Is(err, ErrOwnJob):
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot quote your own job"})
		default:
			h.logger.Error("Failed to submit quote", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit quote"})
		}
		return
	}

	c.JSON(http.StatusCreated, quote)
}

func (h *Handler) ListMyQuotes(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quotes, err := h.service.ListQuotesByContractor(c.Request.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to list contractor quotes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list quotes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes, "count": len(quotes)})
}

func (h *Handler) AcceptQuote(c *gin.Context) {
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
		return
	}

	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quote, err := h.service.AcceptQuote(c.Request.Context(), callerID, quoteID)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuoteNotFound), errors.Is(err, ErrJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
		case errors.Is(err, ErrNotJobOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "Job belongs to another homeowner"})
		case errors.Is(err, ErrQuoteSettled):
			c.JSON(http.StatusConflict, gin.H{"error": "Quote already accepted or declined"})
		default:
			h.logger.Error("Failed to accept quote", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept quote"})
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}
