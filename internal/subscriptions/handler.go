package subscriptions

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
)

// SignatureHeader carries the provider's HMAC over the webhook body
const SignatureHeader = "X-Payment-Signature"

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublicRoutes wires the plan catalog and the provider webhook
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/subscriptions/plans", h.ListPlans)
	router.POST("/webhooks/payments", h.Webhook)
}

// RegisterRoutes wires the authenticated subscription routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/subscriptions/current", auth.RequireRole(auth.RoleContractor), h.CurrentPlan)
	router.POST("/subscriptions/checkout", auth.RequireRole(auth.RoleContractor), h.CreateCheckout)
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.service.Plans()})
}

func (h *Handler) CurrentPlan(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	plan, err := h.service.CurrentPlan(c.Request.Context(), callerID)
	if err != nil {
		h.logger.Error("Failed to get current plan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get current plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *Handler) CreateCheckout(c *gin.Context) {
	callerID, err := auth.CallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.service.CreateCheckout(c.Request.Context(), callerID, req.Tier)
	if err != nil {
		if errors.Is(err, ErrUnknownTier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown subscription tier"})
			return
		}
		h.logger.Error("Failed to create checkout", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout"})
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	if err := h.service.VerifySignature(payload, c.GetHeader(SignatureHeader)); err != nil {
		h.logger.Warn("Rejected webhook with bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), event); err != nil {
		if errors.Is(err, ErrUnknownEvent) || errors.Is(err, ErrUnknownTier) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to process payment webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
