package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/middleware"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

// WebhookHandler handles inbound Paystack webhook deliveries
type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// Receive accepts a webhook delivery. A 200 tells the processor to stop
// retrying; anything else makes it redeliver, so only signature and decode
// failures are rejected.
func (h *WebhookHandler) Receive(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		RespondBadRequest(c, "Unreadable request body")
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	correlationID := middleware.GetCorrelationID(c)

	err = h.webhookService.HandleNotification(c.Request.Context(), payload, signature, correlationID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			RespondUnauthorized(c, "Invalid signature")
			return
		}
		if errors.Is(err, notification.ErrMalformedPayload) {
			RespondBadRequest(c, "Malformed notification payload")
			return
		}
		h.logger.Error("Failed to handle notification", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"received": true})
}
