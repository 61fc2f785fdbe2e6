package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
)

// PaymentHandler handles HTTP requests for payment initiation
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Create initiates a payment for an invoice and returns the checkout parameters
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.paymentService.InitiatePayment(c.Request.Context(), req.InvoiceID, req.GatewayID, req.Email)
	if err != nil {
		var invNotFound invoice.ErrInvoiceNotFound
		if errors.As(err, &invNotFound) {
			RespondNotFound(c, "Invoice not found")
			return
		}
		h.logger.Error("Failed to initiate payment", "invoice_id", req.InvoiceID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapCheckoutToResponse(session))
}
