package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

// TransactionHandler handles HTTP requests for transaction queries and
// operator-triggered verification
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// GetByID retrieves a transaction by its ID, returning 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}
	if txn == nil {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// Verify re-runs the verification pass for a transaction. Transport failures
// against the processor surface as 502 so the caller knows to retry later.
func (h *TransactionHandler) Verify(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	if err := h.transactionService.VerifyTransaction(c.Request.Context(), id); err != nil {
		var txnNotFound transaction.ErrTransactionNotFound
		if errors.As(err, &txnNotFound) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		if errors.Is(err, transaction.ErrMissingReference) {
			RespondConflict(c, "Transaction has no processor reference yet")
			return
		}
		var netErr *paystack.NetworkError
		var protoErr *paystack.ProtocolError
		if errors.As(err, &netErr) || errors.As(err, &protoErr) {
			h.logger.Warn("Verification transport failure", "id", idParam, "error", err)
			RespondWithError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Could not reach the payment processor")
			return
		}
		h.logger.Error("Failed to verify transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil || txn == nil {
		RespondOK(c, gin.H{"verified": true})
		return
	}
	RespondOK(c, mapTransactionToResponse(txn))
}
