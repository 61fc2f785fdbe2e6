package handler

import (
	"time"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
)

// CreatePaymentRequest represents a request to initiate a payment for an invoice
type CreatePaymentRequest struct {
	InvoiceID int64  `json:"invoice_id" binding:"required,gt=0"`
	GatewayID *int64 `json:"gateway_id,omitempty"`
	Email     string `json:"email" binding:"required,email"`
}

// CheckoutResponse represents the parameters the storefront needs to open the
// processor's inline checkout
type CheckoutResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Reference     string                 `json:"reference"`
	PublicKey     string                 `json:"public_key"`
	AmountMinor   int64                  `json:"amount_minor"`
	Currency      string                 `json:"currency"`
	Email         string                 `json:"email"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	TxnStatus string `json:"txn_status,omitempty"`
	TxnID     string `json:"txn_id,omitempty"`
	Type      string `json:"type,omitempty"`
	InvoiceID *int64 `json:"invoice_id,omitempty"`
	GatewayID *int64 `json:"gateway_id,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// mapCheckoutToResponse maps a checkout session to its response DTO
func mapCheckoutToResponse(session *service.CheckoutSession) CheckoutResponse {
	return CheckoutResponse{
		TransactionID: session.TransactionID.String(),
		Reference:     session.Reference,
		PublicKey:     session.PublicKey,
		AmountMinor:   session.AmountMinor,
		Currency:      session.Currency,
		Email:         session.Email,
		Metadata:      session.Metadata,
	}
}

// mapTransactionToResponse maps a transaction entity to its response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        txn.ID.String(),
		Status:    string(txn.Status),
		TxnStatus: txn.TxnStatus,
		TxnID:     txn.TxnID,
		Type:      txn.Type,
		InvoiceID: txn.InvoiceID,
		GatewayID: txn.GatewayID,
		Currency:  txn.Currency,
		Error:     txn.Error,
		ErrorCode: txn.ErrorCode,
		CreatedAt: txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt: txn.UpdatedAt.Format(time.RFC3339),
	}
	if txn.Amount != nil {
		resp.Amount = txn.Amount.String()
	}
	return resp
}
