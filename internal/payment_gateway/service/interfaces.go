package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
)

// CheckoutSession carries everything the storefront needs to open the
// processor's inline checkout for an invoice.
type CheckoutSession struct {
	TransactionID uuid.UUID
	Reference     string
	PublicKey     string
	AmountMinor   int64
	Currency      string
	Email         string
	Metadata      map[string]interface{}
}

// PaymentService defines the interface for payment initiation
type PaymentService interface {
	// InitiatePayment creates a transaction record for the invoice and returns
	// the checkout parameters. The gateway fee is added on top of the invoice
	// total, and the amount is converted to minor units here, once.
	InitiatePayment(ctx context.Context, invoiceID int64, gatewayID *int64, email string) (*CheckoutSession, error)
}

// WebhookService defines the interface for inbound notification handling
type WebhookService interface {
	// HandleNotification archives, authenticates and enqueues a raw delivery.
	// Returns ErrInvalidSignature when authentication fails and a
	// notification.ErrMalformedPayload-wrapped error when the body cannot be
	// decoded; an unresolvable notification is acknowledged without error.
	HandleNotification(ctx context.Context, payload []byte, signature, correlationID string) error
}

// TransactionService defines the interface for transaction queries and
// operator-triggered verification
type TransactionService interface {
	// GetTransactionByID retrieves a transaction by its ID.
	// Returns nil if the transaction is not found
	GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*transaction.Transaction, error)

	// VerifyTransaction re-runs the verification pass for a transaction,
	// typically after a transport failure left it with an error recorded
	VerifyTransaction(ctx context.Context, transactionID uuid.UUID) error
}
