package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

// ReconciliationService drives a transaction through the reconciliation state
// machine, either from a queued notification or from an operator request.
type ReconciliationService interface {
	Reconcile(ctx context.Context, job *notification.ReconciliationJob) error
	Verify(ctx context.Context, transactionID uuid.UUID) error
}

// TransactionVerifier confirms a charge with the payment processor
type TransactionVerifier interface {
	Verify(ctx context.Context, reference string) (*paystack.Result, error)
}

// DuplicateDetector flags repeated deliveries of the same charge for audit.
// reportedStatus is the status the notification carried, not the stored one.
type DuplicateDetector interface {
	Check(ctx context.Context, txn *transaction.Transaction, reportedStatus string) error
}

// SettlementTrigger credits the client balance and settles the invoice once a
// charge is confirmed
type SettlementTrigger interface {
	Settle(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error
}
