package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines transaction persistence operations
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetByReference(ctx context.Context, reference string) (*Transaction, error)
	Update(ctx context.Context, tx *Transaction) error

	// LockForUpdate acquires a row lock so reconciliation of a single
	// transaction id is serialized. Must run inside a database transaction.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// CountMatching counts records matching the idempotency key fields of a
	// delivered notification (reference, reported status, type and amount).
	CountMatching(ctx context.Context, reference, txnStatus, txnType string, amount decimal.Decimal) (int, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing transaction record
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// ErrReferenceNotFound indicates no record carries the processor reference
type ErrReferenceNotFound struct {
	Reference string
}

func (e ErrReferenceNotFound) Error() string {
	return "no transaction found for reference: " + e.Reference
}
