// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the payment reconciliation system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/platform/persistence"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls. The returned repository will use the provided
// transaction for all database operations.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new transaction record in the database
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, status, txn_status, txn_id, type, invoice_id, gateway_id,
			amount, currency, note, output, error, error_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.Status,
		txn.TxnStatus,
		txn.TxnID,
		txn.Type,
		txn.InvoiceID,
		txn.GatewayID,
		txn.Amount,
		txn.Currency,
		txn.Note,
		txn.Output,
		txn.Error,
		txn.ErrorCode,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction", "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, status, txn_status, txn_id, type, invoice_id, gateway_id,
			amount, currency, note, output, error, error_code, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// GetByReference retrieves a transaction by the processor-side reference
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	query := `
		SELECT id, status, txn_status, txn_id, type, invoice_id, gateway_id,
			amount, currency, note, output, error, error_code, created_at, updated_at
		FROM transactions
		WHERE txn_id = $1
		ORDER BY created_at
		LIMIT 1
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrReferenceNotFound{Reference: reference}
		}
		r.logger.Error("Failed to get transaction by reference", "reference", reference, "error", err)
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}

	return txn, nil
}

// Update persists the current state of a transaction record
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, txn_status = $2, txn_id = $3, type = $4, invoice_id = $5,
			gateway_id = $6, amount = $7, currency = $8, note = $9, output = $10,
			error = $11, error_code = $12, updated_at = $13
		WHERE id = $14
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		txn.TxnStatus,
		txn.TxnID,
		txn.Type,
		txn.InvoiceID,
		txn.GatewayID,
		txn.Amount,
		txn.Currency,
		txn.Note,
		txn.Output,
		txn.Error,
		txn.ErrorCode,
		txn.UpdatedAt,
		txn.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: txn.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the transaction row and returns
// its current state. This should be used within a database transaction so that
// concurrent reconciliation of the same record is serialized.
func (r *TransactionRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT id, status, txn_status, txn_id, type, invoice_id, gateway_id,
			amount, currency, note, output, error, error_code, created_at, updated_at
		FROM transactions
		WHERE id = $1
		FOR UPDATE
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to lock transaction for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock transaction for update: %w", err)
	}

	return txn, nil
}

// CountMatching counts records matching the idempotency key fields of a
// delivered notification. A count above one is an audit signal for duplicate
// delivery of the same charge.
func (r *TransactionRepository) CountMatching(ctx context.Context, reference, txnStatus, txnType string, amount decimal.Decimal) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE txn_id = $1 AND txn_status = $2 AND type = $3 AND amount = $4
	`

	var count int
	err := r.querier.QueryRow(ctx, query, reference, txnStatus, txnType, amount).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count matching transactions", "reference", reference, "error", err)
		return 0, fmt.Errorf("failed to count matching transactions: %w", err)
	}

	return count, nil
}

// scanOne reads a full transaction row
func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.Status,
		&txn.TxnStatus,
		&txn.TxnID,
		&txn.Type,
		&txn.InvoiceID,
		&txn.GatewayID,
		&txn.Amount,
		&txn.Currency,
		&txn.Note,
		&txn.Output,
		&txn.Error,
		&txn.ErrorCode,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
