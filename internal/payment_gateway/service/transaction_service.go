package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	reconciler "github.com/paystack-payment-reconciler/internal/reconciler/service"
)

// TransactionServiceImpl implements TransactionService on top of the
// transaction store and the reconciliation service.
type TransactionServiceImpl struct {
	txRepo     transaction.Repository
	reconciler reconciler.ReconciliationService
	logger     *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo transaction.Repository,
	rec reconciler.ReconciliationService,
	logger *slog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		txRepo:     txRepo,
		reconciler: rec,
		logger:     logger,
	}
}

// GetTransactionByID retrieves a transaction by its ID.
// Returns nil if the transaction is not found
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*transaction.Transaction, error) {
	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		var notFound transaction.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// VerifyTransaction re-runs the verification pass for a transaction
func (s *TransactionServiceImpl) VerifyTransaction(ctx context.Context, transactionID uuid.UUID) error {
	s.logger.Info("Operator-triggered verification",
		slog.String("transaction_id", transactionID.String()))
	return s.reconciler.Verify(ctx, transactionID)
}
