package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

// Error codes recorded on a transaction when verification cannot complete
const (
	ErrCodeNetwork  = "VERIFY_NETWORK"
	ErrCodeProtocol = "VERIFY_PROTOCOL"
)

// TxExecutor runs a function inside a database transaction.
// *persistence.PostgresDB satisfies it.
type TxExecutor interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type ReconciliationServiceImpl struct {
	db         TxExecutor
	txRepo     transaction.Repository
	verifier   TransactionVerifier
	duplicates DuplicateDetector
	settlement SettlementTrigger
	logger     *slog.Logger
}

func NewReconciliationService(
	db TxExecutor,
	txRepo transaction.Repository,
	verifier TransactionVerifier,
	duplicates DuplicateDetector,
	settlement SettlementTrigger,
	logger *slog.Logger,
) ReconciliationService {
	return &ReconciliationServiceImpl{
		db:         db,
		txRepo:     txRepo,
		verifier:   verifier,
		duplicates: duplicates,
		settlement: settlement,
		logger:     logger,
	}
}

// Reconcile advances a transaction from a queued notification. The merge is
// committed before the processor is contacted so no row lock is ever held
// across a network call; the verification outcome is then applied in a second
// locked pass.
func (s *ReconciliationServiceImpl) Reconcile(ctx context.Context, job *notification.ReconciliationJob) error {
	logger := s.logger
	if job.CorrelationID != "" {
		logger = s.logger.With("correlation_id", job.CorrelationID)
	}

	logger.Info("Reconciling transaction",
		"transaction_id", job.TransactionID.String(),
		"reference", job.Event.Reference,
	)

	proceed, reference, err := s.mergeEvent(ctx, logger, job)
	if err != nil {
		var notFound transaction.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			// The record cannot appear through redelivery, acknowledge
			logger.Error("No transaction record for queued notification",
				"transaction_id", job.TransactionID.String(),
				"reference", job.Event.Reference,
			)
			return nil
		}
		return err
	}
	if !proceed {
		return nil
	}

	return s.verifyAndApply(ctx, logger, job.TransactionID, reference)
}

// Verify runs a verification pass outside the notification flow, typically an
// operator retrying after a transport failure.
func (s *ReconciliationServiceImpl) Verify(ctx context.Context, transactionID uuid.UUID) error {
	logger := s.logger.With("transaction_id", transactionID.String())

	txn, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if txn.FullyConfirmed() {
		return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			return s.fastConfirm(ctx, logger, tx, transactionID)
		})
	}

	if txn.TxnID == "" {
		return transaction.ErrMissingReference
	}

	return s.verifyAndApply(ctx, logger, transactionID, txn.TxnID)
}

// mergeEvent folds the event into the record under a row lock. The
// fast-confirm check runs before anything else, event kind included, so a
// redelivery of any kind can still advance an already confirmed record.
// proceed=true means the merge happened and verification should follow.
func (s *ReconciliationServiceImpl) mergeEvent(ctx context.Context, logger *slog.Logger, job *notification.ReconciliationJob) (bool, string, error) {
	var proceed bool
	var reference string

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.txRepo.WithTx(tx)

		txn, err := repo.LockForUpdate(ctx, job.TransactionID)
		if err != nil {
			return err
		}

		if txn.FullyConfirmed() {
			logger.Info("Transaction already confirmed, no verification needed",
				"transaction_id", job.TransactionID.String(),
			)
			return s.fastConfirm(ctx, logger, tx, job.TransactionID)
		}

		if !job.Event.IsChargeSuccess() {
			logger.Info("Ignoring notification of non-actionable kind",
				"kind", job.Event.Kind,
				"reference", job.Event.Reference,
			)
			return nil
		}

		invoiceID, hasInvoice := job.Event.InvoiceID()
		gatewayID, hasGateway := job.Event.GatewayID()
		fields := transaction.EventFields{
			Reference: job.Event.Reference,
			Amount:    job.Event.Amount,
			Currency:  job.Event.Currency,
			Type:      transaction.TypePayment,
		}
		if hasInvoice {
			fields.InvoiceID = &invoiceID
		}
		if hasGateway {
			fields.GatewayID = &gatewayID
		}

		if txn.MergeEvent(fields) {
			if err := repo.Update(ctx, txn); err != nil {
				return err
			}
		}
		proceed = true
		reference = txn.TxnID

		// Audit signal only, a duplicate never blocks reconciliation
		if err := s.duplicates.Check(ctx, txn, job.Event.Status); err != nil {
			logger.Warn("Duplicate check failed",
				"transaction_id", txn.ID.String(),
				"error", err,
			)
		}

		return nil
	})

	return proceed, reference, err
}

// verifyAndApply confirms the charge with the processor and applies the
// outcome under a fresh row lock. The record is re-read after the network
// call, so a concurrent pass that confirmed the same charge first makes the
// settlement a no-op here.
func (s *ReconciliationServiceImpl) verifyAndApply(ctx context.Context, logger *slog.Logger, transactionID uuid.UUID, reference string) error {
	result, verifyErr := s.verifier.Verify(ctx, reference)
	if verifyErr != nil {
		code := ErrCodeNetwork
		var protoErr *paystack.ProtocolError
		if errors.As(verifyErr, &protoErr) {
			code = ErrCodeProtocol
		}

		logger.Error("Verification failed",
			"transaction_id", transactionID.String(),
			"reference", reference,
			"error_code", code,
			"error", verifyErr,
		)

		if recordErr := s.recordVerifyFailure(ctx, transactionID, verifyErr.Error(), code); recordErr != nil {
			logger.Error("Failed to record verification failure",
				"transaction_id", transactionID.String(),
				"error", recordErr,
			)
		}

		// Propagate so the message is redelivered
		return fmt.Errorf("verification of %s failed: %w", reference, verifyErr)
	}

	var confirmed *transaction.Transaction

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.txRepo.WithTx(tx)

		txn, err := repo.LockForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}

		if !result.Confirmed {
			// A definitive decline, not an error. The record returns to
			// RECEIVED so a later redelivery can try again.
			logger.Info("Charge not confirmed by processor",
				"transaction_id", transactionID.String(),
				"reference", reference,
				"message", result.Message,
			)
			txn.MarkDeclined(result.Message)
			return repo.Update(ctx, txn)
		}

		alreadyConfirmed := txn.FullyConfirmed()
		txn.MarkApproved(result.SettlementStatus, result.Message, result.Detail)

		if txn.FullyConfirmed() {
			if !alreadyConfirmed {
				confirmed = txn
			}
			txn.MarkProcessed()
		}

		if err := repo.Update(ctx, txn); err != nil {
			return err
		}

		logger.Info("Reconciliation pass complete",
			"transaction_id", transactionID.String(),
			"reference", reference,
			"status", string(txn.Status),
			"txn_status", txn.TxnStatus,
		)
		return nil
	})
	if err != nil {
		return err
	}

	// Settlement runs after the approval is committed. A crediting failure is
	// logged, never returned: the approval stands regardless.
	if confirmed != nil {
		if settleErr := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			return s.settlement.Settle(ctx, tx, confirmed)
		}); settleErr != nil {
			logger.Error("Settlement failed after committed approval",
				"transaction_id", transactionID.String(),
				"reference", reference,
				"error", settleErr,
			)
		}
	}

	return nil
}

// fastConfirm advances an already confirmed record to its terminal state
// without another processor round-trip. Caller must hold the row lock.
func (s *ReconciliationServiceImpl) fastConfirm(ctx context.Context, logger *slog.Logger, tx pgx.Tx, transactionID uuid.UUID) error {
	repo := s.txRepo.WithTx(tx)

	txn, err := repo.LockForUpdate(ctx, transactionID)
	if err != nil {
		return err
	}
	if !txn.FullyConfirmed() || txn.Status == transaction.StatusProcessed {
		return nil
	}

	txn.MarkProcessed()
	if err := repo.Update(ctx, txn); err != nil {
		return err
	}

	logger.Info("Fast-confirmed transaction", "transaction_id", transactionID.String())
	return nil
}

// recordVerifyFailure notes a transport failure on the record without moving
// its status, best effort
func (s *ReconciliationServiceImpl) recordVerifyFailure(ctx context.Context, transactionID uuid.UUID, message, code string) error {
	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := s.txRepo.WithTx(tx)

		txn, err := repo.LockForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}

		txn.RecordError(message, code)
		return repo.Update(ctx, txn)
	})
}
