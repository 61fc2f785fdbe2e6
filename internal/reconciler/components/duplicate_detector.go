package components

import (
	"context"
	"log/slog"

	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/reconciler/service"
)

type DuplicateDetectorImpl struct {
	txRepo transaction.Repository
	logger *slog.Logger
}

func NewDuplicateDetector(txRepo transaction.Repository, logger *slog.Logger) service.DuplicateDetector {
	return &DuplicateDetectorImpl{
		txRepo: txRepo,
		logger: logger,
	}
}

// Check counts records sharing the delivery fingerprint (reference, the
// status the notification reported, type and amount) and logs when more than
// one matches. Row-level serialization is the actual defense against double
// processing; this is an audit signal.
func (d *DuplicateDetectorImpl) Check(ctx context.Context, txn *transaction.Transaction, reportedStatus string) error {
	if txn.TxnID == "" || txn.Amount == nil {
		return nil
	}

	count, err := d.txRepo.CountMatching(ctx, txn.TxnID, reportedStatus, txn.Type, *txn.Amount)
	if err != nil {
		return err
	}

	if count > 1 {
		d.logger.Warn("Multiple transactions match delivery fingerprint",
			"transaction_id", txn.ID.String(),
			"reference", txn.TxnID,
			"count", count,
		)
	}

	return nil
}
