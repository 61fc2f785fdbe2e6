package components

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/paystack-payment-reconciler/internal/domain/balance"
	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/reconciler/service"
)

// CreditTypePaystack labels balance entries funded by a confirmed charge
const CreditTypePaystack = "Paystack"

type SettlementTriggerImpl struct {
	invoiceRepo invoice.Repository
	balanceRepo balance.Repository
	autoProcess bool
	logger      *slog.Logger
}

func NewSettlementTrigger(
	invoiceRepo invoice.Repository,
	balanceRepo balance.Repository,
	autoProcess bool,
	logger *slog.Logger,
) service.SettlementTrigger {
	return &SettlementTriggerImpl{
		invoiceRepo: invoiceRepo,
		balanceRepo: balanceRepo,
		autoProcess: autoProcess,
		logger:      logger,
	}
}

// Settle credits the confirmed amount to the invoice owner's balance and pays
// the invoice from that balance. The whole side effect is gated on automatic
// processing: when the operator disabled it, no funds move at all. Runs inside
// the caller's database transaction.
func (t *SettlementTriggerImpl) Settle(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction) error {
	if !t.autoProcess {
		t.logger.Info("Automatic invoice processing disabled, skipping settlement",
			"transaction_id", txn.ID.String(),
			"reference", txn.TxnID,
		)
		return nil
	}

	if txn.InvoiceID == nil || txn.Amount == nil {
		t.logger.Warn("Confirmed transaction has no invoice linkage, skipping settlement",
			"transaction_id", txn.ID.String(),
			"reference", txn.TxnID,
		)
		return nil
	}

	invoices := t.invoiceRepo.WithTx(tx)
	balances := t.balanceRepo.WithTx(tx)

	inv, err := invoices.GetByID(ctx, *txn.InvoiceID)
	if err != nil {
		var notFound invoice.ErrInvoiceNotFound
		if errors.As(err, &notFound) {
			// The charge is real even if the invoice is gone; keep the funds
			// movement out of it and leave an audit trail.
			t.logger.Error("Invoice for confirmed transaction not found, skipping settlement",
				"transaction_id", txn.ID.String(),
				"invoice_id", *txn.InvoiceID,
			)
			return nil
		}
		return err
	}

	credit := &balance.Credit{
		ClientID:    inv.ClientID,
		Amount:      *txn.Amount,
		Description: inv.Title(),
		Type:        CreditTypePaystack,
		Reference:   txn.TxnID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := balances.AddFunds(ctx, credit); err != nil {
		return err
	}

	t.logger.Info("Credited client balance",
		"transaction_id", txn.ID.String(),
		"invoice_id", inv.ID,
		"client_id", inv.ClientID,
		"amount", txn.Amount.String(),
	)

	if err := invoices.PayWithCredits(ctx, inv.ID); err != nil {
		return err
	}

	t.logger.Info("Invoice settlement attempted",
		"transaction_id", txn.ID.String(),
		"invoice_id", inv.ID,
	)
	return nil
}
