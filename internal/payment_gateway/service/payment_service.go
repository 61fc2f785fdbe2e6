package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	txRepo      transaction.Repository
	invoiceRepo invoice.Repository
	cfg         *config.PaystackConfig
	logger      *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(logger *slog.Logger, txRepo transaction.Repository, invoiceRepo invoice.Repository, cfg *config.PaystackConfig) PaymentService {
	return &PaymentServiceImpl{
		txRepo:      txRepo,
		invoiceRepo: invoiceRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// InitiatePayment creates a transaction record for the invoice and returns the
// checkout parameters for the processor's inline widget. The transaction id
// doubles as the charge reference so the later notification can be tied back.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, invoiceID int64, gatewayID *int64, email string) (*CheckoutSession, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		s.logger.Error("Failed to load invoice for payment initiation",
			"invoice_id", invoiceID,
			"error", err,
		)
		return nil, err
	}

	txn := transaction.New(inv.ID, gatewayID)
	if err := s.txRepo.Create(ctx, txn); err != nil {
		s.logger.Error("Failed to create transaction record",
			"invoice_id", invoiceID,
			"error", err,
		)
		return nil, err
	}

	session := &CheckoutSession{
		TransactionID: txn.ID,
		Reference:     txn.ID.String(),
		PublicKey:     s.cfg.PublicKey(),
		AmountMinor:   grossAmountMinor(inv.Total, s.cfg.ChargePercent),
		Currency:      inv.Currency,
		Email:         email,
		Metadata: map[string]interface{}{
			notification.MetadataInvoiceID:     inv.ID,
			notification.MetadataTransactionID: txn.ID.String(),
		},
	}
	if gatewayID != nil {
		session.Metadata[notification.MetadataGatewayID] = *gatewayID
	}

	s.logger.Info("Payment initiated",
		"transaction_id", txn.ID.String(),
		"invoice_id", inv.ID,
		"amount_minor", session.AmountMinor,
		"currency", session.Currency,
	)
	return session, nil
}

// grossAmountMinor adds the gateway fee percentage to the invoice total and
// converts the result to minor currency units, rounding half up to the
// nearest unit.
func grossAmountMinor(total decimal.Decimal, chargePercent float64) int64 {
	fee := total.Mul(decimal.NewFromFloat(chargePercent)).Div(oneHundred)
	return total.Add(fee).Mul(oneHundred).Round(0).IntPart()
}
