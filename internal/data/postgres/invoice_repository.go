package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/platform/persistence"
)

// InvoiceRepository implements the invoice.Repository interface for PostgreSQL
type InvoiceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewInvoiceRepository creates a new PostgreSQL invoice repository
func NewInvoiceRepository(logger *slog.Logger, db *persistence.PostgresDB) invoice.Repository {
	return &InvoiceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *InvoiceRepository) WithTx(tx pgx.Tx) invoice.Repository {
	return &InvoiceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves an invoice by its ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	query := `
		SELECT id, client_id, serie, nr, currency, total, paid, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`

	var inv invoice.Invoice
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.ClientID,
		&inv.Serie,
		&inv.Nr,
		&inv.Currency,
		&inv.Total,
		&inv.Paid,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrInvoiceNotFound{InvoiceID: id}
		}
		r.logger.Error("Failed to get invoice", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &inv, nil
}

// PayWithCredits settles the invoice from the client's credit balance. The
// invoice row is locked first so a concurrent settlement of the same invoice
// observes it already paid. When the balance does not cover the total the
// invoice is left unpaid, which is not an error. Must run inside a database
// transaction via WithTx.
func (r *InvoiceRepository) PayWithCredits(ctx context.Context, id int64) error {
	lockQuery := `
		SELECT id, client_id, currency, total, paid
		FROM invoices
		WHERE id = $1
		FOR UPDATE
	`

	var inv invoice.Invoice
	err := r.querier.QueryRow(ctx, lockQuery, id).Scan(
		&inv.ID,
		&inv.ClientID,
		&inv.Currency,
		&inv.Total,
		&inv.Paid,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invoice.ErrInvoiceNotFound{InvoiceID: id}
		}
		r.logger.Error("Failed to lock invoice for settlement", "id", id, "error", err)
		return fmt.Errorf("failed to lock invoice for settlement: %w", err)
	}

	if inv.Paid {
		r.logger.Debug("Invoice already paid, skipping settlement", "id", id)
		return nil
	}

	balanceQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM client_credits
		WHERE client_id = $1
	`

	var balance decimal.Decimal
	if err := r.querier.QueryRow(ctx, balanceQuery, inv.ClientID).Scan(&balance); err != nil {
		r.logger.Error("Failed to read client balance", "client_id", inv.ClientID, "error", err)
		return fmt.Errorf("failed to read client balance: %w", err)
	}

	if balance.LessThan(inv.Total) {
		r.logger.Info("Client balance does not cover invoice, leaving unpaid",
			"invoice_id", id,
			"client_id", inv.ClientID,
			"balance", balance.String(),
			"total", inv.Total.String(),
		)
		return nil
	}

	debitQuery := `
		INSERT INTO client_credits (client_id, amount, description, type, reference, created_at)
		VALUES ($1, $2, $3, 'invoice', $4, NOW())
	`

	description := fmt.Sprintf("Payment of invoice %d", id)
	if _, err := r.querier.Exec(ctx, debitQuery, inv.ClientID, inv.Total.Neg(), description, fmt.Sprintf("%d", id)); err != nil {
		r.logger.Error("Failed to debit client balance", "invoice_id", id, "error", err)
		return fmt.Errorf("failed to debit client balance: %w", err)
	}

	paidQuery := `
		UPDATE invoices
		SET paid = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.querier.Exec(ctx, paidQuery, id); err != nil {
		r.logger.Error("Failed to mark invoice paid", "invoice_id", id, "error", err)
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	return nil
}
