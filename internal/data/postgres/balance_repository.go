package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/paystack-payment-reconciler/internal/domain/balance"
	"github.com/paystack-payment-reconciler/internal/platform/persistence"
)

// BalanceRepository implements the balance.Repository interface for PostgreSQL
type BalanceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBalanceRepository creates a new PostgreSQL client balance repository
func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) balance.Repository {
	return &BalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *BalanceRepository) WithTx(tx pgx.Tx) balance.Repository {
	return &BalanceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// AddFunds credits the client balance with a funding entry
func (r *BalanceRepository) AddFunds(ctx context.Context, credit *balance.Credit) error {
	query := `
		INSERT INTO client_credits (client_id, amount, description, type, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		credit.ClientID,
		credit.Amount,
		credit.Description,
		credit.Type,
		credit.Reference,
		credit.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add funds to client balance", "client_id", credit.ClientID, "error", err)
		return fmt.Errorf("failed to add funds to client balance: %w", err)
	}

	return nil
}
