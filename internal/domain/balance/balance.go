// Package balance defines the client credit balance that settlement funds.
package balance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Credit is a single funding entry on a client's balance, traceable back to
// the processor reference that produced it.
type Credit struct {
	ClientID    int64           `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Repository defines client balance persistence operations
type Repository interface {
	// AddFunds credits the client balance with the given entry.
	AddFunds(ctx context.Context, credit *Credit) error

	WithTx(tx pgx.Tx) Repository
}
