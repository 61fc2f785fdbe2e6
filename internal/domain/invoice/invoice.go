// Package invoice defines the billing invoice a payment settles and its
// persistence contract. Reconciliation reads invoices to learn the paying
// client and the owed total; settlement pays them with credited funds.
package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is the business document a transaction pays for.
type Invoice struct {
	ID        int64           `json:"id"`
	ClientID  int64           `json:"client_id"`
	Serie     string          `json:"serie"`
	Nr        int64           `json:"nr"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Title renders the customer-facing payment title for the invoice.
func (i *Invoice) Title() string {
	return fmt.Sprintf("Payment for invoice %s%05d", i.Serie, i.Nr)
}
