package invoice

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Repository defines invoice persistence operations
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Invoice, error)

	// PayWithCredits marks the invoice paid from the client's credit balance.
	PayWithCredits(ctx context.Context, id int64) error

	WithTx(tx pgx.Tx) Repository
}

// ErrInvoiceNotFound indicates a missing invoice
type ErrInvoiceNotFound struct {
	InvoiceID int64
}

func (e ErrInvoiceNotFound) Error() string {
	return "invoice not found: " + strconv.FormatInt(e.InvoiceID, 10)
}
