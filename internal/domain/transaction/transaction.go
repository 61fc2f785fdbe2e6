// Package transaction defines the payment transaction record that the
// reconciliation state machine advances, together with its persistence
// contract. A record is created when a payment is initiated and is only ever
// filled in and moved forward afterwards; reconciliation never deletes one.
package transaction

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingReference = errors.New("transaction has no processor reference")
)

// Status defines the reconciliation states of a transaction. The zero value
// means the record has not been touched by a notification yet.
type Status string

const (
	StatusUnset     Status = ""
	StatusReceived  Status = "RECEIVED"
	StatusApproved  Status = "APPROVED"
	StatusProcessed Status = "PROCESSED"
)

// TxnStatusSuccess is the settlement outcome Paystack reports for a settled charge.
const TxnStatusSuccess = "success"

// TypePayment classifies a regular one-time payment.
const TypePayment = "payment"

// rank orders statuses so transitions can be kept forward-only
func (s Status) rank() int {
	switch s {
	case StatusReceived:
		return 1
	case StatusApproved:
		return 2
	case StatusProcessed:
		return 3
	default:
		return 0
	}
}

// Transaction is the unit of reconciliation. TxnID holds the processor-side
// reference; Status/TxnStatus together describe how far reconciliation got.
//
// Amount, InvoiceID and GatewayID use pointer types so "unset" is distinguishable
// from a zero value, which is what makes the fill-if-unset merge checkable.
type Transaction struct {
	ID        uuid.UUID        `json:"id"`
	Status    Status           `json:"status"`
	TxnStatus string           `json:"txn_status"`
	TxnID     string           `json:"txn_id"`
	Type      string           `json:"type"`
	InvoiceID *int64           `json:"invoice_id,omitempty"`
	GatewayID *int64           `json:"gateway_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Currency  string           `json:"currency"`
	Note      string           `json:"note"`
	Output    json.RawMessage  `json:"output,omitempty"`
	Error     string           `json:"error"`
	ErrorCode string           `json:"error_code"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// New creates a transaction record for an initiated payment. Only the linkage
// fields are set; everything else is filled by reconciliation later.
func New(invoiceID int64, gatewayID *int64) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		ID:        uuid.New(),
		InvoiceID: &invoiceID,
		GatewayID: gatewayID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EventFields carries the values a success notification may contribute to a
// transaction record.
type EventFields struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	InvoiceID *int64
	GatewayID *int64
	Type      string
}

// MergeEvent fills absent fields from the event. Fields that already hold a
// value are never overwritten, so a stale or adversarial redelivery cannot
// clobber data that was trusted earlier. Returns true if anything changed.
func (t *Transaction) MergeEvent(ev EventFields) bool {
	changed := false

	if t.Status == StatusUnset {
		t.Status = StatusReceived
		changed = true
	}
	if t.InvoiceID == nil && ev.InvoiceID != nil {
		id := *ev.InvoiceID
		t.InvoiceID = &id
		changed = true
	}
	if t.GatewayID == nil && ev.GatewayID != nil {
		id := *ev.GatewayID
		t.GatewayID = &id
		changed = true
	}
	if t.Amount == nil {
		amount := ev.Amount
		t.Amount = &amount
		changed = true
	}
	if t.Currency == "" && ev.Currency != "" {
		t.Currency = ev.Currency
		changed = true
	}
	if t.TxnID == "" && ev.Reference != "" {
		t.TxnID = ev.Reference
		changed = true
	}
	if t.Type == "" {
		if ev.Type != "" {
			t.Type = ev.Type
		} else {
			t.Type = TypePayment
		}
		changed = true
	}

	if changed {
		t.UpdatedAt = time.Now().UTC()
	}
	return changed
}

// MarkApproved records a confirmed verification outcome. Transitions are
// forward-only: an already processed transaction stays processed.
func (t *Transaction) MarkApproved(settlementStatus, note string, output json.RawMessage) {
	if t.Status.rank() < StatusApproved.rank() {
		t.Status = StatusApproved
	}
	t.TxnStatus = settlementStatus
	t.Note = note
	t.Output = output
	t.Error = ""
	t.ErrorCode = ""
	t.UpdatedAt = time.Now().UTC()
}

// MarkDeclined records a definitive "not confirmed" verification outcome,
// putting the record back to RECEIVED for a later retry.
func (t *Transaction) MarkDeclined(message string) {
	t.Status = StatusReceived
	t.TxnStatus = ""
	t.Error = message
	t.ErrorCode = ""
	t.UpdatedAt = time.Now().UTC()
}

// MarkProcessed completes a fully confirmed transaction and clears error state.
func (t *Transaction) MarkProcessed() {
	t.Status = StatusProcessed
	t.Error = ""
	t.ErrorCode = ""
	t.UpdatedAt = time.Now().UTC()
}

// RecordError notes a transient failure without moving the status, so the
// reconciliation can be retried out-of-band.
func (t *Transaction) RecordError(message, code string) {
	t.Error = message
	t.ErrorCode = code
	t.UpdatedAt = time.Now().UTC()
}

// FullyConfirmed reports whether verification has already succeeded for this
// record, which lets a redelivery short-circuit without another network call.
func (t *Transaction) FullyConfirmed() bool {
	return t.Status.rank() >= StatusApproved.rank() && t.TxnStatus == TxnStatusSuccess
}
