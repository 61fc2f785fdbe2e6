// Package notification decodes raw Paystack IPN payloads into typed events
// and carries them through the reconciliation queue.
package notification

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KindChargeSuccess is the only event kind that advances a transaction.
// All other kinds are acknowledged but not acted upon.
const KindChargeSuccess = "charge.success"

// Metadata keys the checkout flow embeds so a notification can be tied back
// to the local records it concerns.
const (
	MetadataInvoiceID     = "invoice_id"
	MetadataGatewayID     = "gateway_id"
	MetadataTransactionID = "transaction_id"
)

// Event is a typed inbound notification. Amount is in major currency units;
// the minor-unit conversion happens exactly once, at parse time.
type Event struct {
	Kind      string                 `json:"kind"`
	Reference string                 `json:"reference"`
	Amount    decimal.Decimal        `json:"amount"`
	Currency  string                 `json:"currency"`
	Status    string                 `json:"status"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsChargeSuccess reports whether the event is the processor's success event.
func (e *Event) IsChargeSuccess() bool {
	return e.Kind == KindChargeSuccess
}

// InvoiceID extracts the invoice identifier from the event metadata, if present.
func (e *Event) InvoiceID() (int64, bool) {
	return e.metadataInt64(MetadataInvoiceID)
}

// GatewayID extracts the gateway identifier from the event metadata, if present.
func (e *Event) GatewayID() (int64, bool) {
	return e.metadataInt64(MetadataGatewayID)
}

// TransactionID extracts the local transaction id from the event metadata,
// if present. It is the fallback when no record carries the event reference.
func (e *Event) TransactionID() (uuid.UUID, bool) {
	raw, ok := e.Metadata[MetadataTransactionID]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// metadataInt64 reads a numeric metadata value, tolerating the string and
// float64 representations JSON decoding produces.
func (e *Event) metadataInt64(key string) (int64, bool) {
	raw, ok := e.Metadata[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// ReconciliationJob is the queue message handed from the webhook endpoint to
// the reconciliation worker, keyed by transaction id so deliveries for the
// same record are consumed in order.
type ReconciliationJob struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Event         Event     `json:"event"`
	CorrelationID string    `json:"correlation_id"`
	ReceivedAt    time.Time `json:"received_at"`
}
