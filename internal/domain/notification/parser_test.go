package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Success(t *testing.T) {
	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "ref123",
			"amount": 500000,
			"currency": "GHS",
			"status": "success",
			"metadata": {
				"invoice_id": 42,
				"gateway_id": "7",
				"transaction_id": "7b1c3f62-8f4e-4f7e-9c39-5a1d2b3c4d5e",
				"custom_fields": [{"display_name": "Invoice ID"}]
			}
		}
	}`)

	ev, err := Parse(body)
	require.NoError(t, err)

	assert.Equal(t, "charge.success", ev.Kind)
	assert.True(t, ev.IsChargeSuccess())
	assert.Equal(t, "ref123", ev.Reference)
	assert.Equal(t, "5000", ev.Amount.String(), "minor units must convert to major units at parse time")
	assert.Equal(t, "GHS", ev.Currency)
	assert.Equal(t, "success", ev.Status)

	invoiceID, ok := ev.InvoiceID()
	require.True(t, ok)
	assert.Equal(t, int64(42), invoiceID)

	gatewayID, ok := ev.GatewayID()
	require.True(t, ok, "string-typed metadata numbers must still resolve")
	assert.Equal(t, int64(7), gatewayID)

	txID, ok := ev.TransactionID()
	require.True(t, ok)
	assert.Equal(t, uuid.MustParse("7b1c3f62-8f4e-4f7e-9c39-5a1d2b3c4d5e"), txID)
}

func TestParse_MinorUnitConversion(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"r","amount":250000}}`)

	ev, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "2500", ev.Amount.String())
}

func TestParse_FractionalMinorUnits(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"r","amount":12345}}`)

	ev, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "123.45", ev.Amount.String())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"empty body", ``},
		{"missing event kind", `{"data":{"reference":"ref123","amount":100}}`},
		{"missing reference", `{"event":"charge.success","data":{"amount":100}}`},
		{"non numeric amount", `{"event":"charge.success","data":{"reference":"r","amount":"abc"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse([]byte(tt.body))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestParse_UnknownFieldsIgnored(t *testing.T) {
	body := []byte(`{"event":"charge.dispute.create","data":{"reference":"r","amount":100,"unexpected":{"a":1}},"extra":true}`)

	ev, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "charge.dispute.create", ev.Kind)
	assert.False(t, ev.IsChargeSuccess())
}

func TestEvent_MetadataFallbacks(t *testing.T) {
	ev := &Event{Metadata: map[string]interface{}{"invoice_id": "nope", "transaction_id": 12}}

	_, ok := ev.InvoiceID()
	assert.False(t, ok)

	_, ok = ev.GatewayID()
	assert.False(t, ok)

	_, ok = ev.TransactionID()
	assert.False(t, ok)
}
