package notification

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMalformedPayload indicates a body that is not a decodable notification or
// is missing required fields. Callers must reject the request without touching
// any transaction state.
var ErrMalformedPayload = errors.New("malformed notification payload")

// minorUnitFactor converts processor-reported minor units (pesewas/kobo/cents)
// into major currency units.
var minorUnitFactor = decimal.NewFromInt(100)

// rawPayload mirrors the Paystack webhook body. Unknown fields are ignored.
type rawPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string                 `json:"reference"`
		Amount    json.Number            `json:"amount"`
		Currency  string                 `json:"currency"`
		Status    string                 `json:"status"`
		Metadata  map[string]interface{} `json:"metadata"`
	} `json:"data"`
}

// Parse decodes a raw webhook body into an Event. It is a pure function with
// no I/O. The processor reports amounts in minor units; they are divided by
// 100 here so every downstream component sees major units only.
func Parse(rawBody []byte) (*Event, error) {
	var payload rawPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.Event == "" {
		return nil, fmt.Errorf("%w: missing event kind", ErrMalformedPayload)
	}
	if payload.Data.Reference == "" {
		return nil, fmt.Errorf("%w: missing reference", ErrMalformedPayload)
	}

	amount := decimal.Zero
	if payload.Data.Amount != "" {
		minor, err := decimal.NewFromString(payload.Data.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid amount %q", ErrMalformedPayload, payload.Data.Amount)
		}
		amount = minor.Div(minorUnitFactor)
	}

	return &Event{
		Kind:      payload.Event,
		Reference: payload.Data.Reference,
		Amount:    amount,
		Currency:  payload.Data.Currency,
		Status:    payload.Data.Status,
		Metadata:  payload.Data.Metadata,
	}, nil
}
