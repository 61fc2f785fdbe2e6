package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/paystack-payment-reconciler/internal/config"
)

// NetworkError indicates the processor was unreachable or returned no body.
// The transaction state is preserved; the caller may retry out-of-band.
type NetworkError struct {
	Reference string
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("verification request for %s failed: %v", e.Reference, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError indicates the processor responded with a body that could not
// be parsed as a verification response.
type ProtocolError struct {
	Reference string
	Err       error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unparseable verification response for %s: %v", e.Reference, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Result is the outcome of a verification round-trip. Confirmed is the single
// source of truth for whether settlement succeeded; false is a definitive
// outcome, not a failure.
type Result struct {
	Confirmed        bool
	SettlementStatus string
	Message          string
	Detail           json.RawMessage
}

// verifyResponse mirrors the processor's verification payload
type verifyResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type verifyData struct {
	Status string `json:"status"`
}

// Client performs outbound calls to the Paystack transaction API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	secretKey  string
	logger     *slog.Logger
}

// NewClient creates a verification client. The credential is resolved once
// from the live/test pair according to the configured mode, and the HTTP
// client carries the configured timeout so a hung processor cannot stall a
// reconciliation worker indefinitely.
func NewClient(logger *slog.Logger, cfg *config.PaystackConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.VerifyTimeout},
		endpoint:   cfg.Endpoint,
		secretKey:  cfg.SecretKey(),
		logger:     logger,
	}
}

// Verify performs a single GET against the processor's verification endpoint
// for the given reference. There is no automatic retry: transport failures
// surface as *NetworkError and unparseable bodies as *ProtocolError, and the
// caller decides how to recover.
func (c *Client) Verify(ctx context.Context, reference string) (*Result, error) {
	url := fmt.Sprintf("%s/verify/%s", c.endpoint, reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Reference: reference, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Verification request failed", "reference", reference, "error", err)
		return nil, &NetworkError{Reference: reference, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("Failed to read verification response", "reference", reference, "error", err)
		return nil, &NetworkError{Reference: reference, Err: err}
	}
	if len(body) == 0 {
		c.logger.Error("Empty verification response", "reference", reference, "http_status", resp.StatusCode)
		return nil, &NetworkError{Reference: reference, Err: fmt.Errorf("empty response body (http %d)", resp.StatusCode)}
	}

	var payload verifyResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("Unparseable verification response", "reference", reference, "http_status", resp.StatusCode, "error", err)
		return nil, &ProtocolError{Reference: reference, Err: err}
	}

	result := &Result{
		Confirmed: payload.Status,
		Message:   payload.Message,
		Detail:    payload.Data,
	}
	if len(payload.Data) > 0 {
		var data verifyData
		// Missing or unexpected data detail is tolerated; Confirmed already
		// carries the authoritative outcome.
		if err := json.Unmarshal(payload.Data, &data); err == nil {
			result.SettlementStatus = data.Status
		}
	}

	c.logger.Debug("Verification response received",
		"reference", reference,
		"confirmed", result.Confirmed,
		"settlement_status", result.SettlementStatus,
	)
	return result, nil
}
