package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandleNotification(ctx context.Context, payload []byte, signature, correlationID string) error {
	args := m.Called(ctx, payload, signature, correlationID)
	return args.Error(0)
}

func TestWebhookHandler_Receive(t *testing.T) {
	logger := handlerTestLogger()
	body := []byte(`{"event": "charge.success", "data": {"reference": "ref-1"}}`)

	postWebhook := func(h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/webhooks/paystack", h.Receive)

		req, _ := http.NewRequest(http.MethodPost, "/webhooks/paystack", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		if signature != "" {
			req.Header.Set(paystack.SignatureHeader, signature)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Accepted delivery", func(t *testing.T) {
		mockService := new(MockWebhookService)
		handler := NewWebhookHandler(logger, mockService)

		mockService.On("HandleNotification", mock.Anything, body, "sig-abc", mock.Anything).Return(nil)

		rr := postWebhook(handler, body, "sig-abc")

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid signature", func(t *testing.T) {
		mockService := new(MockWebhookService)
		handler := NewWebhookHandler(logger, mockService)

		mockService.On("HandleNotification", mock.Anything, body, "bad-sig", mock.Anything).
			Return(service.ErrInvalidSignature)

		rr := postWebhook(handler, body, "bad-sig")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Malformed payload", func(t *testing.T) {
		mockService := new(MockWebhookService)
		handler := NewWebhookHandler(logger, mockService)

		malformed := []byte(`{"event":`)
		mockService.On("HandleNotification", mock.Anything, malformed, "sig-abc", mock.Anything).
			Return(fmt.Errorf("%w: unexpected end of JSON input", notification.ErrMalformedPayload))

		rr := postWebhook(handler, malformed, "sig-abc")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Internal failure triggers processor retry", func(t *testing.T) {
		mockService := new(MockWebhookService)
		handler := NewWebhookHandler(logger, mockService)

		mockService.On("HandleNotification", mock.Anything, body, "sig-abc", mock.Anything).
			Return(errors.New("kafka unavailable"))

		rr := postWebhook(handler, body, "sig-abc")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
