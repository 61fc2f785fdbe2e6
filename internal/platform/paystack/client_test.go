package paystack

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestClient(endpoint string) *Client {
	return NewClient(newTestLogger(), &config.PaystackConfig{
		Endpoint:      endpoint,
		LiveSecretKey: "sk_live_secret",
		VerifyTimeout: 2 * time.Second,
	})
}

func TestClient_Verify_Confirmed(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","amount":500000}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Verify(context.Background(), "ref123")
	require.NoError(t, err)

	assert.Equal(t, "/verify/ref123", gotPath)
	assert.Equal(t, "Bearer sk_live_secret", gotAuth)
	assert.True(t, result.Confirmed)
	assert.Equal(t, "success", result.SettlementStatus)
	assert.Equal(t, "Verification successful", result.Message)
	assert.JSONEq(t, `{"status":"success","amount":500000}`, string(result.Detail))
}

func TestClient_Verify_NotConfirmedIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"declined"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Verify(context.Background(), "ref123")
	require.NoError(t, err, "a definitive not-confirmed outcome is not a transport failure")

	assert.False(t, result.Confirmed)
	assert.Equal(t, "declined", result.Message)
	assert.Empty(t, result.SettlementStatus)
}

func TestClient_Verify_NetworkError(t *testing.T) {
	t.Run("unreachable processor", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // Shut down before the call so the dial fails

		client := newTestClient(server.URL)
		result, err := client.Verify(context.Background(), "ref123")
		assert.Nil(t, result)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Equal(t, "ref123", netErr.Reference)
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Verify(context.Background(), "ref123")
		assert.Nil(t, result)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(newTestLogger(), &config.PaystackConfig{
			Endpoint:      server.URL,
			LiveSecretKey: "sk_live_secret",
			VerifyTimeout: 20 * time.Millisecond,
		})
		result, err := client.Verify(context.Background(), "ref123")
		assert.Nil(t, result)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
	})
}

func TestClient_Verify_ProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.Verify(context.Background(), "ref123")
	assert.Nil(t, result)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "ref123", protoErr.Reference)
}

func TestClient_UsesTestCredentialInTestMode(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"status":"success"}}`))
	}))
	defer server.Close()

	client := NewClient(newTestLogger(), &config.PaystackConfig{
		Endpoint:      server.URL,
		LiveSecretKey: "sk_live_secret",
		TestSecretKey: "sk_test_secret",
		TestMode:      true,
		VerifyTimeout: 2 * time.Second,
	})

	_, err := client.Verify(context.Background(), "ref123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
}
