package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *transaction.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountMatching(ctx context.Context, reference, txnStatus, txnType string, amount decimal.Decimal) (int, error) {
	args := m.Called(ctx, reference, txnStatus, txnType, amount)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return m
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) PayWithCredits(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) WithTx(tx pgx.Tx) invoice.Repository {
	return m
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func paystackTestConfig() *config.PaystackConfig {
	return &config.PaystackConfig{
		TestPublicKey: "pk_test_abc",
		TestSecretKey: "sk_test_abc",
		TestMode:      true,
		ChargePercent: 1.5,
	}
}

func TestInitiatePayment(t *testing.T) {
	inv := &invoice.Invoice{
		ID:       42,
		ClientID: 9,
		Serie:    "PS",
		Nr:       17,
		Currency: "NGN",
		Total:    decimal.NewFromInt(5000),
	}

	t.Run("creates transaction and returns checkout session", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		invRepo := new(MockInvoiceRepository)
		svc := NewPaymentService(testLogger(), txRepo, invRepo, paystackTestConfig())

		invRepo.On("GetByID", mock.Anything, int64(42)).Return(inv, nil)

		var created *transaction.Transaction
		txRepo.On("Create", mock.Anything, mock.AnythingOfType("*transaction.Transaction")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*transaction.Transaction)
			}).
			Return(nil)

		gatewayID := int64(7)
		session, err := svc.InitiatePayment(context.Background(), 42, &gatewayID, "client@example.com")
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, created.ID, session.TransactionID)
		assert.Equal(t, created.ID.String(), session.Reference)
		assert.Equal(t, "pk_test_abc", session.PublicKey)
		// 5000 + 1.5% fee = 5075.00 major units
		assert.Equal(t, int64(507500), session.AmountMinor)
		assert.Equal(t, "NGN", session.Currency)
		assert.Equal(t, "client@example.com", session.Email)
		assert.Equal(t, int64(42), session.Metadata[notification.MetadataInvoiceID])
		assert.Equal(t, int64(7), session.Metadata[notification.MetadataGatewayID])
		assert.Equal(t, created.ID.String(), session.Metadata[notification.MetadataTransactionID])

		require.NotNil(t, created.InvoiceID)
		assert.Equal(t, int64(42), *created.InvoiceID)
	})

	t.Run("omits gateway metadata when not supplied", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		invRepo := new(MockInvoiceRepository)
		svc := NewPaymentService(testLogger(), txRepo, invRepo, paystackTestConfig())

		invRepo.On("GetByID", mock.Anything, int64(42)).Return(inv, nil)
		txRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		session, err := svc.InitiatePayment(context.Background(), 42, nil, "client@example.com")
		require.NoError(t, err)
		_, present := session.Metadata[notification.MetadataGatewayID]
		assert.False(t, present)
	})

	t.Run("missing invoice", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		invRepo := new(MockInvoiceRepository)
		svc := NewPaymentService(testLogger(), txRepo, invRepo, paystackTestConfig())

		invRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, invoice.ErrInvoiceNotFound{InvoiceID: 99})

		_, err := svc.InitiatePayment(context.Background(), 99, nil, "client@example.com")
		var notFound invoice.ErrInvoiceNotFound
		assert.ErrorAs(t, err, &notFound)
		txRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create failure propagates", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		invRepo := new(MockInvoiceRepository)
		svc := NewPaymentService(testLogger(), txRepo, invRepo, paystackTestConfig())

		dbErr := errors.New("insert failed")
		invRepo.On("GetByID", mock.Anything, int64(42)).Return(inv, nil)
		txRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

		_, err := svc.InitiatePayment(context.Background(), 42, nil, "client@example.com")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestGrossAmountMinor(t *testing.T) {
	tests := []struct {
		name          string
		total         decimal.Decimal
		chargePercent float64
		want          int64
	}{
		{"no fee", decimal.NewFromInt(100), 0, 10000},
		{"whole fee", decimal.NewFromInt(100), 2, 10200},
		{"fractional fee rounds", decimal.RequireFromString("10.01"), 1.5, 1016},
		{"zero total", decimal.Zero, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, grossAmountMinor(tt.total, tt.chargePercent))
		})
	}
}
