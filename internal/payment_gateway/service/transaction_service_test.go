package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, job *notification.ReconciliationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockReconciliationService) Verify(ctx context.Context, transactionID uuid.UUID) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func TestGetTransactionByID(t *testing.T) {
	txnID := uuid.New()

	t.Run("returns transaction", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockReconciliationService), testLogger())

		txn := transaction.New(42, nil)
		txn.ID = txnID
		txRepo.On("GetByID", mock.Anything, txnID).Return(txn, nil)

		got, err := svc.GetTransactionByID(context.Background(), txnID)
		require.NoError(t, err)
		assert.Equal(t, txn, got)
	})

	t.Run("returns nil when not found", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockReconciliationService), testLogger())

		txRepo.On("GetByID", mock.Anything, txnID).
			Return(nil, transaction.ErrTransactionNotFound{TransactionID: txnID})

		got, err := svc.GetTransactionByID(context.Background(), txnID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("propagates other errors", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockReconciliationService), testLogger())

		dbErr := errors.New("connection reset")
		txRepo.On("GetByID", mock.Anything, txnID).Return(nil, dbErr)

		_, err := svc.GetTransactionByID(context.Background(), txnID)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestVerifyTransaction(t *testing.T) {
	txnID := uuid.New()

	t.Run("delegates to reconciliation service", func(t *testing.T) {
		rec := new(MockReconciliationService)
		svc := NewTransactionService(new(MockTransactionRepository), rec, testLogger())

		rec.On("Verify", mock.Anything, txnID).Return(nil)

		assert.NoError(t, svc.VerifyTransaction(context.Background(), txnID))
		rec.AssertExpectations(t)
	})

	t.Run("propagates verification errors", func(t *testing.T) {
		rec := new(MockReconciliationService)
		svc := NewTransactionService(new(MockTransactionRepository), rec, testLogger())

		verifyErr := errors.New("gateway timeout")
		rec.On("Verify", mock.Anything, txnID).Return(verifyErr)

		assert.ErrorIs(t, svc.VerifyTransaction(context.Background(), txnID), verifyErr)
	})
}
