package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
)

type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) Archive(ctx context.Context, n *notification.ArchivedNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockArchiveRepository) GetByReference(ctx context.Context, reference string, limit, offset int) ([]*notification.ArchivedNotification, error) {
	args := m.Called(ctx, reference, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.ArchivedNotification), args.Error(1)
}

func (m *MockArchiveRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewNotificationRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewNotificationRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &NotificationRepository{}, repo)
}

func TestNotificationRepository_Archive(t *testing.T) {
	archived := &notification.ArchivedNotification{
		Reference:      "ref-abc-123",
		Kind:           notification.KindChargeSuccess,
		SignatureValid: true,
		Payload:        []byte(`{"event":"charge.success"}`),
		CorrelationID:  "corr1",
		ReceivedAt:     time.Now(),
	}

	tests := []struct {
		name          string
		setupMocks    func(m *MockArchiveRepository)
		expectedError error
	}{
		{
			name: "successful archive",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Archive", mock.Anything, archived).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("Archive", mock.Anything, archived).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			err := mockRepo.Archive(ctx, archived)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestNotificationRepository_GetByReference(t *testing.T) {
	archived := []*notification.ArchivedNotification{
		{
			Reference:      "ref-abc-123",
			Kind:           notification.KindChargeSuccess,
			SignatureValid: true,
			ReceivedAt:     time.Now(),
		},
	}

	tests := []struct {
		name          string
		setupMocks    func(m *MockArchiveRepository)
		expected      []*notification.ArchivedNotification
		expectedError error
	}{
		{
			name: "deliveries found",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByReference", mock.Anything, "ref-abc-123", 10, 0).Return(archived, nil)
			},
			expected:      archived,
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func(m *MockArchiveRepository) {
				m.On("GetByReference", mock.Anything, "ref-abc-123", 10, 0).Return(nil, errors.New("db error"))
			},
			expected:      nil,
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockArchiveRepository{}
			tt.setupMocks(mockRepo)

			ctx := context.Background()
			result, err := mockRepo.GetByReference(ctx, "ref-abc-123", 10, 0)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
