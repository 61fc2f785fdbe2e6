package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/platform/messaging/producers"
	"github.com/paystack-payment-reconciler/internal/reconciler/service"
)

// NotificationJobHandler handles incoming reconciliation job messages from Kafka
type NotificationJobHandler struct {
	reconciliationService service.ReconciliationService
	producer              producers.DeadLetterPublisher
	logger                *slog.Logger
}

// NewNotificationJobHandler creates a new handler
func NewNotificationJobHandler(
	logger *slog.Logger,
	reconciliationService service.ReconciliationService,
	producer producers.DeadLetterPublisher,
) *NotificationJobHandler {
	return &NotificationJobHandler{
		reconciliationService: reconciliationService,
		producer:              producer,
		logger:                logger,
	}
}

// HandleMessage processes Kafka messages
func (h *NotificationJobHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var job notification.ReconciliationJob
	if err := json.Unmarshal(value, &job); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal reconciliation job from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if job.CorrelationID != "" {
		logger = h.logger.With("correlation_id", job.CorrelationID)
	}

	logger.Info("Received reconciliation job",
		"transaction_id", job.TransactionID.String(),
		"reference", job.Event.Reference,
		"kind", job.Event.Kind,
	)

	if err := h.reconciliationService.Reconcile(ctx, &job); err != nil {
		logger.Error("Failed to reconcile transaction",
			"transaction_id", job.TransactionID.String(),
			"reference", job.Event.Reference,
			"error", err,
		)
		return fmt.Errorf("reconciling transaction %s failed: %w", job.TransactionID.String(), err)
	}

	logger.Info("Successfully reconciled transaction", "transaction_id", job.TransactionID.String())
	return nil // Success, commit offset
}
