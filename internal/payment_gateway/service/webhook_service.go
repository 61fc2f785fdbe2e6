package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/paystack-payment-reconciler/internal/domain/notification"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/platform/messaging/producers"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
)

// ErrInvalidSignature indicates a webhook delivery whose signature does not
// match the shared secret. The delivery is archived but never processed.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookServiceImpl authenticates, archives and enqueues inbound
// notifications. It never mutates transaction state itself; that is the
// reconciliation worker's job.
type WebhookServiceImpl struct {
	txRepo    transaction.Repository
	archive   notification.ArchiveRepository
	publisher producers.MessagePublisher
	cfg       *config.Config
	logger    *slog.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	txRepo transaction.Repository,
	archive notification.ArchiveRepository,
	publisher producers.MessagePublisher,
	cfg *config.Config,
	logger *slog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		txRepo:    txRepo,
		archive:   archive,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleNotification runs the inbound webhook pipeline: archive the raw
// delivery, check its signature, decode it, resolve the local transaction and
// enqueue a reconciliation job keyed by transaction id.
func (s *WebhookServiceImpl) HandleNotification(ctx context.Context, payload []byte, signature, correlationID string) error {
	log := s.logger.With(slog.String("correlation_id", correlationID))

	sigValid := paystack.ValidateSignature(payload, signature, s.cfg.Paystack.SecretKey())
	if !sigValid && s.cfg.SignatureCheckDisabled() {
		log.Warn("Signature check disabled, accepting unauthenticated notification")
		sigValid = true
	}

	event, parseErr := notification.Parse(payload)

	s.archiveDelivery(ctx, event, payload, sigValid, correlationID)

	if !sigValid {
		log.Warn("Rejected notification with invalid signature")
		return ErrInvalidSignature
	}
	if parseErr != nil {
		log.Warn("Rejected undecodable notification", slog.String("error", parseErr.Error()))
		return parseErr
	}

	log = log.With(slog.String("reference", event.Reference), slog.String("kind", event.Kind))

	if !event.IsChargeSuccess() {
		log.Info("Ignoring non-actionable notification kind")
		return nil
	}

	txn, err := s.resolveTransaction(ctx, event)
	if err != nil {
		return err
	}
	if txn == nil {
		log.Warn("Notification does not match any transaction, acknowledging")
		return nil
	}

	job := &notification.ReconciliationJob{
		TransactionID: txn.ID,
		Event:         *event,
		CorrelationID: correlationID,
		ReceivedAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, txn.ID.String(), job); err != nil {
		return fmt.Errorf("enqueueing reconciliation job for %s: %w", txn.ID, err)
	}

	log.Info("Enqueued reconciliation job", slog.String("transaction_id", txn.ID.String()))
	return nil
}

// archiveDelivery stores the raw payload for audit. Archiving is best-effort:
// a storage failure must not cause the processor to retry a delivery we can
// still act on.
func (s *WebhookServiceImpl) archiveDelivery(ctx context.Context, event *notification.Event, payload []byte, sigValid bool, correlationID string) {
	archived := &notification.ArchivedNotification{
		SignatureValid: sigValid,
		Payload:        payload,
		CorrelationID:  correlationID,
		ReceivedAt:     time.Now().UTC(),
	}
	if event != nil {
		archived.Reference = event.Reference
		archived.Kind = event.Kind
	}
	if err := s.archive.Archive(ctx, archived); err != nil {
		s.logger.Error("Failed to archive notification",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()))
	}
}

// resolveTransaction ties an event back to a local record: first by the
// processor reference, then by the transaction id embedded in the checkout
// metadata. A nil result means no record matched.
func (s *WebhookServiceImpl) resolveTransaction(ctx context.Context, event *notification.Event) (*transaction.Transaction, error) {
	txn, err := s.txRepo.GetByReference(ctx, event.Reference)
	if err == nil {
		return txn, nil
	}
	var notFound transaction.ErrReferenceNotFound
	if !errors.As(err, &notFound) {
		return nil, fmt.Errorf("resolving transaction for reference %s: %w", event.Reference, err)
	}

	id, ok := event.TransactionID()
	if !ok {
		return nil, nil
	}
	txn, err = s.txRepo.GetByID(ctx, id)
	if err == nil {
		return txn, nil
	}
	var idNotFound transaction.ErrTransactionNotFound
	if errors.As(err, &idNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("resolving transaction %s: %w", id, err)
}
