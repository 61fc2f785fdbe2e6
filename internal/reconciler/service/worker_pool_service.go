package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
)

// WorkerPoolReconciliationService implements the ReconciliationService interface
type WorkerPoolReconciliationService struct {
	baseService ReconciliationService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolReconciliationService(
	baseService ReconciliationService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolReconciliationService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolReconciliationService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Reconcile submits a reconciliation job to the worker pool.
func (s *WorkerPoolReconciliationService) Reconcile(ctx context.Context, job *notification.ReconciliationJob) error {
	logger := s.logger
	if job.CorrelationID != "" {
		logger = s.logger.With("correlation_id", job.CorrelationID)
	}

	logger.Info("Submitting reconciliation job to worker pool",
		"transaction_id", job.TransactionID.String(),
		"reference", job.Event.Reference,
	)

	// Each call waits on its own channel, so concurrent jobs for the same
	// transaction id cannot interfere with one another
	resultChan := make(chan error, 1)

	// Create a copy of the job to avoid data races
	jobCopy := *job

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.Reconcile(ctx, &jobCopy)
	})

	if err != nil {
		logger.Error("Failed to submit reconciliation job to worker pool",
			"transaction_id", job.TransactionID.String(),
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Verify delegates operator verification straight to the base service
func (s *WorkerPoolReconciliationService) Verify(ctx context.Context, transactionID uuid.UUID) error {
	return s.baseService.Verify(ctx, transactionID)
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolReconciliationService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolReconciliationService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolReconciliationService) Capacity() int {
	return s.pool.Cap()
}
