package components

import (
	"log/slog"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/paystack-payment-reconciler/internal/domain/balance"
	"github.com/paystack-payment-reconciler/internal/domain/invoice"
	"github.com/paystack-payment-reconciler/internal/domain/transaction"
	"github.com/paystack-payment-reconciler/internal/platform/persistence"
	"github.com/paystack-payment-reconciler/internal/reconciler/service"
)

// CreateReconciliationService creates a new ReconciliationService with all its dependencies.
func CreateReconciliationService(
	pgDB *persistence.PostgresDB,
	txRepo transaction.Repository,
	invoiceRepo invoice.Repository,
	balanceRepo balance.Repository,
	verifier service.TransactionVerifier,
	logger *slog.Logger,
	cfg *config.Config,
) service.ReconciliationService {
	duplicates := NewDuplicateDetector(txRepo, logger)
	settlement := NewSettlementTrigger(invoiceRepo, balanceRepo, cfg.Paystack.AutoProcessInvoice, logger)

	baseService := service.NewReconciliationService(
		pgDB,
		txRepo,
		verifier,
		duplicates,
		settlement,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolReconciliationService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool reconciliation service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
