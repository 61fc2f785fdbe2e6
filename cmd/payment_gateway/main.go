package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/paystack-payment-reconciler/internal/config"
	"github.com/paystack-payment-reconciler/internal/data/mongo"
	"github.com/paystack-payment-reconciler/internal/data/postgres"
	"github.com/paystack-payment-reconciler/internal/logger"
	"github.com/paystack-payment-reconciler/internal/payment_gateway"
	"github.com/paystack-payment-reconciler/internal/payment_gateway/service"
	"github.com/paystack-payment-reconciler/internal/platform/messaging/producers"
	"github.com/paystack-payment-reconciler/internal/platform/paystack"
	"github.com/paystack-payment-reconciler/internal/platform/persistence"
	"github.com/paystack-payment-reconciler/internal/reconciler/components"
	reconcilersvc "github.com/paystack-payment-reconciler/internal/reconciler/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("payment_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for the reconciliation queue
	jobProducer, err := producers.NewReconciliationJobProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize reconciliation job producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	invoiceRepo := postgres.NewInvoiceRepository(log, postgresDB)
	balanceRepo := postgres.NewBalanceRepository(log, postgresDB)
	archiveRepo := mongo.NewNotificationRepository(log, mongoDB.Database())

	// Operator-triggered verification runs inline, without a worker pool
	verifier := paystack.NewClient(log, &cfg.Paystack)
	duplicates := components.NewDuplicateDetector(transactionRepo, log)
	settlement := components.NewSettlementTrigger(invoiceRepo, balanceRepo, cfg.Paystack.AutoProcessInvoice, log)
	reconciliation := reconcilersvc.NewReconciliationService(
		postgresDB,
		transactionRepo,
		verifier,
		duplicates,
		settlement,
		log,
	)

	// Initialize services
	paymentService := service.NewPaymentService(log, transactionRepo, invoiceRepo, &cfg.Paystack)
	webhookService := service.NewWebhookService(transactionRepo, archiveRepo, jobProducer, cfg, log)
	transactionService := service.NewTransactionService(transactionRepo, reconciliation, log)

	// Initialize REST server
	server := payment_gateway.NewServer(log, cfg, paymentService, transactionService, webhookService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = jobProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
