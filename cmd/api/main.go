package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/document"
	"storefront/internal/handler"
	"storefront/internal/mail"
	"storefront/internal/monitor"
	"storefront/internal/otp"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Apply schema migrations
	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize OTP store backed by Redis
	otpStore, err := otp.NewRedisStore(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize otp store: %w", err)
	}
	defer otpStore.Close()

	// Initialize SMTP mailer
	mailer, err := mail.NewSMTPMailer(cfg.SMTP, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	// Initialize invoice archiver with S3, falling back to none
	var archiver document.Archiver
	if cfg.S3.Enabled {
		archiver, err = document.NewS3Archiver(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 archiver, invoice PDFs will not be stored")
			archiver = nil
		}
	} else {
		logger.Info().Msg("invoice PDF archiving disabled (S3 disabled)")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	invoiceRepo := repository.NewInvoiceRepository(pool, logger)

	// Initialize services
	userService := service.NewUserService(userRepo, cartRepo, otpStore, mailer, logger)
	productService := service.NewProductService(productRepo, inventoryRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, cartRepo, productRepo, inventoryRepo, logger)
	inventoryService := service.NewInventoryService(inventoryRepo, orderRepo, productRepo, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, userRepo, archiver, logger)

	// Start the periodic low-stock scan
	lowStockMonitor := monitor.New(inventoryService, cfg.Monitor.Threshold, cfg.Monitor.Interval, logger)
	go lowStockMonitor.Run(ctx)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		User:      handler.NewUserHandler(userService, logger),
		Product:   handler.NewProductHandler(productService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Order:     handler.NewOrderHandler(orderService, logger),
		Inventory: handler.NewInventoryHandler(inventoryService, cfg.Monitor.Threshold, logger),
		Invoice:   handler.NewInvoiceHandler(invoiceService, logger),
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router.New(cfg, handlers, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop background work before draining connections
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
