package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/handler"
	"orderdesk/internal/model"
	"orderdesk/internal/promo"
	"orderdesk/internal/repository"
	"orderdesk/internal/router"
	"orderdesk/internal/service"

	"github.com/rs/zerolog"
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
	logger.Info().Msg("starting orderdesk API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool and schema
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	inquiryRepo := repository.NewInquiryRepository(pool, logger)
	staffRepo := repository.NewStaffRepository(pool, logger)

	validator, err := newPromoValidator(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo validator: %w", err)
	}
	if validator != nil {
		defer validator.Close()
	}

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(staffRepo, tokens, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, validator, service.Pricing{
		DeliveryCharge: cfg.Pricing.DeliveryCharge,
		PromoDiscount:  cfg.Promo.Discount,
	}, logger)
	productService := service.NewProductService(productRepo, logger)
	inquiryService := service.NewInquiryService(inquiryRepo, logger)

	err = authService.Bootstrap(ctx, []service.StaffAccount{
		{Username: cfg.Auth.AdminUsername, Password: cfg.Auth.AdminPassword, Role: model.RoleAdmin},
		{Username: cfg.Auth.CourierUsername, Password: cfg.Auth.CourierPassword, Role: model.RoleCourier},
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap staff accounts: %w", err)
	}

	policy, err := auth.NewPolicy(auth.DefaultRules)
	if err != nil {
		return fmt.Errorf("failed to build access policy: %w", err)
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Product: handler.NewProductHandler(productService, logger),
		Inquiry: handler.NewInquiryHandler(inquiryService, logger),
	}, authService, policy, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

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

// newPromoValidator loads the promo code lists, preferring S3 when it is
// enabled and falling back to the local copies. It returns nil when promos
// are disabled.
func newPromoValidator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (promo.Validator, error) {
	if !cfg.Promo.Enabled {
		logger.Info().Msg("promo codes disabled")
		return nil, nil
	}

	var primary promo.Loader
	if cfg.S3.Enabled {
		s3Loader, err := promo.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			primary = s3Loader
		}
	} else {
		logger.Info().Msg("using local file system for promo files (S3 disabled)")
	}

	loader := promo.NewFallbackLoader(primary, promo.NewFileLoader(logger), cfg.S3.Prefix, logger)

	return promo.NewValidator(ctx, promo.ValidatorConfig{
		Files:         cfg.Promo.Files,
		MinMatchCount: cfg.Promo.MinMatchCount,
	}, loader, logger)
}
