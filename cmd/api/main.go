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

	"github.com/pratik-mahalle/sitevoice/internal/api/handlers"
	"github.com/pratik-mahalle/sitevoice/internal/api/middleware"
	"github.com/pratik-mahalle/sitevoice/internal/api/router"
	"github.com/pratik-mahalle/sitevoice/internal/auth"
	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/logger"
	"github.com/pratik-mahalle/sitevoice/internal/pkg/validator"
	"github.com/pratik-mahalle/sitevoice/internal/providers"
	"github.com/pratik-mahalle/sitevoice/internal/repository/postgres"
	"github.com/pratik-mahalle/sitevoice/internal/services"
	"github.com/pratik-mahalle/sitevoice/internal/worker"
	"github.com/pratik-mahalle/sitevoice/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Configuration is not loaded yet, so log with defaults
		logger.New(logger.Config{Level: "info", Format: "json"}).FatalWithErr(err, "Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	logger.SetGlobal(log)

	// run returns instead of exiting so its deferred cleanup always runs
	if err := run(cfg, log); err != nil {
		log.FatalWithErr(err, "SiteVoice API stopped")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)

	// External providers
	verifier, err := auth.NewClerkVerifier(cfg.Auth, log)
	if err != nil {
		return fmt.Errorf("configure session verifier: %w", err)
	}
	defer verifier.Close()

	backend := providers.NewOpenAIBackend(cfg.Voice)
	if cfg.Voice.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; voice extraction will fail")
	}

	var archive voice.Archive
	if cfg.Archive.Enabled() {
		s3Archive, err := providers.NewS3Archive(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("configure audio archive: %w", err)
		}
		archive = s3Archive
	}

	gateway := providers.NewStripeGateway(cfg.Billing.SecretKey, nil)

	// Services
	val := validator.New()
	userService := services.NewUserService(userRepo, log)
	voiceService := services.NewVoiceService(backend, archive, val, cfg.Voice.HealthTimeout, log)
	billingService := services.NewBillingService(userService, eventRepo, gateway, cfg.Billing, log)
	identityService, err := services.NewIdentityService(userService, eventRepo, cfg.Auth.WebhookSecret, log)
	if err != nil {
		return fmt.Errorf("configure identity webhooks: %w", err)
	}

	// Workers
	pruner := worker.NewPruner(eventRepo, cfg.Pruner.Schedule, cfg.Pruner.Retention, log)
	if err := pruner.Start(ctx); err != nil {
		return fmt.Errorf("start event pruner: %w", err)
	}
	defer pruner.Stop()

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	go limiter.Run(ctx, 10*time.Minute)

	h := &router.Handlers{
		Health:   handlers.NewHealthHandler(db, log),
		Entry:    handlers.NewEntryHandler(cfg.Navigation),
		Voice:    handlers.NewVoiceHandler(voiceService, log, val, cfg.Voice.MaxAudioBytes),
		Profile:  handlers.NewProfileHandler(userService, log, val),
		Billing:  handlers.NewBillingHandler(billingService, userService, log, val),
		Identity: handlers.NewIdentityHandler(identityService, log),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.New(cfg, log, verifier, limiter, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
			"database":    cfg.Database.Driver,
		}).Info("SiteVoice API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
