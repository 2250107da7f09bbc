// Package cli provides common CLI initialization utilities shared by the
// bot, notifier, worker and admin binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/backend"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

// SetupLogger initializes structured logging at level (LOG_LEVEL values)
// and sets it as the default logger.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAndValidateBotConfig is LoadAndValidateConfig for binaries that talk
// to Telegram and therefore need a bot token.
func LoadAndValidateBotConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.ValidateBot(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured store or exits the process.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// NewNotifier wires the notification service over an opened backend.
func NewNotifier(cfg *config.Config, res *backend.BackendResult, sender notify.Sender, logger *log.Logger) *notify.Service {
	return notify.New(notify.Deps{
		Users:             res.Store,
		Loader:            report.NewLoader(res.Store, logger.Logger),
		Sender:            sender,
		History:           res.History,
		Logger:            logger,
		Location:          cfg.Location(),
		AlertThreshold:    cfg.AlertThreshold,
		BroadcastInterval: cfg.BroadcastInterval,
	})
}

// Schedule maps the configured cron specs onto the notifier's jobs.
func Schedule(cfg *config.Config) notify.Schedule {
	s := notify.DefaultSchedule()
	s.Morning = cfg.MorningSchedule
	s.Lunch = cfg.LunchSchedule
	s.Evening = cfg.EveningSchedule
	s.Weekly = cfg.WeeklySchedule
	s.Monthly = cfg.MonthlySchedule
	s.Alerts = cfg.AlertSchedule
	return s
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals or when
// parent is done, and a channel closed once cleanup has run.
func GracefulShutdown(parent context.Context, logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
