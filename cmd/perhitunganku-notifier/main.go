package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/cli"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
)

// perhitunganku-notifier runs the notification scheduler without the bot,
// for deployments that poll updates elsewhere.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting perhitunganku-notifier")

	cfg := cli.LoadAndValidateBotConfig(logger)
	if err := serve(logger, cfg); err != nil {
		logger.Error("Notifier stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

func serve(logger *log.Logger, cfg *config.Config) error {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to Telegram: %w", err)
	}

	res := cli.OpenBackend(context.Background(), logger, cfg)
	defer res.Close()

	if err := res.Store.EnsureUserTable(context.Background()); err != nil {
		return fmt.Errorf("ensure users table: %w", err)
	}

	notifier := cli.NewNotifier(cfg, res, api, logger)
	scheduler := notify.NewScheduler(notifier, cli.Schedule(cfg))

	ctx, done := cli.GracefulShutdown(context.Background(), logger, 30*time.Second, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Warn("Scheduler stop incomplete", log.FieldError, err)
		}
	})

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	for job, entry := range scheduler.Entries() {
		logger.Info("Job scheduled", log.FieldJob, job, "next", entry.Next.Format(time.RFC3339))
	}

	<-done
	return nil
}
