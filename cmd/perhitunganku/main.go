package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/bot"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/cli"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/export"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/ratelimit"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/middleware/security"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/notify"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting perhitunganku")

	cfg := cli.LoadAndValidateBotConfig(logger)
	if err := serve(logger, cfg); err != nil {
		logger.Error("Bot stopped with error", log.FieldError, err)
		os.Exit(1)
	}
}

func serve(logger *log.Logger, cfg *config.Config) error {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("connect to Telegram: %w", err)
	}
	logger.Info("Authorized on Telegram", "bot", api.Self.UserName)

	res := cli.OpenBackend(context.Background(), logger, cfg)
	defer res.Close()

	// The event bus is optional: without it the bot only skips publishing.
	var publisher bot.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange)
		}
	}

	var (
		notifier  *notify.Service
		scheduler *notify.Scheduler
	)
	if cfg.NotificationsEnabled {
		if err := res.Store.EnsureUserTable(context.Background()); err != nil {
			logger.Warn("Users table check failed", log.FieldError, err)
		}
		notifier = cli.NewNotifier(cfg, res, api, logger)
		scheduler = notify.NewScheduler(notifier, cli.Schedule(cfg))
	}

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	defer limiter.Stop()

	loader := report.NewLoader(res.Store, logger.Logger)
	b := bot.New(bot.Deps{
		Store:          res.Store,
		Loader:         loader,
		Exporter:       export.New(loader),
		Sender:         api,
		Notifier:       notifier,
		Publisher:      publisher,
		Limiter:        limiter,
		Detector:       security.NewDetector(),
		Logger:         logger,
		Location:       cfg.Location(),
		Admins:         cfg.AdminUserIDs,
		PollTimeout:    cfg.PollTimeout,
		ReconnectDelay: cfg.ReconnectDelay,
	})

	base, stop := context.WithCancel(context.Background())
	ctx, done := cli.GracefulShutdown(base, logger, 30*time.Second, func(ctx context.Context) {
		if scheduler != nil {
			_ = scheduler.Stop(ctx)
		}
	})

	err = run(ctx, b, api, scheduler)
	stop()
	<-done
	return err
}

func run(ctx context.Context, b *bot.Bot, api *tgbotapi.BotAPI, scheduler *notify.Scheduler) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(ctx, api)
	})
	if scheduler != nil {
		g.Go(func() error {
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
