package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/cli"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/config"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting perhitunganku-worker")

	cfg := cli.LoadAndValidateBotConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if err := serve(logger, cfg); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
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

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	notifier := cli.NewNotifier(cfg, res, api, logger)
	confirmations := worker.NewConfirmationWorker(notifier, true, logger)

	base, stop := context.WithCancel(context.Background())
	ctx, done := cli.GracefulShutdown(base, logger, 30*time.Second, nil)
	logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)

	err = client.ConsumeTransactionRecorded(ctx, confirmations.HandleTransactionRecorded)
	stop()
	<-done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
