package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"spendsnap/internal/config"
	"spendsnap/internal/events"
	"spendsnap/internal/logger"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Notifier error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required")
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := &notifier{log: logger.Named("notifier")}
	err = client.Consume(ctx, cfg.AMQPQueue, []string{
		events.TransactionCreated,
		events.BudgetExceeded,
		events.PasswordResetRequested,
	}, n.handle)
	if errors.Is(err, context.Canceled) {
		n.log.Info("notifier stopped")
		return nil
	}
	return err
}
