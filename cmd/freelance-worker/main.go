package main

import (
	"context"
	"errors"
	"os"
	"time"

	"freelance/internal/amqp"
	"freelance/internal/cli"
	"freelance/internal/log"
	"freelance/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting freelance-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	reminderWorker := worker.NewReminderWorker(repo, cfg.ReminderInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Change messages trigger an immediate reminder pass; without a
	// broker the worker still runs on its interval alone.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			err := amqpClient.ConsumeChanges(ctx, func(msg *amqp.ChangeMessage) error {
				return reminderWorker.HandleChangeMessage(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled, running on the reminder interval only")
	}

	go func() {
		if err := reminderWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Reminder worker stopped", "error", err)
			cancel()
		}
	}()

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		cancel()
	})
	<-done

	// Give in-flight reminder passes a moment to finish.
	time.Sleep(time.Second)
	logger.Info("Worker stopped gracefully")
}
