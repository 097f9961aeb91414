package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"freelance/internal/amqp"
	"freelance/internal/cli"
	apphttp "freelance/internal/http"
	"freelance/internal/log"
	"freelance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentAPI)

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// The broker is optional: without it the API still serves, change
	// messages are simply not published.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, change messages disabled", "error", err)
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	}

	svc := services.NewEntityService(repo, amqpClient)
	srv := apphttp.NewServer(":"+cfg.Port, svc, repo, cfg.CacheTTL)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := svc.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	})

	logger.Info("Starting freelance API", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
