package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/app"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/config"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/httpapi"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/queue"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := app.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := queue.Dial(ctx, cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ. err: %v", err)
	}
	defer conn.Close()

	publisher, err := queue.NewStatusPublisher(conn, cfg.StatusExchange)
	if err != nil {
		log.Fatalf("failed to create status publisher: %v", err)
	}

	a, err := app.New(ctx, cfg, logger, publisher)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(a.Pipeline, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.Any("error", err))
			stop()
		}
	}()

	logger.Info("starting consumer worker pool",
		slog.Int("workers", cfg.WorkerCount),
		slog.String("queue", cfg.QueueName),
	)
	consumer := &queue.Consumer{
		URL:     cfg.RabbitMQURL,
		Queue:   cfg.QueueName,
		Workers: cfg.WorkerCount,
		Handler: a.Pipeline,
		Logger:  logger,
	}
	consumer.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}
