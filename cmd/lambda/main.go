package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/app"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/config"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

type handler struct {
	pipeline *ingest.Pipeline
}

// handle processes one S3 event. It always succeeds; failed documents are
// logged and counted by the pipeline.
func (h handler) handle(ctx context.Context, event events.S3Event) (ingest.Response, error) {
	report := h.pipeline.Handle(ctx, ingest.NotificationsFromS3Event(event))
	return report.Response(), nil
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := app.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}
	defer a.Close()

	lambda.Start(handler{pipeline: a.Pipeline}.handle)
}
