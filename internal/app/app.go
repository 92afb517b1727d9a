// Package app assembles the ingestion pipeline from configuration. Both the
// queue worker and the Lambda entry point start here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/config"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/pdfrender"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/profile"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/storage"
)

const appName = "resume-ingest"

// App owns the pipeline and the connections it was built on.
type App struct {
	Pipeline *ingest.Pipeline
	db       *sql.DB
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// NewLogger builds the process logger. format is "json" or "text"; unknown
// levels fall back to info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// New connects every client named by cfg and returns the assembled pipeline.
// extra notifiers receive status events next to any the record store adds.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...ingest.Notifier) (*App, error) {
	opts, err := PipelineOptions(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("error creating aws config: %w", err)
	}

	gen, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.GoogleAPIKey,
		AppName:  appName,
		AWS:      awsCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	a := &App{}
	notifiers := ingest.Notifiers(extra)
	var records ingest.RecordStore
	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		db, err := storage.OpenPostgres(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		a.db = db
		records = storage.NewPostgresStore(db)
		notifiers = append(notifiers, storage.NewPostgresStatus(db))
	default:
		records = storage.NewDynamoStore(awsCfg, cfg.DynamoDBTable)
	}

	deps := ingest.Dependencies{
		Blobs:     storage.NewS3Store(S3Config(awsCfg, cfg), cfg.S3Endpoint),
		Records:   records,
		Generator: gen,
		Renderer:  pdfrender.Fitz{},
		Logger:    logger,
	}
	if len(notifiers) > 0 {
		deps.Notifier = notifiers
	}
	a.Pipeline = ingest.NewPipeline(deps, opts)

	logger.Info("pipeline ready",
		slog.String("llm_provider", cfg.LLMProvider),
		slog.String("record_store", cfg.RecordStore),
		slog.String("pdf_mode", cfg.PDFMode),
		slog.Int("notifiers", len(notifiers)),
	)
	return a, nil
}

// S3Config returns the config used for the object store. Static keys, when
// configured, apply to it alone so that an S3-compatible store (R2, MinIO)
// can sit next to AWS-hosted Bedrock and DynamoDB.
func S3Config(base aws.Config, cfg config.Config) aws.Config {
	out := base.Copy()
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		out.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""))
	}
	return out
}

// PipelineOptions maps configuration onto pipeline options.
func PipelineOptions(cfg config.Config) (ingest.Options, error) {
	format, err := llm.ParseImageFormat(cfg.PDFImageFormat)
	if err != nil {
		return ingest.Options{}, err
	}
	sanitizer := profile.Sanitizer{}
	if cfg.SanitizeZeroScope == config.ZeroScopeSentinel {
		sanitizer = profile.NewScopedSanitizer()
	}
	return ingest.Options{
		ParsedBucket:    cfg.ParsedBucket,
		RawPrefix:       cfg.RawPrefix,
		ParsedPrefix:    cfg.ParsedPrefix,
		PDFMode:         ingest.PDFMode(cfg.PDFMode),
		MaxPages:        cfg.PDFMaxPages,
		DPI:             float64(cfg.PDFDPI),
		ImageFormat:     format,
		MaxOutputTokens: int32(cfg.LLMMaxTokens),
		ImageBatchSize:  cfg.ImageBatchSize,
		ImageBatchDelay: cfg.ImageBatchDelay,
		Sanitizer:       sanitizer,
	}, nil
}
