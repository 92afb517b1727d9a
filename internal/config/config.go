// Package config loads worker settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/queue"
)

const (
	RecordStoreDynamo   = "dynamodb"
	RecordStorePostgres = "postgres"

	ZeroScopeAll      = "all"
	ZeroScopeSentinel = "sentinel"
)

type Config struct {
	AWSRegion   string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	ParsedBucket string
	RawPrefix    string
	ParsedPrefix string

	RecordStore   string
	DynamoDBTable string
	DBURL         string

	LLMProvider  string
	LLMModel     string
	GoogleAPIKey string
	LLMMaxTokens int

	PDFMode         string
	PDFMaxPages     int
	PDFDPI          int
	PDFImageFormat  string
	ImageBatchSize  int
	ImageBatchDelay time.Duration

	SanitizeZeroScope string

	RabbitMQURL    string
	QueueName      string
	StatusExchange string
	WorkerCount    int
	HTTPAddr       string
	CORSOrigins    []string

	LogLevel  string
	LogFormat string
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		AWSRegion:   getEnv("AWS_REGION", "ap-southeast-1"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),

		ParsedBucket: os.Getenv("PARSED_BUCKET"),
		RawPrefix:    getEnv("RAW_PREFIX", ingest.DefaultRawPrefix),
		ParsedPrefix: getEnv("PARSED_PREFIX", ingest.DefaultParsedPrefix),

		RecordStore:   strings.ToLower(getEnv("RECORD_STORE", RecordStoreDynamo)),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "haire-parsed-resume"),
		DBURL:         os.Getenv("DB_URL"),

		LLMProvider:  strings.ToLower(getEnv("LLM_PROVIDER", llm.ProviderBedrock)),
		LLMModel:     os.Getenv("LLM_MODEL"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		LLMMaxTokens: getEnvInt("LLM_MAX_TOKENS", ingest.DefaultMaxOutputTokens),

		PDFMode:         strings.ToLower(getEnv("PDF_MODE", string(ingest.PDFModeImage))),
		PDFMaxPages:     getEnvInt("PDF_MAX_PAGES", ingest.DefaultMaxPages),
		PDFDPI:          getEnvInt("PDF_DPI", ingest.DefaultDPI),
		PDFImageFormat:  getEnv("PDF_IMAGE_FORMAT", string(llm.ImagePNG)),
		ImageBatchSize:  getEnvInt("IMAGE_BATCH_SIZE", ingest.DefaultImageBatchSize),
		ImageBatchDelay: getEnvDuration("IMAGE_BATCH_DELAY", ingest.DefaultImageBatchDelay),

		SanitizeZeroScope: strings.ToLower(getEnv("SANITIZE_ZERO_SCOPE", ZeroScopeAll)),

		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		QueueName:      getEnv("QUEUE_NAME", queue.DefaultQueue),
		StatusExchange: getEnv("STATUS_EXCHANGE", queue.DefaultStatusExchange),
		WorkerCount:    getEnvInt("WORKER_COUNT", 1),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:    getEnvList("CORS_ALLOW_ORIGINS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate reports every setting that is missing or out of range.
func (c Config) Validate() error {
	var errs []error
	if c.ParsedBucket == "" {
		errs = append(errs, errors.New("empty PARSED_BUCKET in env"))
	}
	switch c.RecordStore {
	case RecordStoreDynamo:
		if c.DynamoDBTable == "" {
			errs = append(errs, errors.New("empty DYNAMODB_TABLE in env"))
		}
	case RecordStorePostgres:
		if c.DBURL == "" {
			errs = append(errs, errors.New("empty DB_URL in env"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RECORD_STORE %q", c.RecordStore))
	}
	switch c.LLMProvider {
	case llm.ProviderBedrock:
	case llm.ProviderGemini, llm.ProviderAgent, llm.ProviderLangChain:
		if c.GoogleAPIKey == "" {
			errs = append(errs, errors.New("empty GOOGLE_API_KEY in env"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.PDFMode != string(ingest.PDFModeImage) && c.PDFMode != string(ingest.PDFModeText) {
		errs = append(errs, fmt.Errorf("unknown PDF_MODE %q", c.PDFMode))
	}
	if _, err := llm.ParseImageFormat(c.PDFImageFormat); err != nil {
		errs = append(errs, fmt.Errorf("PDF_IMAGE_FORMAT: %w", err))
	}
	if c.SanitizeZeroScope != ZeroScopeAll && c.SanitizeZeroScope != ZeroScopeSentinel {
		errs = append(errs, fmt.Errorf("unknown SANITIZE_ZERO_SCOPE %q", c.SanitizeZeroScope))
	}
	for name, v := range map[string]int{
		"LLM_MAX_TOKENS":   c.LLMMaxTokens,
		"PDF_MAX_PAGES":    c.PDFMaxPages,
		"PDF_DPI":          c.PDFDPI,
		"IMAGE_BATCH_SIZE": c.ImageBatchSize,
		"WORKER_COUNT":     c.WorkerCount,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if c.ImageBatchDelay < 0 {
		errs = append(errs, fmt.Errorf("IMAGE_BATCH_DELAY must not be negative, got %s", c.ImageBatchDelay))
	}
	return errors.Join(errs...)
}

// ValidateWorker additionally requires the queue settings.
func (c Config) ValidateWorker() error {
	err := c.Validate()
	if c.RabbitMQURL == "" {
		err = errors.Join(err, errors.New("empty RABBITMQ_URL in env"))
	}
	return err
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvDuration accepts Go durations ("1500ms") or whole seconds ("2").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
