package app

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/config"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/profile"
)

func baseConfig() config.Config {
	return config.Config{
		ParsedBucket:      "haire-parsed",
		RawPrefix:         "raw_resume",
		ParsedPrefix:      "parsed_resume",
		PDFMode:           "image",
		PDFMaxPages:       5,
		PDFDPI:            300,
		PDFImageFormat:    "jpg",
		LLMMaxTokens:      8192,
		ImageBatchSize:    2,
		ImageBatchDelay:   time.Second,
		SanitizeZeroScope: config.ZeroScopeAll,
	}
}

func TestPipelineOptions(t *testing.T) {
	opts, err := PipelineOptions(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "haire-parsed", opts.ParsedBucket)
	assert.Equal(t, ingest.PDFModeImage, opts.PDFMode)
	assert.Equal(t, llm.ImageJPEG, opts.ImageFormat)
	assert.Equal(t, 300.0, opts.DPI)
	assert.Equal(t, int32(8192), opts.MaxOutputTokens)
	assert.Nil(t, opts.Sanitizer.ZeroSentinels)

	cfg := baseConfig()
	cfg.SanitizeZeroScope = config.ZeroScopeSentinel
	opts, err = PipelineOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, profile.NewScopedSanitizer(), opts.Sanitizer)

	cfg.PDFImageFormat = "gif"
	_, err = PipelineOptions(cfg)
	assert.Error(t, err)
}

func TestS3ConfigStaticKeys(t *testing.T) {
	base := aws.Config{Region: "ap-southeast-1"}

	out := S3Config(base, baseConfig())
	assert.Nil(t, out.Credentials)

	cfg := baseConfig()
	cfg.S3AccessKey = "AKID"
	cfg.S3SecretKey = "SECRET"
	out = S3Config(base, cfg)
	require.NotNil(t, out.Credentials)
	creds, err := out.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
	assert.Equal(t, "SECRET", creds.SecretAccessKey)
	assert.Nil(t, base.Credentials)
	assert.Equal(t, "ap-southeast-1", out.Region)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{"json info", "info", "json", false, true},
		{"text debug", "DEBUG", "text", true, false},
		{"bad level falls back", "loud", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level, tt.format)
			logger.Debug("debug line")
			logger.Info("info line")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			first, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
			assert.Equal(t, tt.wantJSON, json.Valid(first))
		})
	}
}
