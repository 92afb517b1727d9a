package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
)

type Config struct {
	Provider string
	Model    string
	APIKey   string
	AppName  string
	AWS      aws.Config
}

// New builds the Generator named by cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch cfg.Provider {
	case "", ProviderBedrock:
		return NewBedrock(cfg.AWS, cfg.Model), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case ProviderAgent:
		appName := cfg.AppName
		if appName == "" {
			appName = "resume-ingest"
		}
		return NewAgent(ctx, cfg.APIKey, cfg.Model, appName)
	case ProviderLangChain:
		return NewLangChain(ctx, cfg.APIKey, cfg.Model)
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}
