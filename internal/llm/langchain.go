package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// LangChain sends requests through a langchaingo model.
type LangChain struct {
	model llms.Model
}

func NewLangChain(ctx context.Context, apiKey, modelName string) (*LangChain, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init googleai client: %w", err)
	}
	return &LangChain{model: m}, nil
}

func (l *LangChain) Generate(ctx context.Context, req Request) (string, error) {
	parts := make([]llms.ContentPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			parts = append(parts, llms.BinaryPart(p.Format.MimeType(), p.Image))
			continue
		}
		parts = append(parts, llms.TextPart(p.Text))
	}

	var messages []llms.MessageContent
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.MessageContent{Role: llms.ChatMessageTypeHuman, Parts: parts})

	resp, err := l.model.GenerateContent(ctx, messages,
		llms.WithTemperature(float64(req.Temperature)),
		llms.WithMaxTokens(int(req.MaxOutputTokens)),
	)
	if err != nil {
		return "", fmt.Errorf("langchain generate: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
