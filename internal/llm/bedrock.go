package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// DefaultBedrockModel is Claude 3.5 Sonnet on Bedrock.
const DefaultBedrockModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"

type converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Bedrock calls the Bedrock Converse API.
type Bedrock struct {
	client  converser
	modelID string
}

func NewBedrock(cfg aws.Config, modelID string) *Bedrock {
	if modelID == "" {
		modelID = DefaultBedrockModel
	}
	return &Bedrock{client: bedrockruntime.NewFromConfig(cfg), modelID: modelID}
}

func (b *Bedrock) Generate(ctx context.Context, req Request) (string, error) {
	content := make([]types.ContentBlock, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			content = append(content, &types.ContentBlockMemberImage{Value: types.ImageBlock{
				Format: bedrockImageFormat(p.Format),
				Source: &types.ImageSourceMemberBytes{Value: p.Image},
			}})
			continue
		}
		content = append(content, &types.ContentBlockMemberText{Value: p.Text})
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: content,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(req.Temperature),
			MaxTokens:   aws.Int32(req.MaxOutputTokens),
		},
	}
	if req.System != "" {
		in.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.System}}
	}

	out, err := b.client.Converse(ctx, in)
	if err != nil {
		return "", fmt.Errorf("bedrock converse: %w", err)
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("bedrock converse: unexpected output %T", out.Output)
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(t.Value)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func bedrockImageFormat(f ImageFormat) types.ImageFormat {
	if f == ImageJPEG {
		return types.ImageFormatJpeg
	}
	return types.ImageFormatPng
}
