package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverser struct {
	in  *bedrockruntime.ConverseInput
	out *bedrockruntime.ConverseOutput
	err error
}

func (f *fakeConverser) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.in = in
	return f.out, f.err
}

func textOutput(chunks ...string) *bedrockruntime.ConverseOutput {
	var content []types.ContentBlock
	for _, c := range chunks {
		content = append(content, &types.ContentBlockMemberText{Value: c})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: content,
		}},
	}
}

func TestBedrockGenerateBuildsConverseRequest(t *testing.T) {
	fake := &fakeConverser{out: textOutput(`{"profile":`, `{}}`)}
	b := &Bedrock{client: fake, modelID: DefaultBedrockModel}

	got, err := b.Generate(context.Background(), Request{
		System: "extract",
		Parts: []Part{
			TextPart("pages 1-2"),
			ImagePart([]byte{1, 2}, ImagePNG),
			ImagePart([]byte{3}, ImageJPEG),
		},
		Temperature:     0,
		MaxOutputTokens: 8192,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"profile":{}}`, got)

	in := fake.in
	require.NotNil(t, in)
	assert.Equal(t, DefaultBedrockModel, aws.ToString(in.ModelId))
	assert.Equal(t, float32(0), aws.ToFloat32(in.InferenceConfig.Temperature))
	assert.Equal(t, int32(8192), aws.ToInt32(in.InferenceConfig.MaxTokens))

	require.Len(t, in.System, 1)
	sys, ok := in.System[0].(*types.SystemContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "extract", sys.Value)

	require.Len(t, in.Messages, 1)
	content := in.Messages[0].Content
	require.Len(t, content, 3)
	assert.IsType(t, &types.ContentBlockMemberText{}, content[0])

	png, ok := content[1].(*types.ContentBlockMemberImage)
	require.True(t, ok)
	assert.Equal(t, types.ImageFormatPng, png.Value.Format)
	assert.Equal(t, []byte{1, 2}, png.Value.Source.(*types.ImageSourceMemberBytes).Value)

	jpeg, ok := content[2].(*types.ContentBlockMemberImage)
	require.True(t, ok)
	assert.Equal(t, types.ImageFormatJpeg, jpeg.Value.Format)
}

func TestBedrockGenerateErrors(t *testing.T) {
	boom := errors.New("throttled")
	b := &Bedrock{client: &fakeConverser{err: boom}, modelID: "m"}
	_, err := b.Generate(context.Background(), Request{Parts: []Part{TextPart("x")}})
	assert.ErrorIs(t, err, boom)

	b = &Bedrock{client: &fakeConverser{out: textOutput()}, modelID: "m"}
	_, err = b.Generate(context.Background(), Request{Parts: []Part{TextPart("x")}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestParseImageFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ImageFormat
		wantErr bool
	}{
		{"", ImagePNG, false},
		{"PNG", ImagePNG, false},
		{"jpg", ImageJPEG, false},
		{"jpeg", ImageJPEG, false},
		{"webp", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseImageFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.MimeType())
		})
	}
}
