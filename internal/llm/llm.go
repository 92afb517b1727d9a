// Package llm wraps the text-generation backends the ingestion pipeline can
// talk to behind one request shape: a system prompt plus a single user turn
// made of text and image parts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

// MimeType returns the media type for f.
func (f ImageFormat) MimeType() string {
	if f == ImageJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// ParseImageFormat accepts png, jpeg and jpg.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return ImagePNG, nil
	case "jpeg", "jpg":
		return ImageJPEG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// Part is one piece of the user turn: either Text or an Image.
type Part struct {
	Text   string
	Image  []byte
	Format ImageFormat
}

func TextPart(text string) Part { return Part{Text: text} }

func ImagePart(data []byte, format ImageFormat) Part {
	return Part{Image: data, Format: format}
}

func (p Part) IsImage() bool { return p.Image != nil }

type Request struct {
	System          string
	Parts           []Part
	Temperature     float32
	MaxOutputTokens int32
}

// Generator produces the model's text reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

var ErrEmptyResponse = errors.New("llm: empty response")

// Provider names accepted by New.
const (
	ProviderBedrock   = "bedrock"
	ProviderGemini    = "gemini"
	ProviderAgent     = "adk"
	ProviderLangChain = "langchain"
)
