package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/metrics"
)

const (
	DefaultMaxOutputTokens = 8192
	DefaultImageBatchSize  = 2
	DefaultImageBatchDelay = time.Second
)

// Interpreter asks a Generator to turn extracted content into profile JSON.
type Interpreter struct {
	Generator       llm.Generator
	MaxOutputTokens int32
	ImageBatchSize  int
	// ImageBatchDelay is the minimum spacing between transcription requests.
	ImageBatchDelay time.Duration
	Logger          *slog.Logger
}

// Interpretation is the decoded model output plus the raw reply it came from.
type Interpretation struct {
	Value document.Value
	Raw   string
}

func (in *Interpreter) maxTokens() int32 {
	if in.MaxOutputTokens > 0 {
		return in.MaxOutputTokens
	}
	return DefaultMaxOutputTokens
}

func (in *Interpreter) batchSize() int {
	if in.ImageBatchSize > 0 {
		return in.ImageBatchSize
	}
	return DefaultImageBatchSize
}

func (in *Interpreter) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

// Interpret runs the text path, first transcribing page images when c has
// no text. Shape is not checked here.
func (in *Interpreter) Interpret(ctx context.Context, c Content) (Interpretation, error) {
	text := c.Text
	if len(c.Pages) > 0 {
		var err error
		text, err = in.transcribe(ctx, c.Pages)
		if err != nil {
			return Interpretation{}, err
		}
	}

	label := "Resume Raw Json Data"
	if c.Kind != KindJSON {
		label = "Resume Raw Text"
	}
	raw, err := in.generate(ctx, extractionPrompt(), llm.TextPart(fmt.Sprintf("%s:\n%s", label, text)))
	if err != nil {
		return Interpretation{}, err
	}

	v, err := ParseModelOutput(raw)
	if err != nil {
		return Interpretation{Raw: raw}, err
	}
	return Interpretation{Value: v, Raw: raw}, nil
}

// transcribe sends pages in batches, in page order, and joins the replies.
func (in *Interpreter) transcribe(ctx context.Context, pages []PageImage) (string, error) {
	limit := rate.Inf
	if in.ImageBatchDelay > 0 {
		limit = rate.Every(in.ImageBatchDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	size := in.batchSize()
	chunks := make([]string, 0, (len(pages)+size-1)/size)
	for start := 0; start < len(pages); start += size {
		if err := limiter.Wait(ctx); err != nil {
			return "", err
		}
		batch := pages[start:min(start+size, len(pages))]
		first, last := batch[0].Page, batch[len(batch)-1].Page

		parts := make([]llm.Part, 0, len(batch)+1)
		parts = append(parts, llm.TextPart(fmt.Sprintf("Resume pages %d-%d:", first, last)))
		for _, p := range batch {
			parts = append(parts, llm.ImagePart(p.Data, p.Format))
		}

		text, err := in.generate(ctx, transcriptionPrompt(), parts...)
		if err != nil {
			return "", fmt.Errorf("pages %d-%d: %w", first, last, err)
		}
		in.logger().Debug("transcribed resume pages", slog.Int("first_page", first), slog.Int("last_page", last))
		chunks = append(chunks, strings.TrimSpace(text))
	}
	return strings.Join(chunks, "\n\n"), nil
}

func (in *Interpreter) generate(ctx context.Context, system string, parts ...llm.Part) (string, error) {
	if in.Generator == nil {
		return "", errors.New("no generator configured")
	}
	metrics.IncrLLMCalls()
	out, err := in.Generator.Generate(ctx, llm.Request{
		System:          system,
		Parts:           parts,
		Temperature:     0,
		MaxOutputTokens: in.maxTokens(),
	})
	if err != nil {
		metrics.IncrLLMErrors()
		return "", err
	}
	return out, nil
}

// ParseModelOutput strips markdown code fences and decodes exactly one JSON
// value from what is left.
func ParseModelOutput(raw string) (document.Value, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInterpretation)
	}
	v, err := document.Decode([]byte(cleaned))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInterpretation, err)
	}
	return v, nil
}

// CleanJSON removes a surrounding ``` or ```json fence.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
