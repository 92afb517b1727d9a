package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentUserID = "resume-ingest"

// Agent runs requests through an ADK llm agent backed by Gemini. One agent
// and runner is kept per distinct system prompt; each call gets its own
// in-memory session which is deleted afterwards.
type Agent struct {
	appName  string
	model    model.LLM
	sessions session.Service

	mu      sync.Mutex
	runners map[string]*runner.Runner
}

func NewAgent(ctx context.Context, apiKey, modelName, appName string) (*Agent, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	m, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}
	return &Agent{
		appName:  appName,
		model:    m,
		sessions: session.InMemoryService(),
		runners:  make(map[string]*runner.Runner),
	}, nil
}

// runnerFor returns the runner whose agent carries system as its instruction.
// The instruction must not contain {identifier} placeholders, which ADK would
// try to resolve from session state.
func (a *Agent) runnerFor(req Request) (*runner.Runner, error) {
	key := fmt.Sprintf("%s\x00%g\x00%d", req.System, req.Temperature, req.MaxOutputTokens)

	a.mu.Lock()
	defer a.mu.Unlock()
	if r, ok := a.runners[key]; ok {
		return r, nil
	}

	resumeAgent, err := llmagent.New(llmagent.Config{
		Name:        fmt.Sprintf("resume_agent_%d", len(a.runners)+1),
		Model:       a.model,
		Description: "Extract structured resume data",
		Instruction: req.System,
		GenerateContentConfig: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(req.Temperature),
			MaxOutputTokens: req.MaxOutputTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}
	r, err := runner.New(runner.Config{
		AppName:        a.appName,
		Agent:          resumeAgent,
		SessionService: a.sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	a.runners[key] = r
	return r, nil
}

func (a *Agent) Generate(ctx context.Context, req Request) (string, error) {
	r, err := a.runnerFor(req)
	if err != nil {
		return "", err
	}

	created, err := a.sessions.Create(ctx, &session.CreateRequest{
		AppName:   a.appName,
		UserID:    agentUserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer func() {
		_ = a.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
			AppName:   created.Session.AppName(),
			UserID:    created.Session.UserID(),
			SessionID: created.Session.ID(),
		})
	}()

	stream := r.Run(ctx, created.Session.UserID(), created.Session.ID(), &genai.Content{
		Role:  genai.RoleUser,
		Parts: genaiParts(req.Parts),
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", fmt.Errorf("agent stream: %w", err)
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
