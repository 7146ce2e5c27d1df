package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"

	"compsbot/mcp"
	"compsbot/model"
)

// OllamaProvider implements model.Provider against a local or remote Ollama
// server. The Ollama client has no retry of its own, so ChatWithTools wraps
// the request in withRetry.
type OllamaProvider struct {
	client      *api.Client
	model       string
	baseURL     string
	temperature float64
	maxRetries  int
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Defaults: base URL "http://localhost:11434", model "llama3.1:latest".
// Returns an error if the base URL does not parse.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:      api.NewClient(parsedURL, http.DefaultClient),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
	}, nil
}

// Chat implements Provider.Chat by delegating to ChatWithTools with no tools.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	return p.ChatWithTools(ctx, messages, nil, callback)
}

// ChatWithTools implements Provider.ChatWithTools.
//
// Ollama reports tool calls on whole messages rather than as deltas, so calls
// are collected across the stream and handed to the callback once at the end,
// matching the other providers. Ollama does not assign call ids; each call
// gets a generated one.
func (p *OllamaProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	stream := true
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: ConvertToOllamaMessages(messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": p.temperature,
		},
	}
	if len(tools) > 0 {
		req.Tools = mcp.ConvertMCPToolsToOllama(tools)
	}

	var toolCalls []model.ToolCall
	streamed := false

	err := withRetry(ctx, p.maxRetries, func() (bool, error) {
		// Calls from a failed attempt are resent by the next one.
		toolCalls = nil
		err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			for _, call := range resp.Message.ToolCalls {
				toolCalls = append(toolCalls, model.ToolCall{
					ID:        "call_" + uuid.NewString(),
					Name:      call.Function.Name,
					Arguments: model.ArgumentsJSON(call.Function.Arguments),
				})
			}
			if resp.Message.Content == "" {
				return nil
			}
			streamed = true
			if callback != nil {
				return callback(resp.Message.Content, nil)
			}
			return nil
		})
		// Once text reached the caller a retry would duplicate it.
		return !streamed, err
	})
	if err != nil {
		return fmt.Errorf("Ollama chat error: %w", err)
	}

	if callback != nil && len(toolCalls) > 0 {
		return callback("", toolCalls)
	}
	return nil
}

// GetModel implements Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OllamaProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by listing local models.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := p.client.List(ctx); err != nil {
		return fmt.Errorf("Ollama ping failed: %w", err)
	}
	return nil
}

// ConvertToOllamaMessages converts model messages to Ollama api.Message,
// keeping assistant tool calls so the server can rebuild the tool context.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if len(msg.ToolCalls) > 0 {
			result[i].ToolCalls = ConvertFromProviderToolCalls(msg.ToolCalls)
		}
	}
	return result
}

// ConvertFromProviderToolCalls converts model.ToolCall to Ollama api.ToolCall.
// Returns nil for nil or empty input.
func ConvertFromProviderToolCalls(calls []model.ToolCall) []api.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(calls))
	for i, call := range calls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: call.ArgumentsMap(),
			},
		}
	}
	return result
}
