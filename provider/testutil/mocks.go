package testutil

import (
	"context"
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"compsbot/model"
)

// Reply is one scripted model response: streamed text chunks followed by
// optional tool calls, or an error.
type Reply struct {
	Chunks    []string
	ToolCalls []model.ToolCall
	Err       error
}

// Text is a Reply that streams content as a single chunk.
func Text(content string) Reply {
	return Reply{Chunks: []string{content}}
}

// Calls is a Reply that requests the given tool calls with no text.
func Calls(calls ...model.ToolCall) Reply {
	return Reply{ToolCalls: calls}
}

// Request records one call made to the mock.
type Request struct {
	Messages []model.Message
	Tools    []mcptypes.Tool
}

// MockProvider implements model.Provider for testing. By default it plays
// Script in order; set ChatFunc or ChatWithToolsFunc to override.
type MockProvider struct {
	ChatFunc          func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error
	ChatWithToolsFunc func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error
	PingFunc          func(ctx context.Context) error

	Script []Reply

	mu           sync.Mutex
	requests     []Request
	currentModel string
}

// NewMockProvider creates a mock provider that plays the given replies.
func NewMockProvider(modelName string, script ...Reply) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
		Script:       script,
	}
	mock.ChatFunc = func(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
		return mock.play(ctx, callback)
	}
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		return mock.play(ctx, callback)
	}
	mock.PingFunc = func(ctx context.Context) error { return nil }
	return mock
}

func (m *MockProvider) play(ctx context.Context, callback model.StreamCallback) error {
	m.mu.Lock()
	n := len(m.requests)
	if n > len(m.Script) {
		m.mu.Unlock()
		return fmt.Errorf("mock provider: unexpected call %d, script has %d replies", n, len(m.Script))
	}
	reply := m.Script[n-1]
	m.mu.Unlock()

	if reply.Err != nil {
		return reply.Err
	}
	for _, chunk := range reply.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(chunk, nil); err != nil {
			return err
		}
	}
	if len(reply.ToolCalls) > 0 {
		return callback("", reply.ToolCalls)
	}
	return nil
}

func (m *MockProvider) record(messages []model.Message, tools []mcptypes.Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, Request{
		Messages: model.CloneMessages(messages),
		Tools:    append([]mcptypes.Tool(nil), tools...),
	})
}

// Requests returns every request received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// CallCount returns how many times the model was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, callback model.StreamCallback) error {
	m.record(messages, nil)
	return m.ChatFunc(ctx, messages, callback)
}

func (m *MockProvider) ChatWithTools(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	m.record(messages, tools)
	return m.ChatWithToolsFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentModel
}

func (m *MockProvider) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentModel = model
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingFunc(ctx)
}
