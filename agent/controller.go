// Package agent runs conversation turns: it sends a thread's history to the
// model, dispatches the tools the model asks for and records every message.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"compsbot/model"
	"compsbot/storage"
	"compsbot/tools"
)

var (
	// ErrEmptyInput is returned for blank user text; nothing is recorded.
	ErrEmptyInput = errors.New("empty input")
	// ErrMaxSteps is returned when a turn makes too many model calls.
	ErrMaxSteps = errors.New("turn exceeded the maximum number of model calls")
)

const defaultMaxSteps = 10

// Toolbox is the tool surface the controller dispatches to.
type Toolbox interface {
	Specs() []tools.Spec
	Execute(ctx context.Context, call tools.Call, report tools.Reporter) tools.Result
}

// Options configure a Controller. Zero values select defaults.
type Options struct {
	SystemPrompt string
	MaxSteps     int
	Tracer       trace.Tracer
}

// Controller owns the turn loop. Turns are serialized.
type Controller struct {
	provider     model.Provider
	toolbox      Toolbox
	store        storage.Checkpointer
	systemPrompt string
	maxSteps     int
	tracer       trace.Tracer

	turnMu sync.Mutex
}

func NewController(provider model.Provider, toolbox Toolbox, store storage.Checkpointer, opts Options) *Controller {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("compsbot/agent")
	}
	return &Controller{
		provider:     provider,
		toolbox:      toolbox,
		store:        store,
		systemPrompt: opts.SystemPrompt,
		maxSteps:     opts.MaxSteps,
		tracer:       opts.Tracer,
	}
}

// History returns a copy of the thread's messages.
func (c *Controller) History(ctx context.Context, threadID string) ([]model.Message, error) {
	return c.store.Load(ctx, threadID)
}

// RunTurn handles one line of user text and returns the final answer. The
// observer, which may be nil, sees every update before RunTurn returns.
func (c *Controller) RunTurn(ctx context.Context, threadID, text string, observer Observer) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if observer == nil {
		observer = func(Update) {}
	}

	c.turnMu.Lock()
	defer c.turnMu.Unlock()

	ctx, span := c.tracer.Start(ctx, "agent.turn", trace.WithAttributes(
		attribute.String("thread.id", threadID),
		attribute.String("llm.model", c.provider.GetModel()),
	))
	defer span.End()

	answer, err := c.runTurn(ctx, threadID, text, observer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Str("thread", threadID).Msg("turn failed")
		return "", err
	}
	return answer, nil
}

func (c *Controller) runTurn(ctx context.Context, threadID, text string, observer Observer) (string, error) {
	history, err := c.store.Load(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("failed to load thread: %w", err)
	}

	human := model.HumanMessage(text)
	if len(history) > 0 {
		if err := model.ValidateSequence(append(model.CloneMessages(history), human)); err != nil {
			return "", fmt.Errorf("thread %s cannot be continued: %w", threadID, err)
		}
	} else {
		system := model.SystemMessage(c.systemPrompt)
		if err := c.store.Append(ctx, threadID, system); err != nil {
			return "", fmt.Errorf("failed to seed thread: %w", err)
		}
		history = append(history, system)
	}

	if err := c.store.Append(ctx, threadID, human); err != nil {
		return "", fmt.Errorf("failed to record message: %w", err)
	}
	history = append(history, human)

	specs := c.toolbox.Specs()
	mcpTools := make([]mcptypes.Tool, len(specs))
	for i, s := range specs {
		mcpTools[i] = s.MCPTool()
	}

	for step := 0; step < c.maxSteps; step++ {
		observer(Update{Kind: UpdateState, State: StateAwaitingModel})

		content, calls, err := c.callModel(ctx, history, mcpTools, observer)
		if err != nil {
			return "", fmt.Errorf("model call failed: %w", err)
		}

		reply := model.AIMessage(content, calls)
		if err := c.store.Append(ctx, threadID, reply); err != nil {
			return "", fmt.Errorf("failed to record reply: %w", err)
		}
		history = append(history, reply)

		if len(calls) == 0 {
			return content, nil
		}

		observer(Update{Kind: UpdateState, State: StateDispatchingTools})

		results, answer, direct, err := c.dispatch(ctx, threadID, calls, observer)
		history = append(history, results...)
		if err != nil {
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if direct {
			return answer, nil
		}
	}

	return "", ErrMaxSteps
}

// callModel streams one completion. Calls without an id get one so tool
// results can be matched to them.
func (c *Controller) callModel(ctx context.Context, history []model.Message, mcpTools []mcptypes.Tool, observer Observer) (string, []model.ToolCall, error) {
	var (
		sb    strings.Builder
		calls []model.ToolCall
	)
	err := c.provider.ChatWithTools(ctx, history, mcpTools, func(chunk string, toolCalls []model.ToolCall) error {
		if chunk != "" {
			sb.WriteString(chunk)
			observer(Update{Kind: UpdateToken, Text: chunk})
		}
		calls = append(calls, toolCalls...)
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = "call_" + uuid.NewString()
		}
	}
	return sb.String(), calls, nil
}

// dispatch runs calls in order and records one tool message per call. If any
// call is return-direct, the first such output is the answer; the rest of the
// batch still runs so every call is answered.
//
// Results are recorded even after ctx is cancelled, otherwise the stored
// assistant message would keep unanswered calls and the thread could not be
// continued. Calls not yet started when ctx is cancelled are answered with an
// error instead of being run.
func (c *Controller) dispatch(ctx context.Context, threadID string, calls []model.ToolCall, observer Observer) ([]model.Message, string, bool, error) {
	var (
		results []model.Message
		answer  string
		direct  bool
	)
	recordCtx := context.WithoutCancel(ctx)

	for _, call := range calls {
		var (
			output       string
			returnDirect bool
		)
		if err := ctx.Err(); err != nil {
			output = "Error: " + err.Error()
		} else {
			output, returnDirect = c.runTool(ctx, call, observer)
		}

		msg := model.ToolMessage(call, output)
		if err := c.store.Append(recordCtx, threadID, msg); err != nil {
			return results, "", false, fmt.Errorf("failed to record tool result: %w", err)
		}
		results = append(results, msg)
		observer(Update{Kind: UpdateToolResult, Tool: call.Name, Text: output})

		if returnDirect && !direct {
			answer, direct = output, true
		}
	}
	return results, answer, direct, nil
}

func (c *Controller) runTool(ctx context.Context, call model.ToolCall, observer Observer) (string, bool) {
	ctx, span := c.tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	))
	defer span.End()

	observer(Update{Kind: UpdateToolCall, Tool: call.Name, Text: call.Arguments})
	log.Debug().Str("tool", call.Name).Str("id", call.ID).Msg("dispatching tool")

	parsed, err := tools.ParseCall(call.Name, call.Arguments)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("tool", call.Name).Msg("rejected tool call")
		return "Error: " + err.Error(), false
	}

	res := c.toolbox.Execute(ctx, parsed, func(msg string) {
		observer(Update{Kind: UpdateProgress, Tool: call.Name, Text: msg})
	})
	span.SetAttributes(attribute.Bool("tool.return_direct", res.ReturnDirect))
	return res.Output, res.ReturnDirect
}
