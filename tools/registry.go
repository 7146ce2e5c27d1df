// Package tools defines the closed set of tools the assistant can call.
//
// The model names a tool by string; ParseCall is the only place that string
// becomes a typed Call, and Registry.Execute switches over every Call variant.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	GetCompsName     = "get_comps"
	PDFGeneratorName = "pdf_generator"

	// InputKey is the single argument every tool takes.
	InputKey = "input"
)

// Reporter receives free-form progress lines while a tool runs.
type Reporter func(msg string)

// Spec describes a tool to the model.
type Spec struct {
	Name             string
	Description      string
	InputDescription string
	// ReturnDirect makes the tool output the turn's final answer.
	ReturnDirect bool
}

// MCPTool renders the spec as an MCP tool with one required string input.
func (s Spec) MCPTool() mcptypes.Tool {
	return mcptypes.NewTool(s.Name,
		mcptypes.WithDescription(s.Description),
		mcptypes.WithString(InputKey,
			mcptypes.Required(),
			mcptypes.Description(s.InputDescription),
		),
	)
}

// Call is a parsed tool invocation. The unexported method closes the set to
// the variants declared in this package.
type Call interface {
	ToolName() string
	isCall()
}

// GetCompsCall fetches, summarizes and renders comparables for an address.
type GetCompsCall struct {
	Address string
}

// PDFGeneratorCall renders HTML to the output PDF.
type PDFGeneratorCall struct {
	HTML string
}

func (GetCompsCall) ToolName() string     { return GetCompsName }
func (PDFGeneratorCall) ToolName() string { return PDFGeneratorName }
func (GetCompsCall) isCall()              {}
func (PDFGeneratorCall) isCall()          {}

// UnknownToolError is returned by ParseCall for names outside the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ParseCall builds a typed call from a model-provided name and raw argument
// JSON. Arguments normally look like {"input": "..."}; a lone string value
// under another key and non-JSON text are accepted as the input too, since
// models do not always follow the schema.
func ParseCall(name, arguments string) (Call, error) {
	input, err := extractInput(arguments)
	if err != nil {
		return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
	}

	switch name {
	case GetCompsName:
		return GetCompsCall{Address: input}, nil
	case PDFGeneratorName:
		return PDFGeneratorCall{HTML: input}, nil
	default:
		return nil, &UnknownToolError{Name: name}
	}
}

func extractInput(arguments string) (string, error) {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" {
		return "", fmt.Errorf("missing %q", InputKey)
	}

	var raw any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return trimmed, nil
	}

	switch v := raw.(type) {
	case string:
		return v, nil
	case map[string]any:
		if s, ok := v[InputKey].(string); ok {
			return s, nil
		}
		if _, ok := v[InputKey]; ok {
			return "", fmt.Errorf("%q must be a string", InputKey)
		}
		if len(v) == 1 {
			for _, only := range v {
				if s, ok := only.(string); ok {
					return s, nil
				}
			}
		}
		return "", fmt.Errorf("missing %q", InputKey)
	default:
		return "", fmt.Errorf("expected an object with %q", InputKey)
	}
}

// Result is the outcome of one dispatched call.
type Result struct {
	Tool         string
	Output       string
	ReturnDirect bool
}

// Fetcher retrieves a raw comparables payload for an address.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// Summarizer turns a comparables payload into HTML.
type Summarizer interface {
	Summarize(ctx context.Context, raw []byte) (string, error)
}

// Renderer writes HTML to the output PDF and returns a status line.
type Renderer interface {
	Render(ctx context.Context, html string, report func(string)) string
}

// Registry holds the tools and their collaborators.
type Registry struct {
	fetcher    Fetcher
	summarizer Summarizer
	renderer   Renderer
	specs      []Spec
}

func NewRegistry(fetcher Fetcher, summarizer Summarizer, renderer Renderer) *Registry {
	return &Registry{
		fetcher:    fetcher,
		summarizer: summarizer,
		renderer:   renderer,
		specs:      []Spec{getCompsSpec, pdfGeneratorSpec},
	}
}

// Specs returns the tool specs in a stable order.
func (r *Registry) Specs() []Spec {
	return append([]Spec(nil), r.specs...)
}

// Spec looks up a spec by tool name.
func (r *Registry) Spec(name string) (Spec, bool) {
	for _, s := range r.specs {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// MCPTools returns every spec as an MCP tool, in Specs order.
func (r *Registry) MCPTools() []mcptypes.Tool {
	out := make([]mcptypes.Tool, len(r.specs))
	for i, s := range r.specs {
		out[i] = s.MCPTool()
	}
	return out
}

// Execute runs call. Tool failures are reported in Output, never as errors.
func (r *Registry) Execute(ctx context.Context, call Call, report Reporter) Result {
	if report == nil {
		report = func(string) {}
	}

	var output string
	switch c := call.(type) {
	case GetCompsCall:
		output = r.getComps(ctx, c, report)
	case PDFGeneratorCall:
		output = r.generatePDF(ctx, c, report)
	}

	spec, _ := r.Spec(call.ToolName())
	return Result{Tool: call.ToolName(), Output: output, ReturnDirect: spec.ReturnDirect}
}
