package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"compsbot/tools"
)

type stubToolbox struct {
	calls []tools.Call
}

func (s *stubToolbox) Specs() []tools.Spec {
	return []tools.Spec{
		{Name: tools.GetCompsName, Description: "comps", InputDescription: "address", ReturnDirect: true},
		{Name: tools.PDFGeneratorName, Description: "pdf", InputDescription: "html", ReturnDirect: true},
	}
}

func (s *stubToolbox) Execute(ctx context.Context, call tools.Call, report tools.Reporter) tools.Result {
	s.calls = append(s.calls, call)
	report("working")
	return tools.Result{Tool: call.ToolName(), Output: "ran " + call.ToolName()}
}

func resultText(t *testing.T, res *mcptypes.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcptypes.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestServerHandler(t *testing.T) {
	box := &stubToolbox{}
	s := NewServer("compsbot", "test", box)

	req := mcptypes.CallToolRequest{}
	req.Params.Name = tools.GetCompsName
	req.Params.Arguments = map[string]any{"input": "123 Main St"}

	res, err := s.handler(tools.GetCompsName)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res)
	}
	if got := resultText(t, res); got != "ran get_comps" {
		t.Errorf("output = %q", got)
	}
	if len(box.calls) != 1 || box.calls[0] != (tools.GetCompsCall{Address: "123 Main St"}) {
		t.Errorf("calls = %#v", box.calls)
	}
}

func TestServerHandlerRejectsBadArguments(t *testing.T) {
	box := &stubToolbox{}
	s := NewServer("compsbot", "test", box)

	req := mcptypes.CallToolRequest{}
	req.Params.Arguments = map[string]any{"input": 42}

	res, err := s.handler(tools.PDFGeneratorName)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !res.IsError {
		t.Error("expected an error result")
	}
	if len(box.calls) != 0 {
		t.Error("toolbox must not run for invalid arguments")
	}
}

func TestServerInProcess(t *testing.T) {
	ctx := context.Background()
	box := &stubToolbox{}
	s := NewServer("compsbot", "test", box)

	c, err := client.NewInProcessClient(s.MCPServer())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer c.Close()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("failed to start client: %v", err)
	}

	initReq := mcptypes.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcptypes.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcptypes.Implementation{Name: "test-client", Version: "0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	list, err := c.ListTools(ctx, mcptypes.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range list.Tools {
		names[tool.Name] = true
	}
	if !names[tools.GetCompsName] || !names[tools.PDFGeneratorName] || len(names) != 2 {
		t.Errorf("tools = %v", names)
	}

	res, err := c.CallTool(ctx, mcptypes.CallToolRequest{
		Params: mcptypes.CallToolParams{
			Name:      tools.PDFGeneratorName,
			Arguments: map[string]any{"input": "<p>x</p>"},
		},
	})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if got := resultText(t, res); got != "ran pdf_generator" {
		t.Errorf("output = %q", got)
	}
}
