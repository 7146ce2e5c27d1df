package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"compsbot/tools"
)

// Toolbox is the set of tools served over MCP.
type Toolbox interface {
	Specs() []tools.Spec
	Execute(ctx context.Context, call tools.Call, report tools.Reporter) tools.Result
}

// Server exposes the assistant's tools to other MCP clients.
type Server struct {
	mcp     *server.MCPServer
	toolbox Toolbox
}

// NewServer registers every tool of toolbox on a new MCP server.
func NewServer(name, version string, toolbox Toolbox) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		toolbox: toolbox,
	}
	for _, spec := range toolbox.Specs() {
		s.mcp.AddTool(spec.MCPTool(), s.handler(spec.Name))
	}
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves MCP over the given streams until ctx is done or in
// closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	log.Info().Msg("serving tools over MCP stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcptypes.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		call, err := tools.ParseCall(name, string(args))
		if err != nil {
			return mcptypes.NewToolResultError(err.Error()), nil
		}

		res := s.toolbox.Execute(ctx, call, func(msg string) {
			log.Info().Str("tool", name).Str("progress", msg).Msg("tool progress")
		})
		return mcptypes.NewToolResultText(res.Output), nil
	}
}
