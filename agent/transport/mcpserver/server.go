// Package mcpserver exposes the deterministic tool registry over the Model
// Context Protocol so the same lookups the specialists use can be called by
// external agents.
package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	toolx "github.com/tanpawarit/career-mentor-ai/agent/tool"
)

const serverName = "career-mentor-tools"

type Server struct {
	registry  *toolx.Registry
	mcpServer *server.MCPServer
}

// New registers one MCP tool per registry entry.
func New(registry *toolx.Registry, version string) *Server {
	s := &Server{
		registry:  registry,
		mcpServer: server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}
	for _, spec := range registry.Specs(registry.Names()) {
		s.mcpServer.AddTool(toolFor(spec), s.handler(spec.Name))
	}
	return s
}

// ServeStdio blocks serving JSON-RPC on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) MCP() *server.MCPServer {
	return s.mcpServer
}

func toolFor(spec contractx.ToolSpec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, p := range spec.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(p.Name, propOpts...))
	}
	return mcp.NewTool(spec.Name, opts...)
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := s.registry.Invoke(name, request.GetArguments())
		if err != nil {
			if errors.Is(err, contractx.ErrToolNotFound) {
				return mcp.NewToolResultError(text), nil
			}
			return nil, err
		}
		log.Debug().Str("tool", name).Msg("mcp tool invoked")
		return mcp.NewToolResultText(text), nil
	}
}
