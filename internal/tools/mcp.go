package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/justestif/go-spotify-mcp/internal/outcome"
)

// Server identity reported during MCP initialization.
const (
	ServerName    = "spotify-mcp"
	ServerVersion = "1.0.0"
)

// NewMCPServer registers every catalog entry as an MCP tool.
func NewMCPServer(d *Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range d.Tools() {
		s.AddTool(mcpTool(t), d.handler(t.Name))
	}
	return s
}

// ServeStdio serves s over in and out until ctx is done or in is closed.
// Transport errors are logged through logger; stdout carries only protocol
// messages.
func ServeStdio(ctx context.Context, s *server.MCPServer, logger *zap.Logger, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(logger.Named("stdio")))

	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serving stdio: %w", err)
	}
	return nil
}

func (d *Dispatcher) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toResult(d.Dispatch(ctx, name, req.GetArguments()))
	}
}

// toResult renders o as indented JSON text. Failed outcomes are flagged as
// tool errors so clients can tell them apart without parsing.
func toResult(o outcome.Outcome) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error serializando resultado: %v", err)), nil
	}

	res := mcp.NewToolResultText(string(data))
	res.IsError = !o.Success
	return res, nil
}

func mcpTool(t Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}

	for _, p := range t.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}

		switch p.Type {
		case TypeString:
			if len(p.Enum) > 0 {
				props = append(props, mcp.Enum(p.Enum...))
			}
			if s, ok := p.Default.(string); ok {
				props = append(props, mcp.DefaultString(s))
			}
			opts = append(opts, mcp.WithString(p.Name, props...))

		case TypeInteger:
			props = append(props, mcp.Min(float64(p.Min)), mcp.Max(float64(p.Max)))
			if n, ok := p.Default.(int); ok {
				props = append(props, mcp.DefaultNumber(float64(n)))
			}
			opts = append(opts, mcp.WithNumber(p.Name, props...))

		case TypeBoolean:
			if b, ok := p.Default.(bool); ok {
				props = append(props, mcp.DefaultBool(b))
			}
			opts = append(opts, mcp.WithBoolean(p.Name, props...))
		}
	}

	return mcp.NewTool(t.Name, opts...)
}
