package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/guanyang/capcut-mcp/internal/catalog"
	"github.com/guanyang/capcut-mcp/internal/composer"
	"github.com/guanyang/capcut-mcp/internal/dispatch"
	"github.com/guanyang/capcut-mcp/internal/draft"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "capcut-api"
	// serverVersion identifies the MCP server version.
	serverVersion = "1.0.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over HTTP/SSE for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP server address for the SSE transport. Defaults to localhost:5001.
	Registry  *draft.Registry
	Composer  composer.Composer
}

// NewServer builds an MCP server exposing every catalog tool through the
// dispatcher. Tool input is validated by the dispatch core rather than the
// SDK so validation failures surface as result envelopes, never as protocol
// errors.
func NewServer(dispatcher *dispatch.Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{})
	for _, desc := range catalog.Tools() {
		server.AddTool(&mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.InputSchema(),
		}, toolHandler(dispatcher, desc.Name))
	}
	return server
}

// toolHandler adapts one catalog tool onto the dispatcher. The result
// envelope is serialized as a single text content block; failure envelopes
// additionally mark the call result as an error.
func toolHandler(dispatcher *dispatch.Dispatcher, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return nil, fmt.Errorf("decode %s arguments: %w", name, err)
			}
		}

		result := dispatcher.Invoke(ctx, dispatch.Request{Name: name, Arguments: args})

		data, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return &mcp.CallToolResult{
			IsError: !result.Success,
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	}
}

// Run is the service entrypoint and blocks until context cancellation. The
// stdio transport serves one local client; the HTTP transport serves SSE
// sessions for remote clients. Backend fault diagnostics are attached only
// on the local channel.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Registry == nil || cfg.Composer == nil {
		return fmt.Errorf("MCP server is not configured")
	}

	switch cfg.Transport {
	case TransportStdio:
		server := NewServer(dispatch.New(cfg.Registry, cfg.Composer, true))
		return serveStdio(ctx, server)
	case TransportHTTP:
		server := NewServer(dispatch.New(cfg.Registry, cfg.Composer, false))
		return NewHTTPTransportWithServer(cfg.HTTPAddr, server).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveStdio runs the MCP server over stdio until the client disconnects or
// the context ends. Context cancellation is a clean exit.
func serveStdio(ctx context.Context, server *mcp.Server) error {
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
