package mcp

import (
	"context"

	"rama/internal/tool"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ProviderServer serves the tools of a registry over MCP
type ProviderServer struct {
	server   *mcp.Server
	executor *tool.Executor
	log      *zap.Logger
}

// NewProviderServer registers every tool and resource of registry on a new MCP server
func NewProviderServer(name, version string, registry *tool.Registry, log *zap.Logger) *ProviderServer {
	if log == nil {
		log = zap.NewNop()
	}

	s := &ProviderServer{
		server:   mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		executor: tool.NewExecutor(registry, log),
		log:      log,
	}

	for _, t := range registry.List() {
		s.server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		}, s.handler(t.Name()))
	}

	for _, res := range registry.Resources() {
		s.server.AddResource(&mcp.Resource{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MIMEType:    res.MIMEType,
		}, s.resourceHandler(res))
	}
	return s
}

func (s *ProviderServer) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call := s.executor.Execute(ctx, uuid.NewString(), name, req.Params.Arguments)
		return toCallToolResult(call.Result), nil
	}
}

func (s *ProviderServer) resourceHandler(res tool.Resource) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		text, err := res.Read(ctx)
		if err != nil {
			s.log.Warn("resource read failed", zap.String("uri", res.URI), zap.Error(err))
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      res.URI,
				MIMEType: res.MIMEType,
				Text:     text,
			}},
		}, nil
	}
}

// toCallToolResult puts the tool output in a single text content.
// Failures are tool errors, not protocol errors, so the caller sees isError.
func toCallToolResult(r *tool.Result) *mcp.CallToolResult {
	if !r.Success {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + r.Error}},
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: r.Output}},
	}
}

// Run serves on stdin/stdout until the client disconnects or ctx is done
func (s *ProviderServer) Run(ctx context.Context) error {
	s.log.Info("provider serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session on t
func (s *ProviderServer) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
