package mcp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"rama/internal/config"
	"rama/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Client wraps the official MCP SDK client and session.
// The supervisor owns the provider during normal operation; Client is used
// to inspect a provider, as the doctor command does.
type Client struct {
	name    string
	client  *mcp.Client
	session *mcp.ClientSession
	tools   []*mcp.Tool
}

// NewClient connects over t and collects the tool list
func NewClient(ctx context.Context, name, version string, t mcp.Transport) (*Client, error) {
	impl := &mcp.Implementation{
		Name:    name,
		Version: version,
	}
	client := mcp.NewClient(impl, nil)

	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	var tools []*mcp.Tool
	for t, err := range session.Tools(ctx, nil) {
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		tools = append(tools, t)
	}

	return &Client{
		name:    name,
		client:  client,
		session: session,
		tools:   tools,
	}, nil
}

// DialProvider spawns the configured provider command and connects to it
func DialProvider(ctx context.Context, cfg *config.Config) (*Client, error) {
	pc := cfg.Provider
	cmd := exec.Command(pc.Command, pc.Args...)
	cmd.Dir = pc.Dir

	if env := config.ExpandEnvMap(pc.Env); len(env) > 0 {
		cmd.Env = append(cmd.Environ(), formatEnvVars(env)...)
	}

	return NewClient(ctx, cfg.Client.Name, cfg.Client.Version, &mcp.CommandTransport{Command: cmd})
}

// formatEnvVars converts env map to KEY=VALUE slice
func formatEnvVars(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for key, value := range env {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	return result
}

// Name returns the client name
func (c *Client) Name() string {
	return c.name
}

// ServerInfo returns the name and version the server reported
func (c *Client) ServerInfo() *ServerInfo {
	res := c.session.InitializeResult()
	if res == nil || res.ServerInfo == nil {
		return nil
	}
	return &ServerInfo{Name: res.ServerInfo.Name, Version: res.ServerInfo.Version}
}

// Tools returns the cached list of tools
func (c *Client) Tools() []*mcp.Tool {
	return c.tools
}

// Registry wraps every remote tool in an adapter and registers it
func (c *Client) Registry() (*tool.Registry, error) {
	registry := tool.NewRegistry()
	for _, t := range c.tools {
		if err := registry.Register(NewRemoteTool(c, t)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Resources lists the resources the server exposes
func (c *Client) Resources(ctx context.Context) ([]*mcp.Resource, error) {
	var resources []*mcp.Resource
	for r, err := range c.session.Resources(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("failed to list resources: %w", err)
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// ReadResource returns the text contents of a resource joined by newlines
func (c *Client) ReadResource(ctx context.Context, uri string) (string, error) {
	result, err := c.session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
	if err != nil {
		return "", fmt.Errorf("read resource %s failed: %w", uri, err)
	}

	texts := make([]string, 0, len(result.Contents))
	for _, content := range result.Contents {
		if content.Text != "" {
			texts = append(texts, content.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}

// CallTool executes a tool with given parameters
func (c *Client) CallTool(ctx context.Context, toolName string, arguments map[string]any) (*mcp.CallToolResult, error) {
	params := &mcp.CallToolParams{
		Name:      toolName,
		Arguments: arguments,
	}

	result, err := c.session.CallTool(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("call tool request failed: %w", err)
	}

	return result, nil
}

// Close shuts down the client and session
func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}
