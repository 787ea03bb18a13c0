package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rama/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DataPayload is the Result.Data key holding the decoded JSON object a
// provider tool answered with. It is absent when the text is not an object.
const DataPayload = "payload"

// DataTool is the Result.Data key naming the provider tool that answered
const DataTool = "tool"

// RemoteTool exposes one tool of a connected provider as a tool.Tool, so the
// same Executor drives both the local registry and a remote one.
type RemoteTool struct {
	client      *Client
	name        string
	description string
	schema      map[string]any
}

// NewRemoteTool wraps a tool listed by client
func NewRemoteTool(client *Client, listed *mcp.Tool) *RemoteTool {
	return &RemoteTool{
		client:      client,
		name:        listed.Name,
		description: listed.Description,
		schema:      schemaObject(listed.InputSchema),
	}
}

func (r *RemoteTool) Name() string {
	return r.name
}

func (r *RemoteTool) Description() string {
	if r.description == "" {
		return "provider tool " + r.name
	}
	return r.description
}

func (r *RemoteTool) Parameters() map[string]any {
	return r.schema
}

// Execute forwards params as tools/call arguments. Transport failures and
// tool errors both come back as an unsuccessful Result.
func (r *RemoteTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	args := map[string]any{}
	if err := json.Unmarshal(params, &args); err != nil {
		return &tool.Result{Error: fmt.Sprintf("invalid parameters: %v", err)}, nil
	}

	answer, err := r.client.CallTool(ctx, r.name, args)
	if err != nil {
		return &tool.Result{Error: fmt.Sprintf("provider call failed: %v", err)}, nil
	}

	text := contentText(answer.Content)
	if answer.IsError {
		if text == "" {
			text = r.name + " reported an error without content"
		}
		return &tool.Result{Error: text}, nil
	}

	data := map[string]any{DataTool: r.name}
	var payload map[string]any
	if json.Unmarshal([]byte(text), &payload) == nil && payload != nil {
		data[DataPayload] = payload
	}
	return &tool.Result{Success: true, Output: text, Data: data}, nil
}

// schemaObject turns the SDK's untyped input schema into a JSON object
func schemaObject(schema any) map[string]any {
	if m, ok := schema.(map[string]any); ok {
		return m
	}

	var m map[string]any
	if schema != nil {
		if raw, err := json.Marshal(schema); err == nil {
			_ = json.Unmarshal(raw, &m)
		}
	}
	if m == nil {
		m = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return m
}

// contentText joins the content items, one per line. Non-text items are
// replaced by a bracketed placeholder naming their MIME type.
func contentText(content []mcp.Content) string {
	lines := make([]string, 0, len(content))
	for _, item := range content {
		switch c := item.(type) {
		case *mcp.TextContent:
			lines = append(lines, c.Text)
		case *mcp.ImageContent:
			lines = append(lines, "[image "+c.MIMEType+"]")
		case *mcp.AudioContent:
			lines = append(lines, "[audio "+c.MIMEType+"]")
		default:
			lines = append(lines, fmt.Sprintf("[%T]", item))
		}
	}
	return strings.Join(lines, "\n")
}
