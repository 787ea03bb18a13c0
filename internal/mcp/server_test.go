package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"rama/internal/research"
	"rama/internal/tool"
	"rama/internal/tool/builtin"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectInMemory serves the builtin tools and connects a Client to them
func connectInMemory(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	server := NewProviderServer("rama-research-server", "0.1.0", builtin.NewRegistry(builtin.Options{}), nil)
	serverT, clientT := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverT)
	require.NoError(t, err)

	client, err := NewClient(ctx, "rama-doctor", "0.1.0", clientT)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		ss.Wait()
	})
	return client
}

func TestProviderServer_ListsEveryCapability(t *testing.T) {
	client := connectInMemory(t)

	info := client.ServerInfo()
	require.NotNil(t, info)
	assert.Equal(t, "rama-research-server", info.Name)
	assert.Equal(t, "0.1.0", info.Version)

	var names []string
	for _, tl := range client.Tools() {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, research.Capabilities, names)
}

func TestProviderServer_CallTool(t *testing.T) {
	client := connectInMemory(t)

	result, err := client.CallTool(context.Background(), research.CapSearchPapers, map[string]any{
		"query":   "quantum computing",
		"sources": []string{"scholar"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.NoError(t, research.CheckShape(research.CapSearchPapers, payload))
	assert.Equal(t, []any{"scholar"}, payload["sources_used"])
}

func TestProviderServer_ToolFailureIsToolError(t *testing.T) {
	client := connectInMemory(t)

	result, err := client.CallTool(context.Background(), research.CapSynthesizeAudio, map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, contentText(result.Content), "text is required")
}

func TestRemoteTool_Execute(t *testing.T) {
	client := connectInMemory(t)

	registry, err := client.Registry()
	require.NoError(t, err)
	assert.Len(t, registry.Names(), len(research.Capabilities))

	remote, err := registry.Get(research.CapGenerateWorkspace)
	require.NoError(t, err)
	assert.NotEmpty(t, remote.Description())
	assert.Equal(t, "object", remote.Parameters()["type"])

	exec := tool.NewExecutor(registry, nil)
	call := exec.Execute(context.Background(), "call-1", research.CapGenerateWorkspace, json.RawMessage(`{"topic":"soil microbes"}`))
	require.True(t, call.Result.Success, call.Result.Error)
	assert.Equal(t, research.CapGenerateWorkspace, call.Result.Data[DataTool])
	payload, ok := call.Result.Data[DataPayload].(map[string]any)
	require.True(t, ok, "payload is %T", call.Result.Data[DataPayload])
	assert.NoError(t, research.CheckShape(research.CapGenerateWorkspace, payload))

	var ws research.Workspace
	require.NoError(t, json.Unmarshal([]byte(call.Result.Output), &ws))
	assert.Equal(t, "Soil Microbes Research", ws.Name)

	call = exec.Execute(context.Background(), "call-2", research.CapGenerateWorkspace, json.RawMessage(`{}`))
	assert.False(t, call.Result.Success)
	assert.Contains(t, call.Result.Error, "topic is required")

	call = exec.Execute(context.Background(), "call-3", research.CapGenerateWorkspace, json.RawMessage(`[1]`))
	assert.False(t, call.Result.Success)
	assert.Contains(t, call.Result.Error, "invalid parameters")
}

func TestProviderServer_Resources(t *testing.T) {
	client := connectInMemory(t)
	ctx := context.Background()

	resources, err := client.Resources(ctx)
	require.NoError(t, err)

	var uris []string
	for _, r := range resources {
		uris = append(uris, r.URI)
		assert.Equal(t, "application/json", r.MIMEType)
		assert.NotEmpty(t, r.Name)
	}
	assert.Equal(t, []string{"research://mindmap", "research://papers", "research://workspace"}, uris)

	text, err := client.ReadResource(ctx, "research://papers")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &doc))
	assert.NotEmpty(t, doc)

	_, err = client.ReadResource(ctx, "research://citations")
	assert.Error(t, err)
}

func TestSchemaObject(t *testing.T) {
	fallback := map[string]any{"type": "object", "properties": map[string]any{}}

	assert.Equal(t, fallback, schemaObject(nil))
	assert.Equal(t, fallback, schemaObject("not a schema"))
	assert.Equal(t, map[string]any{"type": "object"}, schemaObject(map[string]any{"type": "object"}))
	assert.Equal(t, map[string]any{"type": "object", "required": []any{"topic"}},
		schemaObject(struct {
			Type     string   `json:"type"`
			Required []string `json:"required"`
		}{"object", []string{"topic"}}))
}

func TestContentText(t *testing.T) {
	got := contentText([]mcp.Content{
		&mcp.TextContent{Text: "hello"},
		&mcp.ImageContent{MIMEType: "image/png"},
		&mcp.AudioContent{MIMEType: "audio/mpeg"},
	})
	assert.Equal(t, "hello\n[image image/png]\n[audio audio/mpeg]", got)
	assert.Empty(t, contentText(nil))
}
