package main

import (
	"context"
	"encoding/json"
	"testing"

	"rama/internal/mcp"
	"rama/internal/research"
	"rama/internal/tool"
	"rama/internal/tool/builtin"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedTool answers every call with the same output
type cannedTool struct {
	name   string
	output string
}

func (c cannedTool) Name() string               { return c.name }
func (c cannedTool) Description() string        { return "canned " + c.name }
func (c cannedTool) Parameters() map[string]any { return map[string]any{"type": "object"} }

func (c cannedTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	return &tool.Result{Success: true, Output: c.output}, nil
}

func serveRegistry(t *testing.T, registry *tool.Registry) *mcp.Client {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewProviderServer("rama-research-server", "0.1.0", registry, nil)
	serverT, clientT := sdkmcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverT)
	require.NoError(t, err)

	client, err := mcp.NewClient(ctx, "rama-doctor", "0.1.0", clientT)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		ss.Wait()
	})
	return client
}

func TestDoctorArgs_CoverEveryCapability(t *testing.T) {
	for _, name := range research.Capabilities {
		assert.Contains(t, doctorArgs, name)
	}
	assert.Len(t, doctorArgs, len(research.Capabilities))
}

func TestInspect_BuiltinProviderIsHealthy(t *testing.T) {
	client := serveRegistry(t, builtin.NewRegistry(builtin.Options{}))

	d := newDiagnosis("rama-provider")
	require.NoError(t, inspect(context.Background(), client, nil, d))

	assert.True(t, d.healthy(), "diagnosis: %+v", d)
	require.NotNil(t, d.Server)
	assert.Equal(t, "rama-research-server", d.Server.Name)
	assert.ElementsMatch(t, research.Capabilities, d.Tools)
	assert.Empty(t, d.Missing)
	assert.Empty(t, d.Failing)
	assert.Equal(t, []string{"research://mindmap", "research://papers", "research://workspace"}, d.Resources)
	assert.Empty(t, d.Unreadable)
}

func TestInspect_ReportsBrokenProvider(t *testing.T) {
	registry := tool.NewRegistry()
	registry.MustRegister(
		cannedTool{name: research.CapSearchPapers, output: `{"papers":"none"}`},
		cannedTool{name: research.CapGenerateWorkspace, output: "workspace ready"},
	)
	require.NoError(t, registry.RegisterResource(tool.Resource{
		URI:      "research://papers",
		Name:     "Research Papers",
		MIMEType: "application/json",
		Read: func(ctx context.Context) (string, error) {
			return "not json", nil
		},
	}))
	client := serveRegistry(t, registry)

	d := newDiagnosis("rama-provider")
	require.NoError(t, inspect(context.Background(), client, nil, d))

	assert.False(t, d.healthy())
	assert.ElementsMatch(t, []string{
		research.CapCreateMindmap,
		research.CapCreateInteractiveMindmap,
		research.CapGenerateSummaries,
		research.CapGenerateIEEECitations,
		research.CapGenerateSamplePaper,
		research.CapSynthesizeAudio,
	}, d.Missing)

	require.Len(t, d.Failing, 2)
	assert.Contains(t, d.Failing[research.CapSearchPapers], "unexpected search_papers result shape")
	assert.Contains(t, d.Failing[research.CapGenerateWorkspace], "output is not a JSON object")

	assert.Equal(t, []string{"research://papers"}, d.Resources)
	assert.Equal(t, map[string]string{
		"research://papers":    "contents are not JSON",
		"research://workspace": "not listed",
		"research://mindmap":   "not listed",
	}, d.Unreadable)
}
