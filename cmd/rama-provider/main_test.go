package main

import (
	"context"
	"os"
	"testing"
	"time"

	"rama/internal/config"
	"rama/internal/mcp"
	"rama/internal/research"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveEnv makes the test binary act as the provider
const serveEnv = "RAMA_PROVIDER_TEST_SERVE"

func TestMain(m *testing.M) {
	if os.Getenv(serveEnv) == "1" {
		logLevel = os.Getenv("RAMA_LOG_LEVEL")
		if err := serve(context.Background()); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func selfConfig() *config.Config {
	cfg := config.Default()
	cfg.Provider.Command = os.Args[0]
	cfg.Provider.Env = map[string]string{
		serveEnv:         "1",
		"OPENAI_API_KEY": "",
		"RAMA_LOG_LEVEL": "error",
	}
	cfg.Client.CallTimeout = config.Duration(5 * time.Second)
	return cfg
}

func TestProvider_ServesEveryCapabilityLive(t *testing.T) {
	ctx := context.Background()
	sup := mcp.NewSupervisorFromConfig(selfConfig())
	client := research.NewClient(sup)
	defer client.Close()

	search, err := client.SearchPapers(ctx, research.SearchArgs{Query: "quantum computing"})
	require.NoError(t, err)
	require.True(t, search.Live(), "search fell back: %v", search.Reason)

	var found research.SearchResult
	require.NoError(t, search.Decode(&found))
	require.NotEmpty(t, found.Papers)
	assert.Equal(t, []string{"arxiv", "scholar"}, found.SourcesUsed)

	calls := map[string]func() (*research.Result, error){
		research.CapGenerateWorkspace: func() (*research.Result, error) {
			return client.GenerateWorkspace(ctx, research.WorkspaceArgs{Topic: "quantum computing"})
		},
		research.CapCreateMindmap: func() (*research.Result, error) {
			return client.CreateMindmap(ctx, research.MindmapArgs{Topic: "quantum computing"})
		},
		research.CapCreateInteractiveMindmap: func() (*research.Result, error) {
			return client.CreateInteractiveMindmap(ctx, research.InteractiveMindmapArgs{Topic: "quantum computing"})
		},
		research.CapGenerateSummaries: func() (*research.Result, error) {
			return client.GenerateComprehensiveSummaries(ctx, research.SummariesArgs{Topic: "quantum computing", Papers: found.Papers})
		},
		research.CapGenerateIEEECitations: func() (*research.Result, error) {
			return client.GenerateIEEECitations(ctx, research.CitationArgs{Papers: found.Papers})
		},
		research.CapGenerateSamplePaper: func() (*research.Result, error) {
			return client.GenerateSamplePaper(ctx, research.SamplePaperArgs{Topic: "quantum computing", Papers: found.Papers})
		},
		research.CapSynthesizeAudio: func() (*research.Result, error) {
			return client.SynthesizeAudio(ctx, research.AudioArgs{Text: "qubits"})
		},
	}

	for name, call := range calls {
		res, err := call()
		require.NoError(t, err, name)
		assert.True(t, res.Live(), "%s fell back: %v", name, res.Reason)
		assert.Equal(t, name, res.Capability)
	}

	assert.Equal(t, mcp.StateReady, sup.State())
	info := sup.ServerInfo()
	require.NotNil(t, info)
	assert.Equal(t, serverName, info.Name)
	assert.Equal(t, serverVersion, info.Version)
}

func TestProvider_ExposesCapabilitiesAndResources(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mcp.DialProvider(ctx, selfConfig())
	require.NoError(t, err)
	defer client.Close()

	registry, err := client.Registry()
	require.NoError(t, err)
	assert.ElementsMatch(t, research.Capabilities, registry.Names())

	resources, err := client.Resources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 3)
	for _, r := range resources {
		text, err := client.ReadResource(ctx, r.URI)
		require.NoError(t, err, r.URI)
		assert.Contains(t, text, `"description"`, r.URI)
	}
}
