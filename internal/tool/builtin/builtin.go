// Package builtin holds the capability tools served by the provider process.
package builtin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rama/internal/tool"

	"go.uber.org/zap"
)

var errTopicRequired = errors.New("topic is required")

// Options configures the tool set
type Options struct {
	// Summarizer writes topic overviews; nil keeps the templated overview
	Summarizer Summarizer

	Logger *zap.Logger
}

// Tools returns one tool per research capability
func Tools(opts Options) []tool.Tool {
	return []tool.Tool{
		NewSearchPapersTool(),
		NewWorkspaceTool(),
		NewMindmapTool(),
		NewInteractiveMindmapTool(),
		NewSummariesTool(opts.Summarizer, opts.Logger),
		NewCitationsTool(),
		NewSamplePaperTool(),
		NewAudioTool(),
	}
}

// NewRegistry registers every capability tool and resource in a fresh registry
func NewRegistry(opts Options) *tool.Registry {
	registry := tool.NewRegistry()
	registry.MustRegister(Tools(opts)...)
	for _, res := range Resources() {
		if err := registry.RegisterResource(res); err != nil {
			panic(err)
		}
	}
	return registry
}

// jsonResult renders a payload the way clients expect it: one JSON object as text
func jsonResult(payload any) (*tool.Result, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &tool.Result{
		Success: true,
		Output:  string(data),
	}, nil
}

func invalidParams(err error) *tool.Result {
	return &tool.Result{
		Success: false,
		Error:   fmt.Sprintf("invalid parameters: %v", err),
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func boolProp(description string, def bool) map[string]any {
	return map[string]any{"type": "boolean", "description": description, "default": def}
}

func intProp(description string, def int) map[string]any {
	return map[string]any{"type": "integer", "description": description, "default": def}
}

func papersProp(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":       map[string]any{"type": []string{"string", "integer"}},
				"title":    map[string]any{"type": "string"},
				"authors":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"journal":  map[string]any{"type": "string"},
				"year":     map[string]any{"type": "integer"},
				"keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			},
		},
	}
}
