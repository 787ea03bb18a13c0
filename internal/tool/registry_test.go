package tool

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// MockTool echoes its params, or fails when the params ask it to
type MockTool struct {
	name string
}

func (t *MockTool) Name() string {
	return t.name
}

func (t *MockTool) Description() string {
	return "A mock tool"
}

func (t *MockTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"param": map[string]any{
				"type": "string",
			},
		},
	}
}

func (t *MockTool) Execute(ctx context.Context, params json.RawMessage) (*Result, error) {
	var p struct {
		Param string `json:"param"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	switch p.Param {
	case "fail":
		return nil, errors.New("mock failure")
	case "silent":
		return &Result{Success: true}, nil
	}
	return &Result{Success: true, Output: "echo: " + p.Param}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&MockTool{name: "beta"}); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}
	if err := registry.Register(&MockTool{name: "alpha"}); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}

	if err := registry.Register(&MockTool{name: "alpha"}); err == nil {
		t.Error("Expected duplicate registration to fail")
	}

	if _, err := registry.Get("alpha"); err != nil {
		t.Errorf("Expected alpha to be found: %v", err)
	}
	if _, err := registry.Get("gamma"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}

	if got := registry.Names(); !reflect.DeepEqual(got, []string{"alpha", "beta"}) {
		t.Errorf("Names() = %v, want sorted names", got)
	}
}

func TestRegistry_MustRegisterPanicsOnDuplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustRegister to panic")
		}
	}()

	registry := NewRegistry()
	registry.MustRegister(&MockTool{name: "same"}, &MockTool{name: "same"})
}

func TestRegistry_Resources(t *testing.T) {
	registry := NewRegistry()
	read := func(ctx context.Context) (string, error) { return "{}", nil }

	for _, uri := range []string{"test://b", "test://a"} {
		if err := registry.RegisterResource(Resource{URI: uri, Read: read}); err != nil {
			t.Fatalf("Failed to register resource: %v", err)
		}
	}

	if err := registry.RegisterResource(Resource{URI: "test://a", Read: read}); err == nil {
		t.Error("Expected error for duplicate resource")
	}
	if err := registry.RegisterResource(Resource{URI: "test://c"}); err == nil {
		t.Error("Expected error for resource without reader")
	}

	resources := registry.Resources()
	if len(resources) != 2 || resources[0].URI != "test://a" || resources[1].URI != "test://b" {
		t.Errorf("Expected resources sorted by URI, got %+v", resources)
	}
}

func TestExecutor_Execute(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(&MockTool{name: "mock"})
	executor := NewExecutor(registry, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		tool        string
		params      string
		wantSuccess bool
		wantOutput  string
		wantError   string
	}{
		{"success", "mock", `{"param":"hi"}`, true, "echo: hi", ""},
		{"empty output", "mock", `{"param":"silent"}`, true, EmptyOutputPlaceholder, ""},
		{"no params", "mock", ``, true, "echo: ", ""},
		{"tool error", "mock", `{"param":"fail"}`, false, "", "mock failure"},
		{"bad params", "mock", `[1]`, false, "", "cannot unmarshal"},
		{"unknown tool", "nope", `{}`, false, "", "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := executor.Execute(ctx, "call-1", tt.tool, json.RawMessage(tt.params))
			if call.ToolName != tt.tool || call.CallID != "call-1" {
				t.Errorf("unexpected call identity %s/%s", call.ToolName, call.CallID)
			}
			if call.Result.Success != tt.wantSuccess {
				t.Fatalf("Success = %v, want %v (error %q)", call.Result.Success, tt.wantSuccess, call.Result.Error)
			}
			if tt.wantSuccess && call.Result.Output != tt.wantOutput {
				t.Errorf("Output = %q, want %q", call.Result.Output, tt.wantOutput)
			}
			if !tt.wantSuccess && !strings.Contains(call.Result.Error, tt.wantError) {
				t.Errorf("Error = %q, want it to contain %q", call.Result.Error, tt.wantError)
			}
			if call.Duration() < 0 {
				t.Errorf("negative duration %v", call.Duration())
			}
		})
	}
}
