package tool

import (
	"context"
	"encoding/json"
	"time"
)

// Tool defines the interface that all tools must implement
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns a brief description of what this tool does
	Description() string

	// Parameters returns the JSON schema for the tool's parameters
	Parameters() map[string]any

	// Execute runs the tool with the given parameters
	Execute(ctx context.Context, params json.RawMessage) (*Result, error)
}

// Result is what a tool produced. Output is the text sent back to the caller.
type Result struct {
	Success bool
	Output  string
	Error   string
	Data    map[string]any
}

type CallResult struct {
	ToolName  string
	CallID    string
	Params    json.RawMessage
	Result    *Result
	StartTime time.Time
	EndTime   time.Time
}

// Duration is the wall time the call took
func (c *CallResult) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}
