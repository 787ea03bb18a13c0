package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EmptyOutputPlaceholder is returned when a tool produces no output.
// MCP text content must not be empty.
const EmptyOutputPlaceholder = "(Tool executed successfully with no output)"

// Executor runs registry tools by name and times them
type Executor struct {
	registry *Registry
	log      *zap.Logger
}

func NewExecutor(registry *Registry, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		registry: registry,
		log:      log,
	}
}

// Execute runs one call. Failures are reported in the result, never as an error.
func (e *Executor) Execute(ctx context.Context, callID, name string, params json.RawMessage) *CallResult {
	startTime := time.Now()
	call := &CallResult{
		ToolName:  name,
		CallID:    callID,
		Params:    params,
		StartTime: startTime,
	}

	t, err := e.registry.Get(name)
	if err != nil {
		call.Result = &Result{Success: false, Error: err.Error()}
		call.EndTime = time.Now()
		e.log.Warn("unknown tool requested", zap.String("tool", name))
		return call
	}

	if len(params) == 0 {
		params = json.RawMessage("{}")
	}

	result, err := t.Execute(ctx, params)
	if err != nil {
		result = &Result{Success: false, Error: err.Error()}
	}
	if result == nil {
		result = &Result{Success: false, Error: fmt.Sprintf("tool %s returned no result", name)}
	}

	// Ensure non-empty output for clients that require non-empty content
	if result.Success && result.Output == "" {
		result.Output = EmptyOutputPlaceholder
	}

	call.Result = result
	call.EndTime = time.Now()

	fields := []zap.Field{
		zap.String("tool", name),
		zap.String("call_id", callID),
		zap.Duration("duration", call.Duration()),
	}
	if result.Success {
		e.log.Debug("tool executed", fields...)
	} else {
		e.log.Warn("tool failed", append(fields, zap.String("error", result.Error))...)
	}
	return call
}
