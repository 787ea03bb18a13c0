package mcp

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderDisabled is the cause recorded when configuration turns the provider off
	ErrProviderDisabled = errors.New("provider disabled by configuration")

	// ErrNotReady is returned by Call when the supervisor was stopped while waiting
	ErrNotReady = errors.New("provider not ready")
)

// InitializationFailedError reports that the provider could not be brought to Ready
type InitializationFailedError struct {
	Err error
}

func (e *InitializationFailedError) Error() string {
	return fmt.Sprintf("provider initialization failed: %v", e.Err)
}

func (e *InitializationFailedError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a response that breaks the request/response contract.
// The stream can no longer be trusted after one.
type ProtocolError struct {
	Method string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: %v", e.Method, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
