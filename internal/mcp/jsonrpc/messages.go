// Package jsonrpc implements the JSON-RPC 2.0 envelopes exchanged with the
// research provider, one JSON object per line.
package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Version is the only supported JSON-RPC protocol version.
const Version = "2.0"

// Request is an outbound call that expects exactly one response.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Notification is an outbound message without an id; no response follows.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a decoded inbound response. Exactly one of Result and Error is set.
type Response struct {
	ID     int64
	Result json.RawMessage
	Error  *Error
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ErrNotResponse is returned by DecodeResponse for lines that carry a method,
// i.e. notifications or requests sent by the provider.
var ErrNotResponse = errors.New("message is not a response")

// MalformedResponseError reports a line that is not a valid response envelope.
type MalformedResponseError struct {
	Line   string
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	line := e.Line
	if len(line) > 200 {
		line = line[:200] + "..."
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed response (%s): %v: %q", e.Reason, e.Err, line)
	}
	return fmt.Sprintf("malformed response (%s): %q", e.Reason, line)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// EncodeRequest builds a newline-free request line.
func EncodeRequest(method string, params any, id int64) ([]byte, error) {
	data, err := json.Marshal(&Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", method, err)
	}
	return data, nil
}

// EncodeNotification builds a newline-free notification line.
func EncodeNotification(method string, params any) ([]byte, error) {
	data, err := json.Marshal(&Notification{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s notification: %w", method, err)
	}
	return data, nil
}

// DecodeResponse parses one line into a Response.
// It enforces JSON-RPC 2.0 semantics: version, integer id, result xor error.
func DecodeResponse(line []byte) (*Response, error) {
	var raw struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result"`
		Error   *Error          `json:"error"`
	}

	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, &MalformedResponseError{Line: string(line), Reason: "invalid JSON", Err: err}
	}

	if raw.JSONRPC != Version {
		return nil, &MalformedResponseError{
			Line:   string(line),
			Reason: fmt.Sprintf("expected jsonrpc %q, got %q", Version, raw.JSONRPC),
		}
	}

	if raw.Method != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotResponse, raw.Method)
	}

	id, err := parseID(raw.ID)
	if err != nil {
		return nil, &MalformedResponseError{Line: string(line), Reason: "bad id", Err: err}
	}

	hasResult := len(raw.Result) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Result), []byte("null"))
	hasError := raw.Error != nil

	if hasResult && hasError {
		return nil, &MalformedResponseError{Line: string(line), Reason: "both result and error present"}
	}
	if !hasResult && !hasError {
		return nil, &MalformedResponseError{Line: string(line), Reason: "neither result nor error present"}
	}

	return &Response{
		ID:     id,
		Result: raw.Result,
		Error:  raw.Error,
	}, nil
}

// parseID accepts integral JSON numbers only; this client never sends string ids.
func parseID(raw json.RawMessage) (int64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, errors.New("missing id")
	}

	id, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id %s is not an integer", trimmed)
	}
	return id, nil
}
