package jsonrpc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEncodeRequest_Shape(t *testing.T) {
	line, err := EncodeRequest("tools/call", map[string]any{
		"name":      "search_papers",
		"arguments": map[string]any{"query": "graphs"},
	}, 7)
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	if strings.Contains(string(line), "\n") {
		t.Error("Encoded request must not contain a newline")
	}

	var got map[string]any
	if err := json.Unmarshal(line, &got); err != nil {
		t.Fatalf("Encoded request is not JSON: %v", err)
	}
	if got["jsonrpc"] != "2.0" || got["method"] != "tools/call" || got["id"] != float64(7) {
		t.Errorf("Unexpected envelope: %v", got)
	}
	params := got["params"].(map[string]any)
	if params["name"] != "search_papers" {
		t.Errorf("Unexpected params: %v", params)
	}
}

func TestEncodeNotification_HasNoID(t *testing.T) {
	line, err := EncodeNotification("notifications/initialized", nil)
	if err != nil {
		t.Fatalf("EncodeNotification failed: %v", err)
	}
	if string(line) != `{"jsonrpc":"2.0","method":"notifications/initialized"}` {
		t.Errorf("Unexpected notification: %s", line)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantID    int64
		wantError bool
		malformed string
		notResp   bool
	}{
		{
			name:   "success",
			line:   `{"jsonrpc":"2.0","id":3,"result":{"content":[]}}`,
			wantID: 3,
		},
		{
			name:      "error payload",
			line:      `{"jsonrpc":"2.0","id":4,"error":{"code":-32601,"message":"Method not found"}}`,
			wantID:    4,
			wantError: true,
		},
		{name: "invalid json", line: `{"jsonrpc":`, malformed: "invalid JSON"},
		{name: "wrong version", line: `{"jsonrpc":"1.0","id":1,"result":{}}`, malformed: "expected jsonrpc"},
		{name: "missing id", line: `{"jsonrpc":"2.0","result":{}}`, malformed: "bad id"},
		{name: "null id", line: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`, malformed: "bad id"},
		{name: "string id", line: `{"jsonrpc":"2.0","id":"abc","result":{}}`, malformed: "bad id"},
		{name: "both", line: `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"x"}}`, malformed: "both"},
		{name: "neither", line: `{"jsonrpc":"2.0","id":1}`, malformed: "neither"},
		{name: "null result", line: `{"jsonrpc":"2.0","id":1,"result":null}`, malformed: "neither"},
		{name: "notification", line: `{"jsonrpc":"2.0","method":"notifications/message","params":{}}`, notResp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.line))

			switch {
			case tt.notResp:
				if !errors.Is(err, ErrNotResponse) {
					t.Fatalf("Expected ErrNotResponse, got %v", err)
				}
			case tt.malformed != "":
				var mErr *MalformedResponseError
				if !errors.As(err, &mErr) {
					t.Fatalf("Expected MalformedResponseError, got %v", err)
				}
				if !strings.Contains(mErr.Error(), tt.malformed) {
					t.Errorf("Expected reason %q in %q", tt.malformed, mErr.Error())
				}
			default:
				if err != nil {
					t.Fatalf("DecodeResponse failed: %v", err)
				}
				if resp.ID != tt.wantID {
					t.Errorf("Expected id %d, got %d", tt.wantID, resp.ID)
				}
				if (resp.Error != nil) != tt.wantError {
					t.Errorf("Expected error payload %v, got %+v", tt.wantError, resp.Error)
				}
			}
		})
	}
}

func TestCorrelator_IDsIncrease(t *testing.T) {
	c := NewCorrelator()
	prev := int64(0)
	for i := 0; i < 5; i++ {
		id := c.NextID()
		if id <= prev {
			t.Fatalf("Expected increasing ids, got %d after %d", id, prev)
		}
		prev = id
	}
}

func TestCorrelator_MatchConsumesID(t *testing.T) {
	c := NewCorrelator()
	id, line, err := c.Begin("tools/call", map[string]any{"name": "x"})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !strings.Contains(string(line), `"method":"tools/call"`) {
		t.Errorf("Unexpected request line: %s", line)
	}
	if c.Pending() != 1 {
		t.Fatalf("Expected 1 pending request, got %d", c.Pending())
	}

	if err := c.Match(&Response{ID: id, Result: json.RawMessage(`{}`)}, id); err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests after match, got %d", c.Pending())
	}

	// A replayed response for a consumed id is never matched again
	if err := c.Match(&Response{ID: id}, id); err == nil {
		t.Error("Expected error matching an already consumed id")
	}
}

func TestCorrelator_MismatchedID(t *testing.T) {
	c := NewCorrelator()
	id, _, err := c.Begin("initialize", nil)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	err = c.Match(&Response{ID: id + 41}, id)
	var mismatch *MismatchedIDError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected MismatchedIDError, got %v", err)
	}
	if mismatch.Want != id || mismatch.Got != id+41 {
		t.Errorf("Unexpected mismatch details: %+v", mismatch)
	}

	// Still pending until abandoned
	if c.Pending() != 1 {
		t.Errorf("Expected request to stay pending, got %d", c.Pending())
	}
	c.Abandon(id)
	if c.Pending() != 0 {
		t.Errorf("Expected no pending requests after Abandon, got %d", c.Pending())
	}
}
