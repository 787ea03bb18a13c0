// Package mcptest provides a scripted provider process for tests.
//
// A test binary re-executes itself as the provider: TestMain calls
// MaybeServe, which takes over the process when HelperEnv is set.
package mcptest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"rama/internal/mcp/transport"
)

const (
	// HelperEnv selects the Mode of the fake provider
	HelperEnv = "RAMA_FAKE_PROVIDER"

	// DelayEnv adds a pause between reading a request and answering it
	DelayEnv = "RAMA_FAKE_DELAY"

	// RepliesEnv holds a JSON object of tool name to payload object
	RepliesEnv = "RAMA_FAKE_REPLIES"
)

// Mode scripts how the fake answers tools/call
type Mode string

const (
	// ModeGood answers correctly, preceded by a log notification
	ModeGood Mode = "good"

	// ModeMismatch answers tools/call with a wrong id
	ModeMismatch Mode = "mismatch"

	// ModeGarbage answers tools/call with a line that is not JSON
	ModeGarbage Mode = "garbage"

	// ModeHang never answers tools/call
	ModeHang Mode = "hang"

	// ModeRPCError answers tools/call with a JSON-RPC error payload
	ModeRPCError Mode = "rpc_error"

	// ModeToolError answers tools/call with isError set
	ModeToolError Mode = "tool_error"

	// ModeNotJSONText answers tools/call with text that is not a JSON object
	ModeNotJSONText Mode = "not_json_text"

	// ModeRejectInit answers initialize with an error
	ModeRejectInit Mode = "reject_init"

	// ModeExitOnCall exits as soon as tools/call arrives
	ModeExitOnCall Mode = "exit_on_call"
)

// Env builds the child environment for mode
func Env(mode Mode, extra map[string]string) map[string]string {
	env := map[string]string{HelperEnv: string(mode)}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

// Command returns the path of the running test binary
func Command() string {
	return os.Args[0]
}

// Factory returns a transport factory spawning the fake in mode
func Factory(mode Mode, extra map[string]string) func() transport.Transport {
	return func() transport.Transport {
		return transport.NewStdioTransport(Command(), nil, Env(mode, extra),
			transport.WithShutdownTimeout(2*time.Second))
	}
}

// MaybeServe runs the fake and exits when the process was started as one
func MaybeServe() {
	mode := os.Getenv(HelperEnv)
	if mode == "" {
		return
	}
	Serve(Mode(mode), os.Stdin, os.Stdout)
	os.Exit(0)
}

type request struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Serve answers requests from in on out until in is exhausted
func Serve(mode Mode, in io.Reader, out io.Writer) {
	var delay time.Duration
	if ms, err := strconv.Atoi(os.Getenv(DelayEnv)); err == nil {
		delay = time.Duration(ms) * time.Millisecond
	}

	replies := map[string]json.RawMessage{}
	if raw := os.Getenv(RepliesEnv); raw != "" {
		_ = json.Unmarshal([]byte(raw), &replies)
	}

	w := bufio.NewWriter(out)
	send := func(v any) {
		data, _ := json.Marshal(v)
		w.Write(data)
		w.WriteByte('\n')
		w.Flush()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			fmt.Fprintf(os.Stderr, "fake provider: bad request: %v\n", err)
			continue
		}
		if req.ID == nil {
			// Notification
			continue
		}
		id := *req.ID

		if delay > 0 {
			time.Sleep(delay)
		}

		switch req.Method {
		case "initialize":
			if mode == ModeRejectInit {
				send(map[string]any{
					"jsonrpc": "2.0", "id": id,
					"error": map[string]any{"code": -32603, "message": "not today"},
				})
				continue
			}
			send(map[string]any{
				"jsonrpc": "2.0", "id": id,
				"result": map[string]any{
					"protocolVersion": "2024-11-05",
					"capabilities":    map[string]any{"tools": map[string]any{}},
					"serverInfo":      map[string]any{"name": "fake-provider", "version": "0.0.1"},
				},
			})

		case "tools/call":
			var p callParams
			_ = json.Unmarshal(req.Params, &p)
			answerCall(mode, id, p, replies, send, w)

		default:
			send(map[string]any{
				"jsonrpc": "2.0", "id": id,
				"error": map[string]any{"code": -32601, "message": "Method not found"},
			})
		}
	}
}

func answerCall(mode Mode, id int64, p callParams, replies map[string]json.RawMessage, send func(any), w *bufio.Writer) {
	switch mode {
	case ModeHang:
		return
	case ModeExitOnCall:
		os.Exit(3)
	case ModeMismatch:
		send(textResult(id+100, `{"ok":true}`, false))
		return
	case ModeGarbage:
		w.WriteString("this is not json\n")
		w.Flush()
		return
	case ModeRPCError:
		send(map[string]any{
			"jsonrpc": "2.0", "id": id,
			"error": map[string]any{"code": -32000, "message": "tool exploded"},
		})
		return
	case ModeToolError:
		send(textResult(id, "tool failed", true))
		return
	case ModeNotJSONText:
		send(textResult(id, "plain words", false))
		return
	}

	send(map[string]any{
		"jsonrpc": "2.0",
		"method":  "notifications/message",
		"params":  map[string]any{"level": "info", "data": "working on " + p.Name},
	})

	payload, ok := replies[p.Name]
	if !ok {
		echo, _ := json.Marshal(map[string]any{"tool": p.Name, "arguments": p.Arguments})
		payload = echo
	}
	send(textResult(id, string(payload), false))
}

func textResult(id int64, text string, isError bool) map[string]any {
	result := map[string]any{
		"content": []any{map[string]any{"type": "text", "text": text}},
	}
	if isError {
		result["isError"] = true
	}
	return map[string]any{"jsonrpc": "2.0", "id": id, "result": result}
}
