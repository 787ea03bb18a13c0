package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rama/internal/hook"
	"rama/internal/hook/handlers"
	"rama/internal/mcp/jsonrpc"
	"rama/internal/mcp/mcptest"
	"rama/internal/mcp/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	mcptest.MaybeServe()
	goleak.VerifyTestMain(m)
}

func testConfig() SupervisorConfig {
	return SupervisorConfig{
		ClientName:    "rama-backend",
		ClientVersion: "0.1.0",
		StartTimeout:  5 * time.Second,
		CallTimeout:   2 * time.Second,
	}
}

func newFakeSupervisor(t *testing.T, mode mcptest.Mode, extra map[string]string, opts ...SupervisorOption) *Supervisor {
	t.Helper()
	s := NewSupervisor(testConfig(), mcptest.Factory(mode, extra), opts...)
	t.Cleanup(s.Stop)
	return s
}

func callTool(ctx context.Context, s *Supervisor, name string, args map[string]any) (json.RawMessage, error) {
	return s.Call(ctx, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestSupervisor_Handshake(t *testing.T) {
	stats := handlers.NewStatsHandler()
	hooks := hook.NewManager()
	hooks.Register(stats)

	s := newFakeSupervisor(t, mcptest.ModeGood, nil, WithHooks(hooks))
	assert.Equal(t, StateNotStarted, s.State())

	require.NoError(t, s.EnsureReady(context.Background()))
	assert.Equal(t, StateReady, s.State())
	require.NotNil(t, s.ServerInfo())
	assert.Equal(t, "fake-provider", s.ServerInfo().Name)

	// Ready is a no-op
	require.NoError(t, s.EnsureReady(context.Background()))
	assert.Equal(t, 1, stats.ProviderStarts())
}

func TestSupervisor_CallSkipsNotifications(t *testing.T) {
	s := newFakeSupervisor(t, mcptest.ModeGood, nil)

	raw, err := callTool(context.Background(), s, "search_papers", map[string]any{"query": "graphs"})
	require.NoError(t, err)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	assert.JSONEq(t, `{"tool":"search_papers","arguments":{"query":"graphs"}}`, result.Content[0].Text)
	assert.Equal(t, StateReady, s.State())
}

func TestSupervisor_MissingExecutable(t *testing.T) {
	s := NewSupervisor(testConfig(), func() transport.Transport {
		return transport.NewStdioTransport("/nonexistent/rama-provider", nil, nil)
	})
	defer s.Stop()

	err := s.EnsureReady(context.Background())
	var initErr *InitializationFailedError
	require.ErrorAs(t, err, &initErr)

	var spawnErr *transport.SpawnError
	assert.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, StateFailed, s.State())

	// Every call fails fast the same way, and the supervisor keeps retrying
	_, err = callTool(context.Background(), s, "search_papers", nil)
	assert.ErrorAs(t, err, &initErr)
	assert.Equal(t, StateFailed, s.State())
}

func TestSupervisor_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Disabled = true
	s := NewSupervisor(cfg, mcptest.Factory(mcptest.ModeGood, nil))

	err := s.EnsureReady(context.Background())
	assert.ErrorIs(t, err, ErrProviderDisabled)
	assert.Equal(t, StateFailed, s.State())
}

func TestSupervisor_RejectedInitialize(t *testing.T) {
	s := newFakeSupervisor(t, mcptest.ModeRejectInit, nil)

	err := s.EnsureReady(context.Background())
	var initErr *InitializationFailedError
	require.ErrorAs(t, err, &initErr)

	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32603, rpcErr.Code)
	assert.Equal(t, StateFailed, s.State())
}

func TestSupervisor_SelfHealsAfterStop(t *testing.T) {
	stats := handlers.NewStatsHandler()
	hooks := hook.NewManager()
	hooks.Register(stats)

	s := newFakeSupervisor(t, mcptest.ModeGood, nil, WithHooks(hooks))
	require.NoError(t, s.EnsureReady(context.Background()))

	s.Stop()
	assert.Equal(t, StateNotStarted, s.State())
	assert.Nil(t, s.ServerInfo())

	// Stop without a process is a no-op
	s.Stop()

	_, err := callTool(context.Background(), s, "create_mindmap", map[string]any{"topic": "ai"})
	require.NoError(t, err)
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 2, stats.ProviderStarts())
	assert.Equal(t, 1, stats.ProviderStops())
}

func TestSupervisor_DesyncStopsProcess(t *testing.T) {
	tests := []struct {
		name    string
		mode    mcptest.Mode
		check   func(t *testing.T, err error)
		timeout time.Duration
	}{
		{
			name: "mismatched id",
			mode: mcptest.ModeMismatch,
			check: func(t *testing.T, err error) {
				var mismatch *jsonrpc.MismatchedIDError
				assert.ErrorAs(t, err, &mismatch)
			},
		},
		{
			name: "malformed json",
			mode: mcptest.ModeGarbage,
			check: func(t *testing.T, err error) {
				var malformed *jsonrpc.MalformedResponseError
				assert.ErrorAs(t, err, &malformed)
			},
		},
		{
			name:    "timeout",
			mode:    mcptest.ModeHang,
			timeout: 300 * time.Millisecond,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
		},
		{
			name: "process exits mid call",
			mode: mcptest.ModeExitOnCall,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, transport.ErrEndOfStream)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.timeout > 0 {
				cfg.CallTimeout = tt.timeout
			}
			s := NewSupervisor(cfg, mcptest.Factory(tt.mode, nil))
			defer s.Stop()

			start := time.Now()
			_, err := callTool(context.Background(), s, "search_papers", nil)
			require.Error(t, err)
			tt.check(t, err)

			assert.Less(t, time.Since(start), 5*time.Second, "call must not hang")
			assert.Equal(t, StateNotStarted, s.State(), "desynchronised process must be stopped")
			assert.Error(t, s.LastError())
		})
	}
}

func TestSupervisor_RPCErrorKeepsProcess(t *testing.T) {
	s := newFakeSupervisor(t, mcptest.ModeRPCError, nil)

	_, err := callTool(context.Background(), s, "search_papers", nil)
	var rpcErr *jsonrpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "tool exploded", rpcErr.Message)
	assert.Equal(t, StateReady, s.State())
}

func TestSupervisor_ConcurrentCallsDoNotInterleave(t *testing.T) {
	s := newFakeSupervisor(t, mcptest.ModeGood, map[string]string{mcptest.DelayEnv: "20"})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			want := fmt.Sprintf("topic-%d", i)
			raw, err := callTool(context.Background(), s, "create_mindmap", map[string]any{"topic": want})
			if err != nil {
				errs <- err
				return
			}

			var result struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			}
			if err := json.Unmarshal(raw, &result); err != nil || len(result.Content) != 1 {
				errs <- fmt.Errorf("call %d: unexpected result %s", i, raw)
				return
			}

			var echo struct {
				Arguments struct {
					Topic string `json:"topic"`
				} `json:"arguments"`
			}
			if err := json.Unmarshal([]byte(result.Content[0].Text), &echo); err != nil {
				errs <- err
				return
			}
			if echo.Arguments.Topic != want {
				errs <- fmt.Errorf("call %d received response for %q", i, echo.Arguments.Topic)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, StateReady, s.State())
}

func TestSupervisor_CancelledContext(t *testing.T) {
	s := newFakeSupervisor(t, mcptest.ModeHang, nil)
	require.NoError(t, s.EnsureReady(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := callTool(ctx, s, "search_papers", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, StateNotStarted, s.State())
}

func TestReadyState_String(t *testing.T) {
	assert.Equal(t, "not_started", StateNotStarted.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", ReadyState(42).String())
}
