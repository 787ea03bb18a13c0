package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rama/internal/config"
	"rama/internal/hook"
	"rama/internal/mcp/jsonrpc"
	"rama/internal/mcp/transport"

	"go.uber.org/zap"
)

const (
	methodInitialize  = "initialize"
	methodInitialized = "notifications/initialized"
)

// TransportFactory creates a fresh, unstarted transport for each process life
type TransportFactory func() transport.Transport

// SupervisorConfig holds the handshake identity and the timeouts
type SupervisorConfig struct {
	ClientName      string
	ClientVersion   string
	ProtocolVersion string
	StartTimeout    time.Duration
	CallTimeout     time.Duration
	Disabled        bool
}

// ServerInfo is what the provider reported about itself during initialize
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      *ServerInfo    `json:"serverInfo"`
}

// SupervisorOption customizes a Supervisor
type SupervisorOption func(*Supervisor)

// WithLogger sets the supervisor logger
func WithLogger(l *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHooks sets the hook manager notified about provider lifecycle changes
func WithHooks(m *hook.Manager) SupervisorOption {
	return func(s *Supervisor) {
		s.hooks = m
	}
}

// Supervisor owns at most one provider process and speaks lock-step JSON-RPC with it.
//
// All exchanges with the process happen under mu, so concurrent callers queue
// and a response is always read by the caller that sent the request. Any
// failure that may leave unread bytes on the stream stops the process; the
// next EnsureReady spawns a fresh one.
type Supervisor struct {
	cfg          SupervisorConfig
	newTransport TransportFactory
	log          *zap.Logger
	hooks        *hook.Manager

	mu   sync.Mutex
	tr   transport.Transport
	corr *jsonrpc.Correlator

	stateMu    sync.RWMutex
	state      ReadyState
	serverInfo *ServerInfo
	lastErr    error
}

// NewSupervisor creates a supervisor in the NotStarted state. No process is spawned yet.
func NewSupervisor(cfg SupervisorConfig, factory TransportFactory, opts ...SupervisorOption) *Supervisor {
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = 10 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 10 * time.Second
	}
	if cfg.ProtocolVersion == "" {
		cfg.ProtocolVersion = "2024-11-05"
	}

	s := &Supervisor{
		cfg:          cfg,
		newTransport: factory,
		log:          zap.NewNop(),
		state:        StateNotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSupervisorFromConfig wires a stdio supervisor from the loaded configuration
func NewSupervisorFromConfig(cfg *config.Config, opts ...SupervisorOption) *Supervisor {
	s := NewSupervisor(SupervisorConfig{
		ClientName:      cfg.Client.Name,
		ClientVersion:   cfg.Client.Version,
		ProtocolVersion: cfg.Client.ProtocolVersion,
		StartTimeout:    cfg.Client.StartTimeout.Std(),
		CallTimeout:     cfg.Client.CallTimeout.Std(),
		Disabled:        cfg.Provider.Disabled,
	}, nil, opts...)

	s.newTransport = CommandFactory(cfg.Provider, cfg.Client.ShutdownTimeout.Std(), s.log)
	return s
}

// CommandFactory returns a factory spawning the configured provider command over stdio
func CommandFactory(pc config.ProviderConfig, shutdownTimeout time.Duration, log *zap.Logger) TransportFactory {
	// Expand environment variables in the config
	env := config.ExpandEnvMap(pc.Env)

	return func() transport.Transport {
		return transport.NewStdioTransport(pc.Command, pc.Args, env,
			transport.WithDir(pc.Dir),
			transport.WithLogger(log.Named("provider")),
			transport.WithShutdownTimeout(shutdownTimeout),
		)
	}
}

// State returns the current ReadyState without waiting for in-flight calls
func (s *Supervisor) State() ReadyState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// ServerInfo returns the provider identity from the last successful handshake, or nil
func (s *Supervisor) ServerInfo() *ServerInfo {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.serverInfo
}

// LastError returns the cause of the most recent failure, or nil
func (s *Supervisor) LastError() error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastErr
}

func (s *Supervisor) setState(state ReadyState, info *ServerInfo, cause error) {
	s.stateMu.Lock()
	prev := s.state
	s.state = state
	s.serverInfo = info
	if cause != nil {
		s.lastErr = cause
	}
	s.stateMu.Unlock()

	if prev != state {
		s.log.Debug("provider state changed",
			zap.Stringer("from", prev),
			zap.Stringer("to", state))
	}
}

// EnsureReady brings the provider to Ready, spawning and initializing it if needed.
// Errors are *InitializationFailedError.
func (s *Supervisor) EnsureReady(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureReadyLocked(ctx)
}

func (s *Supervisor) ensureReadyLocked(ctx context.Context) error {
	if s.tr != nil && s.State() == StateReady {
		select {
		case <-s.tr.Exited():
			s.log.Warn("provider exited on its own, restarting")
			s.stopLocked(transport.ErrProcessExited)
		default:
			return nil
		}
	}

	if s.cfg.Disabled {
		s.setState(StateFailed, nil, ErrProviderDisabled)
		return &InitializationFailedError{Err: ErrProviderDisabled}
	}
	if s.newTransport == nil {
		return s.failLocked(ctx, errors.New("no transport configured"))
	}

	s.setState(StateStarting, nil, nil)

	tr := s.newTransport()
	if err := tr.Start(ctx); err != nil {
		return s.failLocked(ctx, err)
	}
	s.tr = tr
	s.corr = jsonrpc.NewCorrelator()

	params := map[string]any{
		"protocolVersion": s.cfg.ProtocolVersion,
		"capabilities": map[string]any{
			"resources": map[string]any{},
			"tools":     map[string]any{},
		},
		"clientInfo": map[string]any{
			"name":    s.cfg.ClientName,
			"version": s.cfg.ClientVersion,
		},
	}

	raw, err := s.roundTripLocked(ctx, methodInitialize, params, s.cfg.StartTimeout)
	if err != nil {
		return s.failLocked(ctx, err)
	}

	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return s.failLocked(ctx, &ProtocolError{
			Method: methodInitialize,
			Err:    fmt.Errorf("initialize result is not an object: %w", err),
		})
	}

	line, err := jsonrpc.EncodeNotification(methodInitialized, nil)
	if err != nil {
		return s.failLocked(ctx, err)
	}

	notifyCtx, cancel := context.WithTimeout(ctx, s.cfg.StartTimeout)
	err = s.tr.WriteLine(notifyCtx, line)
	cancel()
	if err != nil {
		return s.failLocked(ctx, err)
	}

	s.setState(StateReady, result.ServerInfo, nil)

	fields := []zap.Field{zap.String("protocol_version", result.ProtocolVersion)}
	if result.ServerInfo != nil {
		fields = append(fields,
			zap.String("server", result.ServerInfo.Name),
			zap.String("server_version", result.ServerInfo.Version))
	}
	s.log.Info("provider ready", fields...)

	data := hook.NewHookData(hook.OnProviderReady, "")
	if result.ServerInfo != nil {
		data.Set(hook.KeyServer, result.ServerInfo.Name)
	}
	s.hooks.Notify(ctx, data)

	return nil
}

// failLocked tears down a half-started process and records Failed
func (s *Supervisor) failLocked(ctx context.Context, cause error) error {
	if s.tr != nil {
		if err := s.tr.Close(); err != nil {
			s.log.Debug("closing failed provider", zap.Error(err))
		}
		s.tr = nil
		s.corr = nil
	}

	s.setState(StateFailed, nil, cause)
	s.log.Warn("provider initialization failed", zap.Error(cause))
	s.hooks.Notify(ctx, hook.NewHookData(hook.OnProviderFailed, "").Set(hook.KeyReason, cause.Error()))

	return &InitializationFailedError{Err: cause}
}

// Stop terminates the provider process, if any, and returns to NotStarted.
// It waits for an in-flight call to finish first.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(nil)
}

func (s *Supervisor) stopLocked(reason error) {
	if s.tr == nil {
		return
	}

	if err := s.tr.Close(); err != nil {
		s.log.Debug("provider close returned error", zap.Error(err))
	}
	s.tr = nil
	s.corr = nil
	s.setState(StateNotStarted, nil, reason)

	data := hook.NewHookData(hook.OnProviderStopped, "")
	if reason != nil {
		data.Set(hook.KeyReason, reason.Error())
		s.log.Warn("provider stopped", zap.Error(reason))
	} else {
		s.log.Debug("provider stopped")
	}
	s.hooks.Notify(context.Background(), data)
}

// Call sends one request and returns the raw result of its response.
//
// The provider is brought to Ready first. A JSON-RPC error payload is
// returned as *jsonrpc.Error and leaves the process running. Timeouts,
// transport faults and protocol violations stop the process before returning.
func (s *Supervisor) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureReadyLocked(ctx); err != nil {
		return nil, err
	}

	result, err := s.roundTripLocked(ctx, method, params, s.cfg.CallTimeout)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			s.stopLocked(err)
		}
		return nil, err
	}
	return result, nil
}

// roundTripLocked writes one request and reads until its response arrives.
// Lines carrying a method are provider notifications and are skipped.
func (s *Supervisor) roundTripLocked(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	if s.tr == nil || s.corr == nil {
		return nil, ErrNotReady
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	id, line, err := s.corr.Begin(method, params)
	if err != nil {
		return nil, err
	}

	if err := s.tr.WriteLine(callCtx, line); err != nil {
		s.corr.Abandon(id)
		return nil, s.wrapWait(method, timeout, err)
	}

	for {
		raw, err := s.tr.ReadLine(callCtx)
		if err != nil {
			s.corr.Abandon(id)
			return nil, s.wrapWait(method, timeout, err)
		}

		resp, err := jsonrpc.DecodeResponse(raw)
		if errors.Is(err, jsonrpc.ErrNotResponse) {
			s.log.Debug("skipping provider message", zap.String("method", method), zap.Error(err))
			continue
		}
		if err != nil {
			s.corr.Abandon(id)
			return nil, &ProtocolError{Method: method, Err: err}
		}

		if err := s.corr.Match(resp, id); err != nil {
			s.corr.Abandon(id)
			return nil, &ProtocolError{Method: method, Err: err}
		}

		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

func (s *Supervisor) wrapWait(method string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s: %w", method, timeout, err)
	}
	return fmt.Errorf("%s: %w", method, err)
}
