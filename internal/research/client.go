// Package research is the capability client: one call per research capability,
// served by the provider process when it is usable and by Fallback otherwise.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rama/internal/hook"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source tells where a result came from
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

var (
	// ErrNoProvider is the fallback reason of a client built without a provider
	ErrNoProvider = errors.New("no provider configured")

	// ErrSkipped is the fallback reason when a hook vetoed the live call
	ErrSkipped = errors.New("live call skipped by hook")

	// ErrFallbackDefect reports a bug in the fallback generator. It is the only
	// error a capability call returns besides caller cancellation.
	ErrFallbackDefect = errors.New("fallback provider defect")
)

// Provider is the live path: a lock-step JSON-RPC peer that can be (re)started
type Provider interface {
	EnsureReady(ctx context.Context) error
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
	Stop()
}

// Result is a capability payload plus its provenance.
// Data has the same structure whether it came from the provider or the fallback.
type Result struct {
	Capability string
	Data       map[string]any
	Source     Source
	Reason     error // why the fallback was used; nil for live results
	CallID     string
	Duration   time.Duration
}

// Live reports whether the provider produced the result
func (r *Result) Live() bool {
	return r.Source == SourceLive
}

// Decode converts Data into a typed payload such as *SearchResult
func (r *Result) Decode(v any) error {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s result: %w", r.Capability, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", r.Capability, err)
	}
	return nil
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHooks sets the hook manager fired around every capability call
func WithHooks(m *hook.Manager) Option {
	return func(c *Client) {
		c.hooks = m
	}
}

// WithSearchDefaults sets the sources and max_results used when a search leaves them empty
func WithSearchDefaults(sources []string, maxResults int) Option {
	return func(c *Client) {
		if len(sources) > 0 {
			c.sources = append([]string(nil), sources...)
		}
		if maxResults > 0 {
			c.maxResults = maxResults
		}
	}
}

// Client is the capability façade. It is safe for concurrent use; calls to
// the provider queue behind each other. A capability call whose ctx is done
// before an answer exists returns ctx.Err() rather than a fallback result.
type Client struct {
	provider   Provider
	fallback   Fallback
	log        *zap.Logger
	hooks      *hook.Manager
	sources    []string
	maxResults int
}

// NewClient creates a client. A nil provider serves every call from the fallback.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		log:        zap.NewNop(),
		sources:    DefaultSources,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close stops the provider process
func (c *Client) Close() {
	if c.provider != nil {
		c.provider.Stop()
	}
}

// SearchPapers runs search_papers
func (c *Client) SearchPapers(ctx context.Context, args SearchArgs) (*Result, error) {
	args = args.WithDefaults(c.sources, c.maxResults)
	return c.invoke(ctx, CapSearchPapers, args, func() any {
		return c.fallback.SearchPapers(args)
	})
}

// GenerateWorkspace runs generate_workspace
func (c *Client) GenerateWorkspace(ctx context.Context, args WorkspaceArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapGenerateWorkspace, args, func() any {
		return c.fallback.GenerateWorkspace(args)
	})
}

// CreateMindmap runs create_mindmap
func (c *Client) CreateMindmap(ctx context.Context, args MindmapArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapCreateMindmap, args, func() any {
		return c.fallback.CreateMindmap(args)
	})
}

// CreateInteractiveMindmap runs create_interactive_mindmap
func (c *Client) CreateInteractiveMindmap(ctx context.Context, args InteractiveMindmapArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapCreateInteractiveMindmap, args, func() any {
		return c.fallback.CreateInteractiveMindmap(args)
	})
}

// GenerateComprehensiveSummaries runs generate_comprehensive_summaries
func (c *Client) GenerateComprehensiveSummaries(ctx context.Context, args SummariesArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapGenerateSummaries, args, func() any {
		return c.fallback.GenerateComprehensiveSummaries(args)
	})
}

// GenerateIEEECitations runs generate_ieee_citations
func (c *Client) GenerateIEEECitations(ctx context.Context, args CitationArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapGenerateIEEECitations, args, func() any {
		return c.fallback.GenerateIEEECitations(args)
	})
}

// GenerateSamplePaper runs generate_sample_paper
func (c *Client) GenerateSamplePaper(ctx context.Context, args SamplePaperArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapGenerateSamplePaper, args, func() any {
		return c.fallback.GenerateSamplePaper(args)
	})
}

// SynthesizeAudio runs synthesize_audio
func (c *Client) SynthesizeAudio(ctx context.Context, args AudioArgs) (*Result, error) {
	args = args.WithDefaults()
	return c.invoke(ctx, CapSynthesizeAudio, args, func() any {
		return c.fallback.SynthesizeAudio(args)
	})
}

// invoke tries the provider and, on any failure, answers from fallback.
// Provider errors are recorded in Result.Reason, never returned.
func (c *Client) invoke(ctx context.Context, capability string, args any, fallback func() any) (*Result, error) {
	callID := uuid.NewString()
	start := time.Now()
	log := c.log.With(zap.String("capability", capability), zap.String("call_id", callID))

	data, reason := c.attemptLive(ctx, capability, callID, args)

	result := &Result{
		Capability: capability,
		CallID:     callID,
	}

	if reason == nil {
		result.Source = SourceLive
		result.Data = data
	} else {
		// The caller gave up; a fallback answer would go nowhere
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obj, err := c.runFallback(log, capability, fallback)
		if err != nil {
			return nil, err
		}
		result.Source = SourceFallback
		result.Data = obj
		result.Reason = reason

		log.Warn("capability served by fallback", zap.Error(reason))
		c.hooks.Notify(ctx, hook.NewHookData(hook.OnFallback, capability).
			Set(hook.KeyCallID, callID).
			Set(hook.KeyReason, reason.Error()))
	}

	result.Duration = time.Since(start)
	log.Debug("capability call finished",
		zap.String("source", string(result.Source)),
		zap.Duration("duration", result.Duration))

	c.hooks.Notify(ctx, hook.NewHookData(hook.AfterCapabilityCall, capability).
		Set(hook.KeyCallID, callID).
		Set(hook.KeySource, string(result.Source)).
		Set(hook.KeyDuration, result.Duration))

	return result, nil
}

// attemptLive returns the decoded payload, or the reason the live path failed
func (c *Client) attemptLive(ctx context.Context, capability, callID string, args any) (map[string]any, error) {
	if c.provider == nil {
		return nil, ErrNoProvider
	}

	feedback, err := c.hooks.Trigger(ctx, hook.NewHookData(hook.BeforeCapabilityCall, capability).
		Set(hook.KeyCallID, callID))
	if err != nil {
		return nil, fmt.Errorf("before-call hook failed: %w", err)
	}
	if !feedback.Allow {
		return nil, fmt.Errorf("%w: %s", ErrSkipped, feedback.Message)
	}

	if err := c.provider.EnsureReady(ctx); err != nil {
		return nil, err
	}

	raw, err := c.provider.Call(ctx, "tools/call", map[string]any{
		"name":      capability,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	payload, err := decodeToolResult(capability, raw)
	if err != nil {
		return nil, err
	}

	if err := CheckShape(capability, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	IsError bool `json:"isError"`
}

// decodeToolResult extracts result.content[0].text and parses it as a JSON object
func decodeToolResult(capability string, raw json.RawMessage) (map[string]any, error) {
	var tr toolResult
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, &ShapeError{Capability: capability, Reason: "result is not a tool result", Err: err}
	}

	if len(tr.Content) == 0 {
		return nil, &ShapeError{Capability: capability, Reason: "result has no content"}
	}
	first := tr.Content[0]

	if tr.IsError {
		return nil, &ShapeError{Capability: capability, Reason: "provider reported a tool error: " + Truncate(first.Text, 200)}
	}
	if first.Type != "text" {
		return nil, &ShapeError{Capability: capability, Reason: fmt.Sprintf("content[0] has type %q, want text", first.Type)}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(first.Text), &payload); err != nil {
		return nil, &ShapeError{Capability: capability, Reason: "content[0].text is not JSON", Err: err}
	}
	if payload == nil {
		return nil, &ShapeError{Capability: capability, Reason: "content[0].text is not a JSON object"}
	}
	return payload, nil
}

// runFallback builds the fallback payload and converts it to its JSON object form
func (c *Client) runFallback(log *zap.Logger, capability string, build func() any) (obj map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("fallback generator panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			obj, err = nil, fmt.Errorf("%w: %s: %v", ErrFallbackDefect, capability, r)
		}
	}()

	data, err := json.Marshal(build())
	if err != nil {
		log.Error("fallback payload cannot be encoded", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrFallbackDefect, capability, err)
	}
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		log.Error("fallback payload is not an object", zap.Error(err))
		return nil, fmt.Errorf("%w: %s: payload is not an object", ErrFallbackDefect, capability)
	}
	return obj, nil
}
