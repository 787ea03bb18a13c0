package hook

import (
	"context"
	"time"
)

// HookPoint defines when a hook is triggered
type HookPoint string

const (
	// Capability call hooks
	BeforeCapabilityCall HookPoint = "before_capability_call"
	AfterCapabilityCall  HookPoint = "after_capability_call"

	// OnFallback fires whenever a locally computed result replaces the live one
	OnFallback HookPoint = "on_fallback"

	// Provider lifecycle hooks
	OnProviderReady   HookPoint = "on_provider_ready"
	OnProviderStopped HookPoint = "on_provider_stopped"
	OnProviderFailed  HookPoint = "on_provider_failed"
)

// Well-known HookData keys
const (
	KeyCallID   = "call_id"
	KeySource   = "source"
	KeyReason   = "reason"
	KeyDuration = "duration"
	KeyServer   = "server"
)

// HookData carries context-specific information for hooks
type HookData struct {
	Point      HookPoint
	Timestamp  time.Time
	Capability string
	Data       map[string]any
}

// NewHookData creates a new HookData instance
func NewHookData(point HookPoint, capability string) *HookData {
	return &HookData{
		Point:      point,
		Timestamp:  time.Now(),
		Capability: capability,
		Data:       make(map[string]any),
	}
}

// Set sets a data field
func (d *HookData) Set(key string, value any) *HookData {
	d.Data[key] = value
	return d
}

// Get retrieves a data field
func (d *HookData) Get(key string) any {
	return d.Data[key]
}

// GetString retrieves a string data field
func (d *HookData) GetString(key string) string {
	if v, ok := d.Data[key].(string); ok {
		return v
	}
	return ""
}

// Feedback is returned by handlers to control execution flow
type Feedback struct {
	Allow   bool   // Whether to allow the operation to continue
	Message string // Optional message, used as the reason when denying
}

// AllowFeedback creates an allow feedback
func AllowFeedback() *Feedback {
	return &Feedback{Allow: true}
}

// DenyFeedback creates a deny feedback with message.
// Denying BeforeCapabilityCall skips the provider and serves the fallback.
func DenyFeedback(message string) *Feedback {
	return &Feedback{Allow: false, Message: message}
}

// Handler is the interface for hook handlers
type Handler interface {
	// Name returns the handler name
	Name() string

	// Points returns which hook points this handler listens to
	Points() []HookPoint

	// Handle processes the hook event and returns feedback
	Handle(ctx context.Context, data *HookData) (*Feedback, error)

	// Priority returns the handler priority (higher = earlier execution)
	Priority() int
}
