package handlers

import (
	"context"

	"rama/internal/hook"
)

// OfflineHandler denies every capability call so the fallback answers it.
// Capabilities restricts it to the named capabilities (empty = all).
type OfflineHandler struct {
	capabilities map[string]bool
}

// NewOfflineHandler creates a handler that keeps the given capabilities off the provider
func NewOfflineHandler(capabilities ...string) *OfflineHandler {
	names := make(map[string]bool)
	for _, c := range capabilities {
		names[c] = true
	}
	return &OfflineHandler{capabilities: names}
}

func (h *OfflineHandler) Name() string {
	return "offline"
}

func (h *OfflineHandler) Points() []hook.HookPoint {
	return []hook.HookPoint{hook.BeforeCapabilityCall}
}

func (h *OfflineHandler) Priority() int {
	return 100 // High priority - runs first
}

func (h *OfflineHandler) Handle(ctx context.Context, data *hook.HookData) (*hook.Feedback, error) {
	if len(h.capabilities) > 0 && !h.capabilities[data.Capability] {
		return hook.AllowFeedback(), nil
	}
	return hook.DenyFeedback("offline mode"), nil
}
