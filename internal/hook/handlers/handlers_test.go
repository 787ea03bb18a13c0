package handlers

import (
	"context"
	"testing"

	"rama/internal/hook"
)

func TestOfflineHandler_DeniesSelectedCapabilities(t *testing.T) {
	m := hook.NewManager()
	m.Register(NewOfflineHandler("synthesize_audio"))

	fb, err := m.Trigger(context.Background(), hook.NewHookData(hook.BeforeCapabilityCall, "synthesize_audio"))
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if fb.Allow {
		t.Error("Expected synthesize_audio to be denied")
	}
	if fb.Message != "offline mode" {
		t.Errorf("Unexpected message: %q", fb.Message)
	}

	fb, _ = m.Trigger(context.Background(), hook.NewHookData(hook.BeforeCapabilityCall, "search_papers"))
	if !fb.Allow {
		t.Error("Expected search_papers to be allowed")
	}
}

func TestStatsHandler_Counts(t *testing.T) {
	h := NewStatsHandler()
	m := hook.NewManager()
	m.Register(h)
	ctx := context.Background()

	m.Notify(ctx, hook.NewHookData(hook.OnProviderReady, ""))
	m.Notify(ctx, hook.NewHookData(hook.AfterCapabilityCall, "search_papers").Set(hook.KeySource, "live"))
	m.Notify(ctx, hook.NewHookData(hook.OnFallback, "create_mindmap").Set(hook.KeyReason, "timeout"))
	m.Notify(ctx, hook.NewHookData(hook.AfterCapabilityCall, "create_mindmap").Set(hook.KeySource, "fallback"))
	m.Notify(ctx, hook.NewHookData(hook.OnProviderStopped, ""))

	snap := h.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Expected 2 capabilities, got %d", len(snap))
	}
	if snap[0].Capability != "create_mindmap" || snap[0].Fallback != 1 || snap[0].Reasons[0] != "timeout" {
		t.Errorf("Unexpected mindmap stats: %+v", snap[0])
	}
	if snap[1].Capability != "search_papers" || snap[1].Live != 1 {
		t.Errorf("Unexpected search stats: %+v", snap[1])
	}
	if h.ProviderStarts() != 1 || h.ProviderStops() != 1 {
		t.Errorf("Unexpected lifecycle counts: %d/%d", h.ProviderStarts(), h.ProviderStops())
	}
}
