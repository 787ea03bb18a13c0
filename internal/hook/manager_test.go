package hook

import (
	"context"
	"errors"
	"testing"
)

type recordingHandler struct {
	name     string
	priority int
	deny     bool
	err      error
	calls    *[]string
}

func (h *recordingHandler) Name() string        { return h.name }
func (h *recordingHandler) Points() []HookPoint { return []HookPoint{BeforeCapabilityCall} }
func (h *recordingHandler) Priority() int       { return h.priority }

func (h *recordingHandler) Handle(ctx context.Context, data *HookData) (*Feedback, error) {
	*h.calls = append(*h.calls, h.name)
	if h.err != nil {
		return nil, h.err
	}
	if h.deny {
		return DenyFeedback(h.name + " says no"), nil
	}
	return AllowFeedback(), nil
}

func TestManager_PriorityOrderAndDeny(t *testing.T) {
	var calls []string
	m := NewManager()
	m.Register(&recordingHandler{name: "low", priority: 1, calls: &calls})
	m.Register(&recordingHandler{name: "high", priority: 10, deny: true, calls: &calls})

	fb, err := m.Trigger(context.Background(), NewHookData(BeforeCapabilityCall, "search_papers"))
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if fb.Allow || fb.Message != "high says no" {
		t.Errorf("Unexpected feedback: %+v", fb)
	}
	if len(calls) != 1 || calls[0] != "high" {
		t.Errorf("Expected only the high priority handler to run, got %v", calls)
	}

	names := m.ListHandlers(BeforeCapabilityCall)
	if len(names) != 2 || names[0] != "high" {
		t.Errorf("Unexpected handler order: %v", names)
	}
}

func TestManager_HandlerError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	m := NewManager()
	m.Register(&recordingHandler{name: "broken", err: boom, calls: &calls})

	if _, err := m.Trigger(context.Background(), NewHookData(BeforeCapabilityCall, "x")); !errors.Is(err, boom) {
		t.Errorf("Expected handler error, got %v", err)
	}
}

func TestManager_NilIsUsable(t *testing.T) {
	var m *Manager

	fb, err := m.Trigger(context.Background(), NewHookData(OnFallback, "x"))
	if err != nil || !fb.Allow {
		t.Errorf("Expected allow from nil manager, got %+v, %v", fb, err)
	}
	if m.HasHandlers(OnFallback) {
		t.Error("Nil manager has no handlers")
	}
	if names := m.ListHandlers(OnFallback); len(names) != 0 {
		t.Errorf("Nil manager lists handlers %v", names)
	}
	m.Notify(context.Background(), NewHookData(OnProviderReady, ""))
}
