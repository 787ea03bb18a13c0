package hook

import (
	"context"
	"sort"
	"sync"
)

// Manager manages hook handlers and triggers.
// Trigger, Notify, HasHandlers and ListHandlers accept a nil *Manager, which
// has no handlers. Register needs one made by NewManager.
type Manager struct {
	handlers map[HookPoint][]Handler
	mu       sync.RWMutex
}

// NewManager creates a new hook manager
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[HookPoint][]Handler),
	}
}

// Register adds a handler to the manager
func (m *Manager) Register(handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, point := range handler.Points() {
		m.handlers[point] = append(m.handlers[point], handler)

		// Sort by priority (higher first)
		hs := m.handlers[point]
		sort.SliceStable(hs, func(i, j int) bool {
			return hs[i].Priority() > hs[j].Priority()
		})
	}
}

// Trigger executes all handlers for a hook point
// Returns the combined feedback - if any handler denies, the result denies
func (m *Manager) Trigger(ctx context.Context, data *HookData) (*Feedback, error) {
	if m == nil {
		return AllowFeedback(), nil
	}

	m.mu.RLock()
	handlers := m.handlers[data.Point]
	m.mu.RUnlock()

	// Execute handlers in priority order
	for _, handler := range handlers {
		feedback, err := handler.Handle(ctx, data)
		if err != nil {
			return nil, err
		}

		// If handler denies, stop and return
		if feedback != nil && !feedback.Allow {
			return feedback, nil
		}
	}

	return AllowFeedback(), nil
}

// Notify triggers observer-only points where feedback and errors do not matter
func (m *Manager) Notify(ctx context.Context, data *HookData) {
	_, _ = m.Trigger(ctx, data)
}

// HasHandlers checks if there are handlers for a hook point
func (m *Manager) HasHandlers(point HookPoint) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[point]) > 0
}

// ListHandlers returns handler names for a hook point
func (m *Manager) ListHandlers(point HookPoint) []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	handlers := m.handlers[point]
	names := make([]string, len(handlers))
	for i, h := range handlers {
		names[i] = h.Name()
	}
	return names
}
