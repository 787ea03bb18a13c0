package handlers

import (
	"context"
	"sort"
	"sync"

	"rama/internal/hook"
)

// CapabilityStats is the tally for one capability
type CapabilityStats struct {
	Capability string
	Live       int
	Fallback   int
	Reasons    []string
}

// StatsHandler counts live and fallback results per capability
type StatsHandler struct {
	mu    sync.Mutex
	stats map[string]*CapabilityStats

	ready   int
	stopped int
}

// NewStatsHandler creates an empty stats handler
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{stats: make(map[string]*CapabilityStats)}
}

func (h *StatsHandler) Name() string {
	return "stats"
}

func (h *StatsHandler) Points() []hook.HookPoint {
	return []hook.HookPoint{
		hook.AfterCapabilityCall,
		hook.OnFallback,
		hook.OnProviderReady,
		hook.OnProviderStopped,
	}
}

func (h *StatsHandler) Priority() int {
	return 0
}

func (h *StatsHandler) Handle(ctx context.Context, data *hook.HookData) (*hook.Feedback, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch data.Point {
	case hook.OnProviderReady:
		h.ready++
	case hook.OnProviderStopped:
		h.stopped++
	case hook.OnFallback:
		s := h.entry(data.Capability)
		if reason := data.GetString(hook.KeyReason); reason != "" {
			s.Reasons = append(s.Reasons, reason)
		}
	case hook.AfterCapabilityCall:
		s := h.entry(data.Capability)
		if data.GetString(hook.KeySource) == "live" {
			s.Live++
		} else {
			s.Fallback++
		}
	}
	return hook.AllowFeedback(), nil
}

func (h *StatsHandler) entry(capability string) *CapabilityStats {
	s, ok := h.stats[capability]
	if !ok {
		s = &CapabilityStats{Capability: capability}
		h.stats[capability] = s
	}
	return s
}

// Snapshot returns the tallies sorted by capability name
func (h *StatsHandler) Snapshot() []CapabilityStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]CapabilityStats, 0, len(h.stats))
	for _, s := range h.stats {
		c := *s
		c.Reasons = append([]string(nil), s.Reasons...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Capability < out[j].Capability
	})
	return out
}

// ProviderStarts returns how many times the provider became ready
func (h *StatsHandler) ProviderStarts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// ProviderStops returns how many times a running provider was stopped
func (h *StatsHandler) ProviderStops() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}
