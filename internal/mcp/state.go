package mcp

// ReadyState is the lifecycle state of the provider process
type ReadyState int32

const (
	StateNotStarted ReadyState = iota
	StateStarting
	StateReady
	StateFailed
)

func (s ReadyState) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
