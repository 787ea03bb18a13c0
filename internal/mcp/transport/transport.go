package transport

import (
	"context"
	"errors"
	"fmt"
)

// Transport is a byte-level, line-oriented conduit to a provider process.
// It has no knowledge of the messages it carries.
type Transport interface {
	// Start spawns the process and begins reading its output
	Start(ctx context.Context) error

	// WriteLine writes one line followed by a newline
	WriteLine(ctx context.Context, line []byte) error

	// ReadLine blocks until one full line is available, the stream ends, or ctx is done
	ReadLine(ctx context.Context) ([]byte, error)

	// Exited is closed once the process has exited
	Exited() <-chan struct{}

	// Close terminates the process and releases its resources
	Close() error
}

var (
	// ErrEndOfStream is returned by ReadLine once the process output is exhausted
	ErrEndOfStream = errors.New("end of stream")

	// ErrNotStarted is returned when the transport is used before Start
	ErrNotStarted = errors.New("transport not started")

	// ErrClosed is returned when the transport is used after Close
	ErrClosed = errors.New("transport closed")

	// ErrProcessExited is returned when writing to a process that has exited
	ErrProcessExited = errors.New("process exited")
)

// SpawnError reports that the provider executable could not be started
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// TransportError reports an I/O failure on one of the process streams
type TransportError struct {
	Op  string // "write" or "read"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
