package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is how long to wait for graceful shutdown
	defaultShutdownTimeout = 5 * time.Second

	// maxLineSize bounds a single protocol line
	maxLineSize = 10 * 1024 * 1024

	// pipeCloseDelay is how long Close waits after the kill before closing the pipes itself
	pipeCloseDelay = time.Second
)

// Option customizes a StdioTransport
type Option func(*StdioTransport)

// WithDir sets the working directory of the process
func WithDir(dir string) Option {
	return func(t *StdioTransport) {
		t.dir = dir
	}
}

// WithLogger sets the logger used for lifecycle events and stderr lines
func WithLogger(l *zap.Logger) Option {
	return func(t *StdioTransport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithShutdownTimeout bounds how long Close waits before killing the process
func WithShutdownTimeout(d time.Duration) Option {
	return func(t *StdioTransport) {
		if d > 0 {
			t.shutdownTimeout = d
		}
	}
}

// StdioTransport implements Transport via stdin/stdout of a child process
type StdioTransport struct {
	command         string
	args            []string
	env             map[string]string
	dir             string
	shutdownTimeout time.Duration
	log             *zap.Logger

	mu      sync.Mutex
	writeMu sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.Closer
	stderr  io.Closer

	lines   chan []byte
	readErr error // set before lines is closed
	done    chan struct{}
	exited  chan struct{}
	waitErr error // set before exited is closed

	wg sync.WaitGroup
}

// NewStdioTransport creates a new stdio transport
// command: executable name (e.g., "rama-provider", "/path/to/server")
// args: command arguments
// env: additional environment variables (merged with os.Environ())
func NewStdioTransport(command string, args []string, env map[string]string, opts ...Option) *StdioTransport {
	t := &StdioTransport{
		command:         command,
		args:            args,
		env:             env,
		shutdownTimeout: defaultShutdownTimeout,
		log:             zap.NewNop(),
		lines:           make(chan []byte),
		done:            make(chan struct{}),
		exited:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start spawns the child process and the stdout/stderr readers
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.started {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &SpawnError{Command: t.command, Err: err}
	}

	// The process outlives the ctx passed to Start; procCtx is cancelled by Close
	procCtx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(procCtx, t.command, t.args...)
	cmd.Dir = t.dir
	cmd.WaitDelay = t.shutdownTimeout

	cmd.Env = os.Environ()
	for key, value := range t.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return &SpawnError{Command: t.command, Err: fmt.Errorf("failed to create stdin pipe: %w", err)}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return &SpawnError{Command: t.command, Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return &SpawnError{Command: t.command, Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return &SpawnError{Command: t.command, Err: err}
	}

	t.cmd = cmd
	t.stdin = stdin
	t.stdout = stdout
	t.stderr = stderr
	t.cancel = cancel
	t.started = true

	stderrDone := make(chan struct{})
	t.wg.Add(2)
	go t.readStderr(stderr, stderrDone)
	go t.readStdout(stdout, stderrDone)

	t.log.Debug("provider process started",
		zap.String("command", t.command),
		zap.Int("pid", cmd.Process.Pid))

	return nil
}

// readStderr forwards provider diagnostics to the logger
func (t *StdioTransport) readStderr(stderr io.Reader, stderrDone chan<- struct{}) {
	defer t.wg.Done()
	defer close(stderrDone)

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		t.log.Debug("provider stderr", zap.String("line", scanner.Text()))
	}
}

// readStdout delivers complete lines to ReadLine and reaps the process once output ends
func (t *StdioTransport) readStdout(stdout io.Reader, stderrDone <-chan struct{}) {
	defer t.wg.Done()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	readErr := ErrEndOfStream
scan:
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		select {
		case t.lines <- append([]byte(nil), line...):
		case <-t.done:
			readErr = ErrClosed
			break scan
		}
	}

	if err := scanner.Err(); err != nil && readErr == ErrEndOfStream {
		readErr = &TransportError{Op: "read", Err: err}
	}

	t.readErr = readErr
	close(t.lines)

	// Wait must not run before all reads from the pipes are done
	<-stderrDone
	t.waitErr = t.cmd.Wait()
	close(t.exited)

	t.log.Debug("provider process exited", zap.Error(t.waitErr))
}

// WriteLine writes line followed by '\n' to the process stdin
func (t *StdioTransport) WriteLine(ctx context.Context, line []byte) error {
	t.mu.Lock()
	closed, started, stdin := t.closed, t.started, t.stdin
	t.mu.Unlock()

	if closed {
		return &TransportError{Op: "write", Err: ErrClosed}
	}
	if !started {
		return &TransportError{Op: "write", Err: ErrNotStarted}
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	select {
	case <-t.exited:
		return &TransportError{Op: "write", Err: ErrProcessExited}
	default:
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	// A full pipe blocks Write; the goroutine is released when Close closes stdin
	errCh := make(chan error, 1)
	go func() {
		_, err := stdin.Write(buf)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadLine returns the next non-empty line from the process stdout
func (t *StdioTransport) ReadLine(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		return nil, &TransportError{Op: "read", Err: ErrNotStarted}
	}

	select {
	case line, ok := <-t.lines:
		if !ok {
			return nil, t.readErr
		}
		return line, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Exited returns a channel closed when the process has exited
func (t *StdioTransport) Exited() <-chan struct{} {
	return t.exited
}

// Pid returns the process id, or 0 before Start
func (t *StdioTransport) Pid() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cmd == nil || t.cmd.Process == nil {
		return 0
	}
	return t.cmd.Process.Pid
}

// Close terminates the transport and cleans up resources
// Implements graceful shutdown: EOF on stdin, then SIGTERM, then kill
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	started := t.started
	t.mu.Unlock()

	close(t.done)

	if !started {
		return nil
	}

	// Close stdin to signal EOF to child process
	_ = t.stdin.Close()

	grace := t.shutdownTimeout / 2
	if !t.waitExit(grace) {
		t.log.Debug("provider ignored stdin EOF, sending SIGTERM")
		_ = t.cmd.Process.Signal(syscall.SIGTERM)

		if !t.waitExit(t.shutdownTimeout - grace) {
			t.log.Warn("provider did not exit in time, killing it",
				zap.Duration("timeout", t.shutdownTimeout))
			t.cancel()
			if !t.waitExit(pipeCloseDelay) {
				// A grandchild still holds the output pipes open
				t.log.Warn("provider output still open after kill, closing pipes")
				_ = t.stdout.Close()
				_ = t.stderr.Close()
				<-t.exited
			}
		}
	}

	t.cancel()
	t.wg.Wait()

	// Non-zero exit codes and our own signals are expected during shutdown
	var exitErr *exec.ExitError
	if t.waitErr != nil && !errors.As(t.waitErr, &exitErr) && !errors.Is(t.waitErr, exec.ErrWaitDelay) {
		return fmt.Errorf("process wait failed: %w", t.waitErr)
	}
	return nil
}

func (t *StdioTransport) waitExit(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-t.exited:
		return true
	case <-timer.C:
		return false
	}
}

var _ Transport = (*StdioTransport)(nil)
