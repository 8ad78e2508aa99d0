package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/posync/internal/client/probe"
	"github.com/dmitrijs2005/posync/internal/logging"
)

var (
	ErrAlreadyRunning = errors.New("backend process already running")
	ErrExited         = errors.New("backend process exited during startup")
	ErrStartTimeout   = errors.New("backend did not become ready in time")
)

// ExecOptions describes how to launch the backend as a child process.
type ExecOptions struct {
	Command      string
	Dir          string
	Env          []string
	StartTimeout time.Duration
	PollInterval time.Duration
	StopGrace    time.Duration
}

// ExecController is a Controller backed by a child process. Start returns
// once the readiness probe reports running; Stop returns once the process
// has exited.
type ExecController struct {
	opts   ExecOptions
	name   string
	args   []string
	ready  func(ctx context.Context) probe.BackendStatus
	logger logging.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

var _ Controller = (*ExecController)(nil)

func NewExecController(opts ExecOptions, ready func(ctx context.Context) probe.BackendStatus, logger logging.Logger) (*ExecController, error) {
	fields := strings.Fields(opts.Command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty backend command")
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = 10 * time.Second
	}
	return &ExecController{
		opts:   opts,
		name:   fields[0],
		args:   fields[1:],
		ready:  ready,
		logger: logger.With("component", "exec", "command", fields[0]),
	}, nil
}

// Running reports whether the child process is alive.
func (e *ExecController) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.aliveLocked()
}

func (e *ExecController) aliveLocked() bool {
	if e.cmd == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

func (e *ExecController) Start(ctx context.Context) (probe.BackendStatus, error) {
	e.mu.Lock()
	if e.aliveLocked() {
		e.mu.Unlock()
		return probe.Down, ErrAlreadyRunning
	}

	cmd := exec.Command(e.name, e.args...)
	cmd.Dir = e.opts.Dir
	cmd.Env = append(os.Environ(), e.opts.Env...)
	stdout := newLineLogger(e.logger, "stdout")
	stderr := newLineLogger(e.logger, "stderr")
	cmd.Stdout, cmd.Stderr = stdout, stderr

	if err := cmd.Start(); err != nil {
		e.mu.Unlock()
		_ = stdout.Close()
		_ = stderr.Close()
		return probe.Down, fmt.Errorf("start %s: %w", e.name, err)
	}
	done := make(chan struct{})
	e.cmd, e.done = cmd, done
	e.mu.Unlock()

	go func() {
		err := cmd.Wait()
		_ = stdout.Close()
		_ = stderr.Close()
		e.logger.Info(context.Background(), "backend process exited", "pid", cmd.Process.Pid, "error", err)
		close(done)
	}()
	e.logger.Info(ctx, "backend process started", "pid", cmd.Process.Pid)

	return e.awaitReady(ctx, done)
}

func (e *ExecController) awaitReady(ctx context.Context, done <-chan struct{}) (probe.BackendStatus, error) {
	if e.ready == nil {
		return probe.BackendStatus{Running: true}, nil
	}

	deadline := time.NewTimer(e.opts.StartTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		if st := e.ready(ctx); st.Running {
			return st, nil
		}
		select {
		case <-done:
			return probe.Down, ErrExited
		case <-deadline.C:
			return probe.Down, ErrStartTimeout
		case <-ctx.Done():
			return probe.Down, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop interrupts the child and waits for it to exit, killing it after
// StopGrace. Stopping when nothing runs is a no-op.
func (e *ExecController) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.aliveLocked() {
		e.cmd, e.done = nil, nil
		return nil
	}

	if err := e.cmd.Process.Signal(os.Interrupt); err != nil {
		_ = e.cmd.Process.Kill()
	}

	grace := time.NewTimer(e.opts.StopGrace)
	defer grace.Stop()

	select {
	case <-e.done:
	case <-grace.C:
		e.logger.Warn(ctx, "backend ignored interrupt, killing")
		_ = e.cmd.Process.Kill()
		<-e.done
	case <-ctx.Done():
		_ = e.cmd.Process.Kill()
		<-e.done
	}
	e.cmd, e.done = nil, nil
	return nil
}

// lineLogger forwards child output to the logger line by line.
type lineLogger struct {
	pw *io.PipeWriter
}

func newLineLogger(l logging.Logger, stream string) *lineLogger {
	pr, pw := io.Pipe()
	go func() {
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			l.Debug(context.Background(), sc.Text(), "stream", stream)
		}
		_ = pr.Close()
	}()
	return &lineLogger{pw: pw}
}

func (w *lineLogger) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *lineLogger) Close() error {
	return w.pw.Close()
}
