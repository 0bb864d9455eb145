package proc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/drover/internal/logging"
)

const (
	// scanBufferSize is the initial scanner buffer for process output.
	scanBufferSize = 64 * 1024
	// maxScanTokenSize bounds a single output line. Vendor JSON events can
	// be large, especially tool calls carrying file contents.
	maxScanTokenSize = 1024 * 1024
	// readerGrace is how long to wait after process exit for the output
	// readers to drain slow pipes before freezing buffers.
	readerGrace = 10 * time.Second
)

// WaitState classifies how a wait ended.
type WaitState int

const (
	// WaitExited means the process exited on its own.
	WaitExited WaitState = iota
	// WaitTimedOut means the supervisor timeout expired first.
	WaitTimedOut
	// WaitCancelled means the caller's context ended first.
	WaitCancelled
)

// WaitResult is the outcome of WaitForExit.
type WaitResult struct {
	State    WaitState
	ExitCode int
}

// Supervisor tracks spawned processes in a shared registry keyed by process
// id. All methods are safe for concurrent use.
type Supervisor struct {
	mu    sync.RWMutex
	procs map[string]*ManagedProcess
	grace time.Duration
}

// NewSupervisor creates an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		procs: make(map[string]*ManagedProcess),
		grace: readerGrace,
	}
}

// Start spawns a process and registers it. A spawn failure (missing
// executable, bad workdir) is a reportable condition returned as an error;
// it never panics and registers nothing.
//
// stdin is not connected: spawned CLIs must never block waiting for input.
func (s *Supervisor) Start(ctx context.Context, opts StartOptions) (*ManagedProcess, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("start process: no executable name")
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), opts.Env...)
	}
	setProcGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	p := &ManagedProcess{
		ID:          uuid.NewString(),
		cmd:         cmd,
		cancel:      cancel,
		readersDone: make(chan struct{}),
		waitDone:    make(chan struct{}),
		state:       StateStarting,
		exitCode:    -1,
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", opts.Name, err)
	}

	p.PID = cmd.Process.Pid
	p.StartedAt = time.Now()
	p.mu.Lock()
	p.state = StateRunning
	p.mu.Unlock()

	s.mu.Lock()
	s.procs[p.ID] = p
	s.mu.Unlock()

	logging.Debugf("proc: started %s pid=%d id=%s", opts.Name, p.PID, p.ID)

	var readers sync.WaitGroup
	readers.Add(2)
	go s.readLines(p, &readers, stdout, &p.stdout, opts.OnStdout)
	go s.readLines(p, &readers, stderr, &p.stderr, opts.OnStderr)
	go func() {
		readers.Wait()
		close(p.readersDone)
	}()

	return p, nil
}

// readLines pumps one output stream into the process buffer and callback.
// The callback fires after the buffer append so a consumer that reads the
// buffer from the callback sees the line it was notified about.
func (s *Supervisor) readLines(p *ManagedProcess, wg *sync.WaitGroup, r io.Reader, buf *bytes.Buffer, fn OutputFunc) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufferSize), maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Text()
		p.appendOutput(buf, line)
		if fn != nil {
			fn(line)
		}
	}

	if err := scanner.Err(); err != nil {
		logging.Debugf("proc: read pid=%d: %v", p.PID, err)
	}
}

// WaitForExit blocks until the process exits, the supervisor timeout
// expires, or the caller's context ends. The timeout is linked to but
// independent of the caller's cancellation. On timeout or cancellation the
// process tree is killed. After a normal exit the readers get a bounded
// grace period to drain before buffers are finalized.
func (s *Supervisor) WaitForExit(ctx context.Context, id string, timeout time.Duration) WaitResult {
	p := s.Get(id)
	if p == nil {
		return WaitResult{State: WaitExited, ExitCode: -1}
	}

	p.waitOnce.Do(func() {
		go func() {
			p.waitErr = p.cmd.Wait()
			close(p.waitDone)
		}()
	})

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-p.waitDone:
		code := 0
		if p.cmd.ProcessState != nil {
			code = p.cmd.ProcessState.ExitCode()
		}
		s.drainReaders(p)
		p.markTerminal(StateExited, code)
		logging.Debugf("proc: exited pid=%d code=%d", p.PID, code)
		return WaitResult{State: WaitExited, ExitCode: code}

	case <-timer:
		s.terminate(p)
		<-p.waitDone
		s.drainReaders(p)
		p.markTerminal(StateTimedOut, -1)
		logging.Debugf("proc: timed out pid=%d after %s", p.PID, timeout)
		return WaitResult{State: WaitTimedOut, ExitCode: -1}

	case <-ctx.Done():
		s.terminate(p)
		<-p.waitDone
		s.drainReaders(p)
		p.markTerminal(StateCancelled, -1)
		logging.Debugf("proc: cancelled pid=%d", p.PID)
		return WaitResult{State: WaitCancelled, ExitCode: -1}
	}
}

// drainReaders waits up to the grace period for reader goroutines to finish
// flushing slow pipes. A stuck pipe must not hang the wait forever.
func (s *Supervisor) drainReaders(p *ManagedProcess) {
	select {
	case <-p.readersDone:
	case <-time.After(s.grace):
		logging.Debugf("proc: readers for pid=%d did not drain within %s", p.PID, s.grace)
	}
}

// Kill terminates the full process tree for id. Killing an unknown,
// already-completed, or already-removed process is a no-op, never an error.
func (s *Supervisor) Kill(id string) {
	p := s.Get(id)
	if p == nil {
		return
	}
	if s.terminate(p) {
		p.markTerminal(StateKilled, -1)
	}
}

// terminate kills the process tree without recording a terminal state, so
// WaitForExit can record TimedOut or Cancelled instead of Killed. Returns
// false when the process was already done.
func (s *Supervisor) terminate(p *ManagedProcess) bool {
	p.mu.Lock()
	alreadyDone := p.completed || p.killed
	p.killed = true
	p.mu.Unlock()
	if alreadyDone {
		return false
	}

	if p.cmd.Process != nil {
		if err := killTree(p.cmd.Process.Pid); err != nil {
			logging.Debugf("proc: kill tree pid=%d: %v", p.cmd.Process.Pid, err)
		}
	}
	p.cancel()
	return true
}

// IsActive reports whether the process looks alive: not completed, and
// either produced output within the stall threshold or has produced nothing
// yet and started within the threshold. This is the building block the
// external scheduler uses for stalled-job detection.
func (s *Supervisor) IsActive(id string, stallThreshold time.Duration) bool {
	p := s.Get(id)
	if p == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.completed {
		return false
	}
	if p.lastOutput.IsZero() {
		return time.Since(p.StartedAt) < stallThreshold
	}
	return time.Since(p.lastOutput) < stallThreshold
}

// Get returns the managed process for id, or nil.
func (s *Supervisor) Get(id string) *ManagedProcess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.procs[id]
}

// Remove drops the process from the registry. The process is killed first
// if still running.
func (s *Supervisor) Remove(id string) {
	s.Kill(id)
	s.mu.Lock()
	delete(s.procs, id)
	s.mu.Unlock()
}

// Active returns the ids of all registered processes.
func (s *Supervisor) Active() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.procs))
	for id := range s.procs {
		ids = append(ids, id)
	}
	return ids
}

// Close kills every tracked process and clears the registry. Idempotent.
func (s *Supervisor) Close() {
	for _, id := range s.Active() {
		s.Remove(id)
	}
}

// SetReaderGrace overrides the drain grace period. Used by tests.
func (s *Supervisor) SetReaderGrace(d time.Duration) {
	s.grace = d
}
