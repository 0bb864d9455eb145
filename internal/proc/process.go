// Package proc supervises spawned OS processes: registration, line-oriented
// output streaming, liveness heuristics, and process-tree termination.
package proc

import (
	"bytes"
	"context"
	"os/exec"
	"sync"
	"time"
)

// State describes where a managed process is in its lifecycle.
type State string

const (
	// StateStarting means Start was called but the process is not yet running.
	StateStarting State = "starting"
	// StateRunning means the process is alive.
	StateRunning State = "running"
	// StateExited means the process exited on its own.
	StateExited State = "exited"
	// StateKilled means the process tree was forcefully terminated.
	StateKilled State = "killed"
	// StateTimedOut means the supervisor's wait timeout expired.
	StateTimedOut State = "timed_out"
	// StateCancelled means the caller's context ended the wait.
	StateCancelled State = "cancelled"
)

// OutputFunc receives one line of process output. Implementations must not
// block: they run on the reader goroutine for the stream.
type OutputFunc func(line string)

// StartOptions describes a process to spawn.
type StartOptions struct {
	// Name is the executable to run, resolved against PATH unless absolute.
	Name string
	// Args are the command arguments.
	Args []string
	// WorkDir is the working directory, if non-empty.
	WorkDir string
	// Env is appended to the inherited environment.
	Env []string
	// OnStdout and OnStderr are invoked per output line, after the line
	// has been appended to the corresponding buffer.
	OnStdout OutputFunc
	OnStderr OutputFunc
}

// ManagedProcess is the supervisor's record of one spawned OS process.
// A process stays registered, terminal state included, until Remove.
type ManagedProcess struct {
	// ID is the supervisor-assigned identifier.
	ID string
	// PID is the OS process id.
	PID int
	// StartedAt is when the process was spawned.
	StartedAt time.Time

	cmd    *exec.Cmd
	cancel context.CancelFunc

	// readersDone closes once both output readers have drained.
	readersDone chan struct{}
	// waitDone closes once cmd.Wait has returned.
	waitDone chan struct{}
	waitOnce sync.Once
	waitErr  error

	mu         sync.Mutex
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	lastOutput time.Time
	state      State
	completed  bool
	exitCode   int
	killed     bool
}

// Stdout returns the buffered stdout so far.
func (p *ManagedProcess) Stdout() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout.String()
}

// Stderr returns the buffered stderr so far.
func (p *ManagedProcess) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stderr.String()
}

// State returns the current lifecycle state.
func (p *ManagedProcess) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Completed reports whether the process has reached a terminal state.
func (p *ManagedProcess) Completed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// ExitCode returns the process exit code, or -1 if it has not exited
// normally (killed, cancelled, still running).
func (p *ManagedProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.completed {
		return -1
	}
	return p.exitCode
}

// LastOutput returns when the process last produced a line, or the zero time
// if it has produced none.
func (p *ManagedProcess) LastOutput() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOutput
}

// appendOutput records one line on the given buffer and bumps the
// last-output clock. stdout and stderr reader goroutines race here, so the
// buffer lock covers both.
func (p *ManagedProcess) appendOutput(buf *bytes.Buffer, line string) {
	p.mu.Lock()
	buf.WriteString(line)
	buf.WriteByte('\n')
	p.lastOutput = time.Now()
	p.mu.Unlock()
}

// markTerminal transitions the process into a terminal state. The first
// terminal transition wins; later ones are ignored.
func (p *ManagedProcess) markTerminal(state State, exitCode int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return
	}
	p.completed = true
	p.state = state
	p.exitCode = exitCode
}
