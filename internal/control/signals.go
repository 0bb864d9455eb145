// Package control implements cooperative execution control through signal
// files in a .drover/signals directory. An operator (or another process)
// drops a "kill" or "pause" file; running executions observe it and react.
package control

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/drover/internal/logging"
)

const (
	droverDirName = ".drover"
	signalsDir    = "signals"
	killFile      = "kill"
	pauseFile     = "pause"
)

// SignalManager watches a repository's signal directory. Detection is
// watcher-first with a stat fallback on every query, so a missed fsnotify
// event never hides a signal file that is actually present.
type SignalManager struct {
	dir string

	mu    sync.RWMutex
	kill  bool
	pause bool

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// NewSignalManager creates the signal directory under repoPath and starts
// watching it. A watcher setup failure is not fatal: stat fallback still
// answers queries, just without immediacy.
func NewSignalManager(repoPath string) (*SignalManager, error) {
	dir := filepath.Join(repoPath, droverDirName, signalsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &SignalManager{dir: dir, done: make(chan struct{})}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Debugf("control: no watcher, falling back to polling: %v", err)
		return m, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		logging.Debugf("control: cannot watch %s: %v", dir, err)
		return m, nil
	}
	m.watcher = watcher
	go m.watch()

	return m, nil
}

func (m *SignalManager) watch() {
	for {
		select {
		case <-m.done:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			m.mu.Lock()
			switch filepath.Base(event.Name) {
			case killFile:
				m.kill = true
			case pauseFile:
				m.pause = true
			}
			m.mu.Unlock()
		case <-m.watcher.Errors:
			// Keep watching; the stat fallback covers missed events.
		}
	}
}

// statSignal marks a signal observed if its file exists on disk.
func (m *SignalManager) statSignal(name string, flag *bool) {
	if _, err := os.Stat(filepath.Join(m.dir, name)); err == nil {
		m.mu.Lock()
		*flag = true
		m.mu.Unlock()
	}
}

// ShouldKill reports whether a kill signal has been received.
func (m *SignalManager) ShouldKill() bool {
	m.statSignal(killFile, &m.kill)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kill
}

// ShouldPause reports whether a pause signal has been received.
func (m *SignalManager) ShouldPause() bool {
	m.statSignal(pauseFile, &m.pause)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pause
}

// SendKill drops a kill signal file for every watcher of this repository.
func (m *SignalManager) SendKill() error {
	return m.write(killFile)
}

// SendPause drops a pause signal file.
func (m *SignalManager) SendPause() error {
	return m.write(pauseFile)
}

func (m *SignalManager) write(name string) error {
	stamp := time.Now().Format(time.RFC3339)
	return os.WriteFile(filepath.Join(m.dir, name), []byte(stamp), 0o644)
}

// Clear removes signal files and resets observed state, readying the
// directory for the next execution.
func (m *SignalManager) Clear() {
	m.mu.Lock()
	m.kill = false
	m.pause = false
	m.mu.Unlock()

	os.Remove(filepath.Join(m.dir, killFile))
	os.Remove(filepath.Join(m.dir, pauseFile))
}

// Dir returns the watched signal directory.
func (m *SignalManager) Dir() string {
	return m.dir
}

// Close stops the watcher. Safe to call more than once.
func (m *SignalManager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.watcher != nil {
			m.watcher.Close()
		}
	})
}
