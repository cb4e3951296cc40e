package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("translation process already running")
	ErrNotRunning     = errors.New("translation process not running")
	ErrExitedEarly    = errors.New("translation process exited during startup")
)

// DefaultStartGrace is how long Start watches a new child for an immediate
// exit, such as a failed bind.
const DefaultStartGrace = 500 * time.Millisecond

// Supervisor runs the translation proxy as an isolated child process so that
// stopping it releases its listener no matter what state the server is in.
type Supervisor struct {
	path        string
	args        []string
	stopTimeout time.Duration
	logger      *slog.Logger

	// Env is the child's environment; nil inherits the parent's.
	Env []string
	// Output receives the child's stdout and stderr; nil discards them.
	Output io.Writer
	// StartGrace is how long Start waits to see whether the child dies at once.
	StartGrace time.Duration

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// NewSupervisor returns a Supervisor that will run path with args. Stop waits
// up to stopTimeout for a graceful exit before killing the child.
func NewSupervisor(path string, args []string, stopTimeout time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		path:        path,
		args:        args,
		stopTimeout: stopTimeout,
		logger:      logger,
		StartGrace:  DefaultStartGrace,
	}
}

// Start launches the child process and returns ErrExitedEarly if it exits
// within StartGrace.
func (s *Supervisor) Start() error {
	done, err := s.launch()
	if err != nil {
		return err
	}

	select {
	case <-done:
		return fmt.Errorf("%w: %v", ErrExitedEarly, s.exitErr())
	case <-time.After(s.StartGrace):
		return nil
	}
}

func (s *Supervisor) launch() (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runningLocked() {
		return nil, ErrAlreadyRunning
	}

	cmd := exec.Command(s.path, s.args...)
	cmd.Env = s.Env
	cmd.Stdout = s.Output
	cmd.Stderr = s.Output
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start translation process: %w", err)
	}

	done := make(chan struct{})
	s.cmd = cmd
	s.done = done
	s.err = nil
	s.logger.Info("translation process started", "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(done)
	}()
	return done, nil
}

// Stop interrupts the child and waits for it to exit, killing it once the
// stop timeout elapses. It returns ErrNotRunning if no child is alive.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if !s.runningLocked() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	cmd, done := s.cmd, s.done
	s.mu.Unlock()

	pid := cmd.Process.Pid
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not deliverable on every platform.
		s.logger.Warn("interrupt failed, killing translation process", "pid", pid, "error", err)
		return s.kill(cmd, done)
	}

	select {
	case <-done:
		s.logger.Info("translation process stopped", "pid", pid, "exit", s.exitErr())
		return nil
	case <-time.After(s.stopTimeout):
		s.logger.Warn("translation process did not exit in time, killing", "pid", pid, "timeout", s.stopTimeout)
		return s.kill(cmd, done)
	}
}

func (s *Supervisor) kill(cmd *exec.Cmd, done <-chan struct{}) error {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill translation process: %w", err)
	}
	<-done
	return nil
}

// Running reports whether the child process is alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Supervisor) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Supervisor) exitErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
