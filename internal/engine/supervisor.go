package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
)

// State is the supervisor's worker lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// ErrAlreadyRunning is returned by Start while a worker is active. At most one
// worker per symbol; a second start is rejected, never spawned.
var ErrAlreadyRunning = errors.New("strategy worker already running")

// Supervisor owns the single strategy worker goroutine and its explicit
// RUNNING -> DRAINING -> STOPPED lifecycle. The stop signal is cooperative and
// observed at loop top only; a mid-iteration stop request lets the current
// iteration finish.
type Supervisor struct {
	eng      interfaces.Engine
	interval time.Duration

	mu       sync.Mutex
	state    State
	stopCh   chan struct{}
	stopOnce *sync.Once
	done     chan struct{}
}

func NewSupervisor(eng interfaces.Engine, interval time.Duration) *Supervisor {
	return &Supervisor{eng: eng, interval: interval, state: StateIdle}
}

// Start launches the worker. Rejected while a previous worker is still
// running or draining; allowed again once it has fully stopped.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning || s.state == StateDraining {
		return ErrAlreadyRunning
	}

	s.state = StateRunning
	s.stopCh = make(chan struct{})
	s.stopOnce = &sync.Once{}
	s.done = make(chan struct{})

	go s.run(ctx, s.stopCh, s.done)
	return nil
}

// RequestStop signals the worker to stop cooperatively. No-op unless running.
func (s *Supervisor) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Wait blocks until the current worker has reached STOPPED. Returns
// immediately if no worker was ever started.
func (s *Supervisor) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *Supervisor) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	logger.Info(ctx, "Strategy worker started", "poll_interval", s.interval.String())

	for {
		select {
		case <-stop:
			s.drain(ctx)
			return
		case <-ctx.Done():
			s.drain(ctx)
			return
		default:
		}

		if _, err := s.eng.Step(ctx); err != nil {
			// A transient venue failure must not kill the worker; the
			// iteration is skipped and the decision semantics resume on the
			// next poll.
			logger.ErrorWithErr(ctx, "Iteration failed, skipping", err)
		}

		select {
		case <-time.After(s.interval):
		case <-stop:
		case <-ctx.Done():
		}
	}
}

func (s *Supervisor) drain(ctx context.Context) {
	// The closing order must go out even when the trigger was context
	// cancellation.
	ctx = context.WithoutCancel(ctx)

	s.setState(StateDraining)
	logger.Info(ctx, "Strategy worker draining")

	if res, err := s.eng.Flatten(ctx); err != nil {
		logger.ErrorWithErr(ctx, "Failed to flatten position on stop", err)
	} else if res != nil {
		logger.Info(ctx, "Position flattened", "retcode", res.Retcode, "price", res.Price)
	}

	s.setState(StateStopped)
	logger.Info(ctx, "Strategy worker stopped")
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}
