// Package resilience protects the engine from its optional backends. A Guard
// bounds every call to a backend with a timeout and stops calling it for a
// cool-down period after repeated failures, so a dead Redis or broker costs
// one timeout per cool-down instead of one per chat turn. Connect covers
// connection setup.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrBackendSkipped is returned by Guard.Do while the backend is being
// skipped after repeated failures.
var ErrBackendSkipped = errors.New("backend skipped after repeated failures")

// State is the guard's view of its backend.
type State int

const (
	// StateHealthy passes every call through.
	StateHealthy State = iota
	// StateSkipped rejects calls until the cool-down has passed.
	StateSkipped
	// StateTrial lets a single call through to test recovery.
	StateTrial
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateSkipped:
		return "skipped"
	case StateTrial:
		return "trial"
	default:
		return "unknown"
	}
}

// GuardConfig tunes a Guard. Zero fields take defaults.
type GuardConfig struct {
	// CallTimeout bounds each call. Negative disables the bound.
	CallTimeout time.Duration
	// TripAfter consecutive failures start skipping the backend.
	TripAfter int
	// CoolDown is how long the backend is skipped before a trial call.
	CoolDown time.Duration
	// OnStateChange, if set, is called with the guard lock held after every
	// transition. It must not call back into the guard.
	OnStateChange func(backend string, to State)
}

func (cfg GuardConfig) withDefaults() GuardConfig {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 250 * time.Millisecond
	}
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 3
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	return cfg
}

// Guard wraps calls to one named backend. It is safe for concurrent use.
type Guard struct {
	backend   string
	cfg       GuardConfig
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	state     State
	failures  int
	trippedAt time.Time
	trialBusy bool
}

// NewGuard creates a healthy Guard for backend.
func NewGuard(backend string, cfg GuardConfig) *Guard {
	return &Guard{
		backend: backend,
		cfg:     cfg.withDefaults(),
		logger:  slog.Default().With("component", "backend-guard", "backend", backend),
		now:     time.Now,
	}
}

// Do runs fn with a context bounded by the call timeout. A deadline hit by
// the guard itself is reported as a timeout of op; cancellation of ctx is
// returned unchanged. Any error counts as a backend failure except the
// caller's own cancellation.
func (g *Guard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := g.admit(op); err != nil {
		return err
	}

	callCtx := ctx
	if g.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
		defer cancel()
	}
	err := fn(callCtx)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%s %s: timed out after %v: %w", g.backend, op, g.cfg.CallTimeout, err)
	}

	if err != nil && ctx.Err() != nil {
		g.release()
		return err
	}
	g.record(err)
	return err
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Reset marks the backend healthy again, for example after reconnecting.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures = 0
	g.trialBusy = false
	if g.state != StateHealthy {
		g.setState(StateHealthy)
		g.logger.Info("backend guard reset")
	}
}

func (g *Guard) admit(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case StateSkipped:
		wait := g.cfg.CoolDown - g.now().Sub(g.trippedAt)
		if wait > 0 {
			return fmt.Errorf("%w: %s %s (retry in %v)", ErrBackendSkipped, g.backend, op, wait.Round(time.Millisecond))
		}
		g.setState(StateTrial)
		g.trialBusy = true
		g.logger.Info("trying backend again", "op", op)
	case StateTrial:
		if g.trialBusy {
			return fmt.Errorf("%w: %s %s (trial call in flight)", ErrBackendSkipped, g.backend, op)
		}
		g.trialBusy = true
	}
	return nil
}

// release undoes admit for a call the caller abandoned.
func (g *Guard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateTrial {
		g.trialBusy = false
	}
}

func (g *Guard) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		g.failures = 0
		if g.state != StateHealthy {
			g.trialBusy = false
			g.setState(StateHealthy)
			g.logger.Info("backend recovered")
		}
		return
	}

	g.failures++
	switch g.state {
	case StateHealthy:
		if g.failures >= g.cfg.TripAfter {
			g.trip()
			g.logger.Warn("skipping backend after repeated failures",
				"failures", g.failures,
				"cool_down", g.cfg.CoolDown,
				"error", err,
			)
		}
	case StateTrial:
		g.trip()
		g.logger.Warn("trial call failed, skipping backend again", "error", err)
	}
}

func (g *Guard) trip() {
	g.trippedAt = g.now()
	g.trialBusy = false
	g.setState(StateSkipped)
}

func (g *Guard) setState(to State) {
	g.state = to
	if g.cfg.OnStateChange != nil {
		g.cfg.OnStateChange(g.backend, to)
	}
}
