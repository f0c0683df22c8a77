package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestConnectSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Connect(context.Background(), "redis", ConnectConfig{FirstDelay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConnectGivesUp(t *testing.T) {
	calls := 0
	err := Connect(context.Background(), "postgres", ConnectConfig{Attempts: 2, FirstDelay: time.Millisecond}, func(context.Context) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "connecting to postgres: 2 attempts failed")
	assert.Equal(t, 2, calls)
}

func TestConnectStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Connect(ctx, "redis", ConnectConfig{Attempts: 5}, func(context.Context) error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestBackoffCapped(t *testing.T) {
	cfg := ConnectConfig{FirstDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, 3*time.Second, backoff(5, cfg))
	assert.Equal(t, 3*time.Second, backoff(80, cfg))
	d := backoff(1, cfg)
	assert.GreaterOrEqual(t, d, 900*time.Millisecond)
	assert.LessOrEqual(t, d, 1100*time.Millisecond)
}

// fakeClock drives a guard's cool-down without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard(cfg GuardConfig) (*Guard, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	g := NewGuard("redis", cfg)
	g.now = clock.now
	return g, clock
}

func fail(context.Context) error { return errBoom }
func succeed(context.Context) error { return nil }

func TestGuardSkipsBackendAfterRepeatedFailures(t *testing.T) {
	var seen []State
	g, clock := newTestGuard(GuardConfig{
		TripAfter:     2,
		CoolDown:      time.Minute,
		OnStateChange: func(_ string, to State) { seen = append(seen, to) },
	})
	ctx := context.Background()

	assert.ErrorIs(t, g.Do(ctx, "get", fail), errBoom)
	assert.Equal(t, StateHealthy, g.State())
	assert.ErrorIs(t, g.Do(ctx, "get", fail), errBoom)
	assert.Equal(t, StateSkipped, g.State())

	called := false
	err := g.Do(ctx, "get", func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBackendSkipped)
	assert.False(t, called)

	clock.advance(time.Minute)
	require.NoError(t, g.Do(ctx, "get", succeed))
	assert.Equal(t, StateHealthy, g.State())
	assert.Equal(t, []State{StateSkipped, StateTrial, StateHealthy}, seen)
}

func TestGuardFailedTrialSkipsAgain(t *testing.T) {
	g, clock := newTestGuard(GuardConfig{TripAfter: 1, CoolDown: time.Second})
	ctx := context.Background()

	_ = g.Do(ctx, "set", fail)
	require.Equal(t, StateSkipped, g.State())
	clock.advance(time.Second)
	assert.ErrorIs(t, g.Do(ctx, "set", fail), errBoom)
	assert.Equal(t, StateSkipped, g.State())
	assert.ErrorIs(t, g.Do(ctx, "set", succeed), ErrBackendSkipped)
}

func TestGuardSuccessResetsFailureCount(t *testing.T) {
	g, _ := newTestGuard(GuardConfig{TripAfter: 2})
	ctx := context.Background()

	_ = g.Do(ctx, "get", fail)
	require.NoError(t, g.Do(ctx, "get", succeed))
	_ = g.Do(ctx, "get", fail)
	assert.Equal(t, StateHealthy, g.State())
}

func TestGuardTimesOutSlowCalls(t *testing.T) {
	g, _ := newTestGuard(GuardConfig{CallTimeout: 10 * time.Millisecond, TripAfter: 1})

	err := g.Do(context.Background(), "get", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "redis get: timed out")
	assert.Equal(t, StateSkipped, g.State())
}

func TestGuardIgnoresCallerCancellation(t *testing.T) {
	g, _ := newTestGuard(GuardConfig{TripAfter: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Do(ctx, "get", func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateHealthy, g.State())
}

func TestGuardReset(t *testing.T) {
	g, _ := newTestGuard(GuardConfig{TripAfter: 1, CoolDown: time.Hour})
	_ = g.Do(context.Background(), "get", fail)
	require.Equal(t, StateSkipped, g.State())

	g.Reset()
	assert.Equal(t, StateHealthy, g.State())
	assert.Equal(t, "healthy", g.State().String())
	assert.NoError(t, g.Do(context.Background(), "get", succeed))
}
