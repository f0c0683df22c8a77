package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// ConnectConfig controls how long Connect keeps pinging a backend that is
// still starting. Zero fields take defaults.
type ConnectConfig struct {
	Attempts int
	// AttemptTimeout bounds each attempt.
	AttemptTimeout time.Duration
	// FirstDelay doubles after every failed attempt up to MaxDelay.
	FirstDelay time.Duration
	MaxDelay   time.Duration
}

func (cfg ConnectConfig) withDefaults() ConnectConfig {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 2 * time.Second
	}
	if cfg.FirstDelay <= 0 {
		cfg.FirstDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	return cfg
}

// Connect runs ping until it succeeds, the attempts run out or ctx is done.
// Each attempt gets its own AttemptTimeout. The last ping error is wrapped
// in the returned error.
func Connect(ctx context.Context, backend string, cfg ConnectConfig, ping func(ctx context.Context) error) error {
	cfg = cfg.withDefaults()
	logger := slog.Default().With("component", "connect", "backend", backend)

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("connecting to %s: %w", backend, err)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.AttemptTimeout)
		lastErr = ping(attemptCtx)
		cancel()
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("connected after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == cfg.Attempts {
			break
		}

		delay := backoff(attempt, cfg)
		logger.Warn("backend not reachable yet",
			"attempt", attempt,
			"attempts", cfg.Attempts,
			"next_delay", delay,
			"error", lastErr,
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("connecting to %s: %w", backend, ctx.Err())
		}
	}
	return fmt.Errorf("connecting to %s: %d attempts failed: %w", backend, cfg.Attempts, lastErr)
}

// backoff returns FirstDelay doubled per prior attempt, with ±10% jitter,
// never above MaxDelay.
func backoff(attempt int, cfg ConnectConfig) time.Duration {
	d := cfg.FirstDelay
	for i := 1; i < attempt && d < cfg.MaxDelay; i++ {
		d *= 2
	}
	if d >= cfg.MaxDelay {
		return cfg.MaxDelay
	}
	jitter := time.Duration(float64(d) * 0.1 * (2*rand.Float64() - 1))
	d += jitter
	if d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	return d
}
