// Package cache stores ranking decisions in Redis so repeated queries skip
// scoring. Only the chosen row and its score are cached, never the response
// text, so response selection stays random per call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/resilience"
)

const (
	keyPrefix = "faq:match:"
	// opTimeout bounds every backend call so a slow cache never stalls a
	// chat turn.
	opTimeout = 250 * time.Millisecond
	// tripAfter consecutive backend failures skip the cache for coolDown.
	tripAfter = 3
	coolDown  = 30 * time.Second
)

// Store is the key/value backend. *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Decision is a cached ranking outcome. Found is false when no row was
// eligible.
type Decision struct {
	Index int     `json:"i"`
	Score float64 `json:"s"`
	Found bool    `json:"f"`
}

// MatchCache is a read-through cache of ranking decisions. Backend failures
// degrade to computing the decision; they are never returned to callers.
type MatchCache struct {
	store   Store
	ttl     time.Duration
	guard   *resilience.Guard
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a MatchCache over store. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *MatchCache {
	return &MatchCache{
		store: store,
		ttl:   ttl,
		guard: resilience.NewGuard("redis", resilience.GuardConfig{
			CallTimeout: opTimeout,
			TripAfter:   tripAfter,
			CoolDown:    coolDown,
			OnStateChange: func(backend string, to resilience.State) {
				m.SetBackendState(backend, int(to))
			},
		}),
		metrics: m,
		logger:  slog.Default().With("component", "match-cache"),
	}
}

// Key identifies a decision by everything it depends on.
func Key(method faq.Method, threshold float64, normalizedQuery, topic string) string {
	raw := fmt.Sprintf("%s|%s|%s|%s",
		method, strconv.FormatFloat(threshold, 'g', -1, 64), faq.NormalizeTopic(topic), normalizedQuery)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// Get returns the cached decision for key.
func (c *MatchCache) Get(ctx context.Context, key string) (Decision, bool) {
	var data string
	var found bool
	err := c.guard.Do(ctx, "get", func(ctx context.Context) error {
		var err error
		data, found, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logger.Debug("cache get failed", "key", key, "error", err)
		return Decision{}, false
	}
	if !found {
		return Decision{}, false
	}
	var d Decision
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return Decision{}, false
	}
	return d, true
}

// Set stores d under key.
func (c *MatchCache) Set(ctx context.Context, key string, d Decision) {
	data, err := json.Marshal(d)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.guard.Do(ctx, "set", func(ctx context.Context) error {
		return c.store.Set(ctx, key, string(data), c.ttl)
	})
	if err != nil {
		c.logger.Debug("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached decision for key, or computes, stores and
// returns it. Concurrent misses on the same key compute once.
func (c *MatchCache) GetOrCompute(ctx context.Context, key string, compute func() Decision) (Decision, bool) {
	if d, ok := c.Get(ctx, key); ok {
		c.record(true)
		return d, true
	}
	c.record(false)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if d, ok := c.Get(ctx, key); ok {
			return d, nil
		}
		d := compute()
		c.Set(ctx, key, d)
		return d, nil
	})
	return val.(Decision), false
}

// Invalidate drops every cached decision. Call it after retraining.
func (c *MatchCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating match cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counts since creation.
func (c *MatchCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *MatchCache) record(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.metrics.CacheResult(hit)
}
