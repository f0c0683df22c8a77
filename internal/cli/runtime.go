package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/matcher"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/redis"
)

// backends selects the optional services a command connects to. Each one
// is still skipped when it is disabled in config.
type backends struct {
	cache     bool
	analytics bool
	postgres  bool
}

// runtime holds everything a command needs beyond its flags. Optional
// backends that are disabled or unreachable are left nil.
type runtime struct {
	cfg       *config.Config
	metrics   *metrics.Metrics
	store     *artifact.Store
	checker   *health.Checker
	redis     *pkgredis.Client
	cache     *cache.MatchCache
	producer  *kafka.Producer
	collector *analytics.Collector
	pg        *postgres.Client
	closers   []func()
	logger    *slog.Logger
}

func newRuntime(ctx context.Context, cfg *config.Config, want backends) *runtime {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt := &runtime{
		cfg:     cfg,
		metrics: metrics.New(reg),
		store:   artifact.NewStore(cfg.Artifacts.Dir),
		checker: health.NewChecker(),
		logger:  slog.Default().With("component", "cli"),
	}

	if want.cache && cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			rt.logger.Warn("redis unavailable, match caching disabled", "error", err)
		} else {
			rt.redis = client
			rt.cache = cache.New(client, cfg.Redis.CacheTTL, rt.metrics)
			rt.onClose(func() { client.Close() })
			rt.logger.Info("match cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	if want.analytics && cfg.Kafka.Enabled {
		rt.producer = kafka.NewProducer(cfg.Kafka)
		rt.collector = analytics.NewCollector(rt.producer, analytics.CollectorConfig{
			BufferSize:    cfg.Kafka.BufferSize,
			BatchSize:     cfg.Kafka.BatchSize,
			FlushInterval: cfg.Kafka.FlushInterval,
		}, rt.metrics)
		rt.collector.Start(ctx)
		producer, collector := rt.producer, rt.collector
		rt.onClose(func() {
			collector.Close()
			producer.Close()
		})
	}

	if want.postgres && cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			rt.logger.Warn("postgres unavailable, evaluation history disabled", "error", err)
		} else {
			rt.pg = client
			rt.onClose(func() { client.Close() })
		}
	}

	rt.registerChecks()

	if cfg.Metrics.Enabled {
		shutdown := rt.metrics.StartServer(cfg.Metrics.Port, rt.checker.ReadyHandler())
		rt.onClose(func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		})
	}
	return rt
}

func (rt *runtime) onClose(fn func()) {
	rt.closers = append(rt.closers, fn)
}

// close releases backends in reverse order of opening.
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func (rt *runtime) registerChecks() {
	rt.checker.Register("artifacts", func(ctx context.Context) health.ComponentHealth {
		trained := rt.store.Trained()
		if len(trained) == 0 {
			return health.ComponentHealth{
				Status:  health.StatusDown,
				Message: fmt.Sprintf("no trained indexes in %s", rt.store.Dir()),
			}
		}
		names := make([]string, len(trained))
		for i, m := range trained {
			names[i] = m.String()
		}
		status := health.StatusUp
		if len(trained) < len(faq.Methods()) {
			status = health.StatusDegraded
		}
		return health.ComponentHealth{Status: status, Message: "trained: " + strings.Join(names, ", ")}
	})

	switch {
	case !rt.cfg.Redis.Enabled:
		rt.checker.Register("redis", health.Disabled)
	case rt.redis == nil:
		rt.checker.Register("redis", unavailable("not connected"))
	default:
		rt.checker.Register("redis", health.Ping(rt.redis.Ping))
	}

	switch {
	case !rt.cfg.Postgres.Enabled:
		rt.checker.Register("postgres", health.Disabled)
	case rt.pg == nil:
		rt.checker.Register("postgres", unavailable("not connected"))
	default:
		rt.checker.Register("postgres", health.Ping(rt.pg.Ping))
	}

	switch {
	case !rt.cfg.Kafka.Enabled:
		rt.checker.Register("kafka", health.Disabled)
	case rt.producer == nil:
		producer := kafka.NewProducer(rt.cfg.Kafka)
		rt.onClose(func() { producer.Close() })
		rt.checker.Register("kafka", health.Ping(producer.Ping))
	default:
		rt.checker.Register("kafka", health.Ping(rt.producer.Ping))
	}
}

func unavailable(msg string) health.Check {
	return func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusDown, Message: msg}
	}
}

// matcherOptions configures loadMatcher.
type matcherOptions struct {
	seed  uint64
	sinks []analytics.Sink
}

// loadPayload loads the trained index for method.
func (rt *runtime) loadPayload(method faq.Method) (*index.Payload, error) {
	p, err := rt.store.Load(method)
	if err != nil {
		if errors.Is(err, apperrors.ErrArtifactNotFound) {
			return nil, apperrors.Newf(apperrors.ErrArtifactNotFound,
				"no %s index in %s, run: faqbot train --method %s", method, rt.store.Dir(), method)
		}
		return nil, err
	}
	rt.metrics.SetIndexed(method.String(), len(p.Examples))
	return p, nil
}

// Load lets the runtime serve as the evaluator's index loader.
func (rt *runtime) Load(method faq.Method) (*index.Payload, error) {
	return rt.loadPayload(method)
}

// loadMatcher loads the index for method and wraps it in a Matcher wired to
// the runtime's cache, metrics and analytics collector.
func (rt *runtime) loadMatcher(method faq.Method, opts matcherOptions) (*matcher.Matcher, error) {
	p, err := rt.loadPayload(method)
	if err != nil {
		return nil, err
	}

	mopts := []matcher.Option{matcher.WithMetrics(rt.metrics)}
	if rt.cache != nil {
		mopts = append(mopts, matcher.WithCache(rt.cache))
	}
	sinks := opts.sinks
	if rt.collector != nil {
		sinks = append(sinks, rt.collector)
	}
	if len(sinks) > 0 {
		mopts = append(mopts, matcher.WithSink(analytics.Tee(sinks...)))
	}
	if opts.seed != 0 {
		mopts = append(mopts, matcher.WithRand(rand.New(rand.NewPCG(opts.seed, opts.seed))))
	}
	return matcher.New(p, mopts...), nil
}

// parseMethods accepts "all" or a comma-separated list of method names.
func parseMethods(s string) ([]faq.Method, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return faq.Methods(), nil
	}
	var methods []faq.Method
	seen := make(map[faq.Method]bool)
	for _, part := range strings.Split(s, ",") {
		m, err := faq.ParseMethod(part)
		if err != nil {
			return nil, err
		}
		if !seen[m] {
			seen[m] = true
			methods = append(methods, m)
		}
	}
	return methods, nil
}
