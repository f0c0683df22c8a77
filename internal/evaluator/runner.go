package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/tracing"
)

// Loader returns the trained index for a method. *artifact.Store satisfies
// it.
type Loader interface {
	Load(method faq.Method) (*index.Payload, error)
}

// Runner evaluates several methods concurrently, sharing one worker pool for
// the per-query work.
type Runner struct {
	loader  Loader
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRunner creates a Runner. workers <= 0 evaluates sequentially; m may be
// nil.
func NewRunner(loader Loader, workers int, m *metrics.Metrics) *Runner {
	return &Runner{
		loader:  loader,
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "evaluator"),
	}
}

// Run evaluates methods and returns their results in the same order. A
// method whose index cannot be loaded fails the whole run.
func (r *Runner) Run(ctx context.Context, methods []faq.Method) ([]Result, error) {
	ctx, span := tracing.Start(ctx, "evaluate")
	defer func() {
		span.End()
		span.Log(r.logger)
	}()

	var pool *ants.Pool
	if r.workers > 0 {
		var err error
		pool, err = ants.NewPool(r.workers)
		if err != nil {
			return nil, fmt.Errorf("creating evaluation pool: %w", err)
		}
		defer pool.Release()
	}

	results := make([]Result, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		g.Go(func() error {
			_, methodSpan := tracing.Start(gctx, "evaluate "+method.String())
			defer methodSpan.End()
			p, err := r.loader.Load(method)
			if err != nil {
				return fmt.Errorf("loading %s index: %w", method, err)
			}
			start := time.Now()
			var result Result
			if pool == nil {
				result = Evaluate(p)
			} else {
				result, err = EvaluateParallel(gctx, p, pool)
				if err != nil {
					return fmt.Errorf("evaluating %s: %w", method, err)
				}
			}
			results[i] = result
			methodSpan.SetAttr("total", result.Total)
			r.metrics.SetEvaluation(method.String(), result.Accuracy(), result.FallbackRate())
			r.logger.Info("method evaluated",
				"method", method,
				"total", result.Total,
				"correct", result.Correct,
				"fallbacks", result.Fallbacks,
				"accuracy", result.Accuracy(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EvaluateParallel is Evaluate with the per-example queries spread over
// pool. The result is identical to Evaluate's.
func EvaluateParallel(ctx context.Context, p *index.Payload, pool *ants.Pool) (Result, error) {
	outcomes := make([]outcome, len(p.Examples))
	var wg sync.WaitGroup
	for i := range p.Examples {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return Result{}, err
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = evaluateOne(p, i)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return Result{}, fmt.Errorf("submitting query %d: %w", i, err)
		}
	}
	wg.Wait()

	result := Result{Method: p.Method}
	for _, o := range outcomes {
		result.add(o)
	}
	return result, nil
}
