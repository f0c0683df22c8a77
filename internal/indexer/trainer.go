package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/tracing"
)

// Sources names the training inputs. An empty IntentsPath skips intents.
type Sources struct {
	IntentsPath string
	QASources   []string
}

// Summary describes one trained artifact.
type Summary struct {
	Method     faq.Method
	Patterns   int
	FromCSV    int
	Vocabulary int
	Path       string
	Duration   time.Duration
}

// Trainer loads training data, builds indexes and saves them as artifacts.
type Trainer struct {
	store   *artifact.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewTrainer creates a Trainer writing into store. m may be nil.
func NewTrainer(store *artifact.Store, m *metrics.Metrics) *Trainer {
	return &Trainer{
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "trainer"),
	}
}

// LoadCorpus reads the intents file and every Q/A source into one corpus.
// Intents come first, followed by CSV rows in source order. The number of
// CSV-derived examples is returned alongside.
func LoadCorpus(src Sources) (ingestion.Corpus, int, error) {
	var corpus ingestion.Corpus
	if src.IntentsPath != "" {
		intents, err := ingestion.LoadIntents(src.IntentsPath)
		if err != nil {
			return ingestion.Corpus{}, 0, err
		}
		corpus = ingestion.PrepareIntents(intents)
	}

	rows, err := ingestion.LoadQASources(src.QASources)
	if err != nil {
		return ingestion.Corpus{}, 0, err
	}
	csvCorpus := ingestion.PrepareQARows(rows)
	corpus.Append(csvCorpus)

	if corpus.Len() == 0 {
		return ingestion.Corpus{}, 0, apperrors.New(apperrors.ErrEmptyCorpus, "no usable intents patterns or Q/A rows")
	}
	return corpus, csvCorpus.Len(), nil
}

// Train builds and saves the index for every method in methods. Methods are
// built concurrently; the first failure cancels the rest.
func (t *Trainer) Train(ctx context.Context, methods []faq.Method, src Sources, threshold float64) ([]Summary, error) {
	ctx, span := tracing.Start(ctx, "train")
	defer func() {
		span.End()
		span.Log(t.logger)
	}()

	_, loadSpan := tracing.Start(ctx, "load corpus")
	corpus, fromCSV, err := LoadCorpus(src)
	loadSpan.End()
	if err != nil {
		return nil, err
	}
	loadSpan.SetAttr("patterns", corpus.Len())
	t.logger.Info("corpus loaded",
		"patterns", corpus.Len(),
		"from_csv", fromCSV,
		"methods", len(methods),
	)

	summaries := make([]Summary, len(methods))
	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, methodSpan := tracing.Start(gctx, "train "+method.String())
			summary, err := t.trainOne(method, corpus, threshold)
			methodSpan.End()
			if err != nil {
				return fmt.Errorf("training %s: %w", method, err)
			}
			summary.FromCSV = fromCSV
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (t *Trainer) trainOne(method faq.Method, corpus ingestion.Corpus, threshold float64) (Summary, error) {
	start := time.Now()
	p, err := Build(method, corpus, threshold)
	if err != nil {
		return Summary{}, err
	}
	if err := t.store.Save(p); err != nil {
		return Summary{}, err
	}
	elapsed := time.Since(start)

	t.metrics.ObserveTraining(method.String(), elapsed)
	t.metrics.SetIndexed(method.String(), len(p.Examples))
	t.logger.Info("index trained",
		"method", method,
		"patterns", len(p.Examples),
		"threshold", threshold,
		"duration_ms", elapsed.Milliseconds(),
	)
	return Summary{
		Method:     method,
		Patterns:   len(p.Examples),
		Vocabulary: len(p.Vocabulary()),
		Path:       t.store.Path(method),
		Duration:   elapsed,
	}, nil
}
