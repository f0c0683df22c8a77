// Package matcher answers a raw user query against a loaded index: it
// normalizes the text, scores every stored pattern, restricts the candidates
// to the selected topic, and returns a response from the best match when its
// score clears the index threshold.
package matcher

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
)

// Answer is the outcome of one query.
type Answer struct {
	Text      string
	Score     float64
	SourceURL string
	// Tag and Index identify the matched example. Index is -1 and Tag is
	// empty when no row was eligible or the query had no usable tokens.
	Tag      string
	Index    int
	Fallback bool
	CacheHit bool
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithRand sets the source used to pick among a tag's responses.
func WithRand(rng *rand.Rand) Option {
	return func(m *Matcher) { m.rng = rng }
}

// WithCache reuses ranking decisions across calls.
func WithCache(c *cache.MatchCache) Option {
	return func(m *Matcher) { m.cache = c }
}

// WithSink reports every answered query.
func WithSink(s analytics.Sink) Option {
	return func(m *Matcher) { m.sink = s }
}

// WithMetrics records query outcomes.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Matcher) { m.metrics = mt }
}

// Matcher answers queries against one payload. It is safe for concurrent
// use.
type Matcher struct {
	payload *index.Payload
	rngMu   sync.Mutex
	rng     *rand.Rand
	cache   *cache.MatchCache
	sink    analytics.Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Matcher over p, which must have passed Validate.
func New(p *index.Payload, opts ...Option) *Matcher {
	m := &Matcher{
		payload: p,
		logger:  slog.Default().With("component", "matcher", "method", p.Method),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return m
}

// Payload returns the index the matcher answers from.
func (m *Matcher) Payload() *index.Payload {
	return m.payload
}

// Answer resolves rawText within topic ("all" or empty for no restriction).
func (m *Matcher) Answer(ctx context.Context, rawText, topic string) Answer {
	start := time.Now()
	normalized := normalizer.Normalize(rawText)

	var ans Answer
	outcome := metrics.OutcomeAnswered
	if normalized == "" {
		ans = fallback(0)
		outcome = metrics.OutcomeEmptyQuery
	} else {
		d, hit := m.decide(ctx, normalized, topic)
		ans = m.resolve(d)
		ans.CacheHit = hit
		if ans.Fallback {
			outcome = metrics.OutcomeFallback
		}
	}
	elapsed := time.Since(start)

	method := m.payload.Method.String()
	m.metrics.ObserveQuery(method, outcome, ans.Score, elapsed)
	if m.sink != nil {
		m.sink.Track(analytics.ChatEvent{
			Type:      analytics.EventType(outcome),
			Method:    method,
			Query:     rawText,
			Topic:     topic,
			Tag:       ans.Tag,
			Score:     ans.Score,
			CacheHit:  ans.CacheHit,
			LatencyMs: float64(elapsed.Microseconds()) / 1000,
			SessionID: logger.SessionID(ctx),
			Timestamp: start.UTC(),
		})
	}
	logger.FromContext(ctx).Debug("query answered",
		"component", "matcher",
		"method", method,
		"outcome", outcome,
		"score", ans.Score,
		"tag", ans.Tag,
		"cache_hit", ans.CacheHit,
		"latency", elapsed,
	)
	return ans
}

func (m *Matcher) decide(ctx context.Context, normalized, topic string) (cache.Decision, bool) {
	compute := func() cache.Decision {
		idx, score, ok := Decide(normalized, m.payload, topic)
		return cache.Decision{Index: idx, Score: score, Found: ok}
	}
	if m.cache == nil {
		return compute(), false
	}
	key := cache.Key(m.payload.Method, m.payload.Threshold, normalized, topic)
	d, hit := m.cache.GetOrCompute(ctx, key, compute)
	if d.Found && (d.Index < 0 || d.Index >= len(m.payload.Examples)) {
		m.logger.Warn("cached decision out of range, recomputing", "index", d.Index)
		return compute(), false
	}
	return d, hit
}

func (m *Matcher) resolve(d cache.Decision) Answer {
	if !d.Found {
		return fallback(0)
	}
	ex := m.payload.Examples[d.Index]
	if d.Score < m.payload.Threshold {
		ans := fallback(d.Score)
		ans.Index, ans.Tag = d.Index, ex.Tag
		return ans
	}
	m.rngMu.Lock()
	text, ok := pickResponse(ex.Responses, m.rng)
	m.rngMu.Unlock()
	ans := Answer{
		Text:      text,
		Score:     d.Score,
		SourceURL: ex.SourceURL,
		Tag:       ex.Tag,
		Index:     d.Index,
	}
	if !ok {
		ans.Text = faq.FallbackMessage
		ans.Fallback = true
	}
	return ans
}

// Decide scores normalizedQuery against p, restricted to topic, and returns
// the best eligible row. ok is false when no row is eligible.
func Decide(normalizedQuery string, p *index.Payload, topic string) (idx int, score float64, ok bool) {
	scores := ranker.ScoreAll(normalizedQuery, p)
	return ranker.Best(scores, EligibleRows(p.Examples, topic))
}

// EligibleRows returns the topic mask for examples, or nil when topic does
// not restrict anything.
func EligibleRows(examples []faq.Example, topic string) []bool {
	want := faq.NormalizeTopic(topic)
	if want == "" || want == faq.TopicAll {
		return nil
	}
	eligible := make([]bool, len(examples))
	for i, ex := range examples {
		eligible[i] = faq.NormalizeTopic(ex.Tag) == want
	}
	return eligible
}

// MatchAndAnswer is the stateless form of Answer: it returns the response
// text, the best score and the matched example's source URL.
func MatchAndAnswer(rawText string, p *index.Payload, topic string, rng *rand.Rand) (string, float64, string) {
	normalized := normalizer.Normalize(rawText)
	if normalized == "" {
		return faq.FallbackMessage, 0, ""
	}
	idx, score, ok := Decide(normalized, p, topic)
	if !ok {
		return faq.FallbackMessage, 0, ""
	}
	if score < p.Threshold {
		return faq.FallbackMessage, score, ""
	}
	ex := p.Examples[idx]
	text, ok := pickResponse(ex.Responses, rng)
	if !ok {
		return faq.FallbackMessage, score, ex.SourceURL
	}
	return text, score, ex.SourceURL
}

func pickResponse(responses []string, rng *rand.Rand) (string, bool) {
	if len(responses) == 0 {
		return "", false
	}
	return responses[rng.IntN(len(responses))], true
}

func fallback(score float64) Answer {
	return Answer{Text: faq.FallbackMessage, Score: score, Index: -1, Fallback: true}
}
