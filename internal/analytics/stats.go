package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/kafka"
)

// Stats is a point-in-time summary of recorded chat events.
type Stats struct {
	Total          int64        `json:"total"`
	Answered       int64        `json:"answered"`
	Fallbacks      int64        `json:"fallbacks"`
	EmptyQueries   int64        `json:"empty_queries"`
	CacheHits      int64        `json:"cache_hits"`
	FallbackRate   float64      `json:"fallback_rate"`
	AvgScore       float64      `json:"avg_score"`
	AvgLatencyMs   float64      `json:"avg_latency_ms"`
	P95LatencyMs   float64      `json:"p95_latency_ms"`
	TopTags        []QueryCount `json:"top_tags"`
	UnansweredTop  []QueryCount `json:"unanswered_top"`
	QueriesPerHour float64      `json:"queries_per_hour"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// SessionStats aggregates chat events in memory. It is safe for concurrent
// use.
type SessionStats struct {
	mu           sync.Mutex
	total        int64
	answered     int64
	fallbacks    int64
	emptyQueries int64
	cacheHits    int64
	scoreSum     float64
	scored       int64
	latencies    []float64
	tagCounts    map[string]int64
	unanswered   map[string]int64
	startTime    time.Time
	logger       *slog.Logger
}

func NewSessionStats() *SessionStats {
	return &SessionStats{
		latencies:  make([]float64, 0, 256),
		tagCounts:  make(map[string]int64),
		unanswered: make(map[string]int64),
		startTime:  time.Now(),
		logger:     slog.Default().With("component", "session-stats"),
	}
}

// Track records one event.
func (s *SessionStats) Track(event ChatEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if event.CacheHit {
		s.cacheHits++
	}
	s.latencies = append(s.latencies, event.LatencyMs)
	switch event.Type {
	case EventAnswered:
		s.answered++
		s.scoreSum += event.Score
		s.scored++
		if event.Tag != "" {
			s.tagCounts[event.Tag]++
		}
	case EventFallback:
		s.fallbacks++
		s.scoreSum += event.Score
		s.scored++
		s.unanswered[event.Query]++
	case EventEmptyQuery:
		s.emptyQueries++
	}
}

// Stats returns the current summary.
func (s *SessionStats) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Total:        s.total,
		Answered:     s.answered,
		Fallbacks:    s.fallbacks,
		EmptyQueries: s.emptyQueries,
		CacheHits:    s.cacheHits,
	}
	if s.total > 0 {
		stats.FallbackRate = float64(s.fallbacks+s.emptyQueries) / float64(s.total)
	}
	if s.scored > 0 {
		stats.AvgScore = s.scoreSum / float64(s.scored)
	}
	if len(s.latencies) > 0 {
		sorted := make([]float64, len(s.latencies))
		copy(sorted, s.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P95LatencyMs = percentile(sorted, 95)
	}
	stats.TopTags = topN(s.tagCounts, 5)
	stats.UnansweredTop = topN(s.unanswered, 5)
	if elapsed := time.Since(s.startTime).Hours(); elapsed > 0 {
		stats.QueriesPerHour = float64(s.total) / elapsed
	}
	return stats
}

// HandleMessage returns a consumer callback that decodes published chat
// events into s. Undecodable messages are logged and skipped.
func HandleMessage(s *SessionStats) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChatEvent](value)
		if err != nil {
			s.logger.Error("failed to decode chat event", "error", err)
			return nil
		}
		s.Track(event)
		return nil
	}
}

func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n largest counts, ties broken alphabetically.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
