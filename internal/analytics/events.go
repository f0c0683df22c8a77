// Package analytics records what happens in chat sessions. Events go to an
// in-memory SessionStats for the /stats command and, when Kafka is enabled,
// to a Collector that publishes them for offline aggregation.
package analytics

import "time"

type EventType string

const (
	EventAnswered   EventType = "answered"
	EventFallback   EventType = "fallback"
	EventEmptyQuery EventType = "empty_query"
)

// ChatEvent describes one answered (or not answered) chat turn.
type ChatEvent struct {
	Type      EventType `json:"type"`
	Method    string    `json:"method"`
	Query     string    `json:"query"`
	Topic     string    `json:"topic"`
	Tag       string    `json:"tag,omitempty"`
	Score     float64   `json:"score"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs float64   `json:"latency_ms"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink receives chat events. Track must not block.
type Sink interface {
	Track(event ChatEvent)
}

// Tee fans events out to every non-nil sink.
func Tee(sinks ...Sink) Sink {
	kept := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return kept
}

type multiSink []Sink

func (m multiSink) Track(event ChatEvent) {
	for _, s := range m {
		s.Track(event)
	}
}
