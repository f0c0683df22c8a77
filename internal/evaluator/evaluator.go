// Package evaluator measures retrieval quality with a leave-one-out
// protocol: every stored pattern is used as a query with its own row
// excluded, and the top match counts as correct when it carries the same
// tag.
package evaluator

import (
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/normalizer"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/ranker"
)

// Result aggregates one method's evaluation.
type Result struct {
	Method    faq.Method `json:"method"`
	Total     int        `json:"total"`
	Correct   int        `json:"correct"`
	Fallbacks int        `json:"fallbacks"`
}

// Accuracy is Correct/Total, or 0 when nothing was evaluated.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// FallbackRate is Fallbacks/Total, or 0 when nothing was evaluated.
func (r Result) FallbackRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Fallbacks) / float64(r.Total)
}

type outcome int

const (
	skipped outcome = iota
	correct
	wrong
	fellBack
)

func (r *Result) add(o outcome) {
	switch o {
	case correct:
		r.Total++
		r.Correct++
	case wrong:
		r.Total++
	case fellBack:
		r.Total++
		r.Fallbacks++
	}
}

// Evaluate runs leave-one-out over every example of p, in order.
func Evaluate(p *index.Payload) Result {
	result := Result{Method: p.Method}
	for i := range p.Examples {
		result.add(evaluateOne(p, i))
	}
	return result
}

// evaluateOne queries p with example i's pattern, excluding row i.
func evaluateOne(p *index.Payload, i int) outcome {
	normalized := normalizer.Normalize(p.Examples[i].Pattern)
	if normalized == "" {
		return skipped
	}
	scores := ranker.ScoreAll(normalized, p)
	eligible := make([]bool, len(scores))
	for j := range eligible {
		eligible[j] = j != i
	}
	best, score, ok := ranker.Best(scores, eligible)
	if !ok || score < p.Threshold {
		return fellBack
	}
	if p.Examples[best].Tag == p.Examples[i].Tag {
		return correct
	}
	return wrong
}
