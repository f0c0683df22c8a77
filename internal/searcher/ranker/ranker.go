// Package ranker scores a normalized query against every row of a loaded
// index and picks the best eligible row.
package ranker

import (
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/bm25"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/normalizer"
)

// ScoreAll returns one score per example of p, in example order. Higher is
// more similar. p must have passed Validate.
func ScoreAll(normalizedQuery string, p *index.Payload) []float64 {
	switch k := p.Kind.(type) {
	case *index.Vector:
		return vector.CosineAll(k.Vectorizer.Transform(normalizedQuery), k.Matrix)
	case *index.BM25:
		return ScoreBM25(normalizer.Fields(normalizedQuery), k.Index)
	case *index.Boolean:
		return ScoreBoolean(normalizer.Fields(normalizedQuery), k.DocTokens)
	}
	return nil
}

// ScoreBM25 sums idf * tfNorm * qf over the distinct query terms present in
// each document. An empty query or a zero average document length scores
// every document 0.
func ScoreBM25(queryTokens []string, idx *bm25.Index) []float64 {
	scores := make([]float64, idx.Len())
	if len(queryTokens) == 0 || idx.AvgDocLength == 0 {
		return scores
	}

	terms, counts := termCounts(queryTokens)
	for i, termFreqs := range idx.DocTermFreqs {
		docLength := float64(idx.DocLengths[i])
		var score float64
		for _, term := range terms {
			tf, ok := termFreqs[term]
			if !ok {
				continue
			}
			tfNorm := computeTFNorm(float64(tf), docLength, idx.AvgDocLength, idx.K1, idx.B)
			score += idx.IDF[term] * tfNorm * float64(counts[term])
		}
		scores[i] = score
	}
	return scores
}

// ScoreBoolean returns |Q ∩ D| / |Q| over unique terms, in [0, 1].
func ScoreBoolean(queryTokens []string, docTokens [][]string) []float64 {
	scores := make([]float64, len(docTokens))
	if len(queryTokens) == 0 {
		return scores
	}

	query, _ := termCounts(queryTokens)
	for i, doc := range docTokens {
		docSet := make(map[string]struct{}, len(doc))
		for _, token := range doc {
			docSet[token] = struct{}{}
		}
		matches := 0
		for _, term := range query {
			if _, ok := docSet[term]; ok {
				matches++
			}
		}
		scores[i] = float64(matches) / float64(len(query))
	}
	return scores
}

// Best returns the index and score of the highest eligible score. The lowest
// index wins ties. A nil mask makes every row eligible. ok is false when no
// row is eligible.
func Best(scores []float64, eligible []bool) (idx int, score float64, ok bool) {
	idx = -1
	for i, s := range scores {
		if eligible != nil && !eligible[i] {
			continue
		}
		if idx < 0 || s > score {
			idx, score = i, s
		}
	}
	if idx < 0 {
		return -1, 0, false
	}
	return idx, score, true
}

// termCounts returns the distinct terms in first-seen order and their counts.
func termCounts(tokens []string) ([]string, map[string]int) {
	counts := make(map[string]int, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if counts[token] == 0 {
			terms = append(terms, token)
		}
		counts[token]++
	}
	return terms, counts
}

func computeTFNorm(termFreq, docLength, avgDocLength, k1, b float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
