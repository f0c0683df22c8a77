// Package bm25 precomputes the corpus statistics BM25 ranking needs:
// per-term inverse document frequency, raw per-document term counts and
// document length statistics.
package bm25

import "math"

const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Index is built once from tokenized documents and is read-only afterwards.
// Terms absent from IDF contribute nothing at query time.
type Index struct {
	IDF          map[string]float64 `cbor:"idf"`
	DocTermFreqs []map[string]int   `cbor:"doc_term_freqs"`
	DocLengths   []int              `cbor:"doc_lengths"`
	AvgDocLength float64            `cbor:"avg_doc_length"`
	K1           float64            `cbor:"k1"`
	B            float64            `cbor:"b"`
}

// Build computes an Index over docs. An empty corpus yields empty maps and a
// zero average length, which scorers must treat as "score everything 0".
func Build(docs [][]string) *Index {
	idx := &Index{
		IDF:          make(map[string]float64),
		DocTermFreqs: make([]map[string]int, 0, len(docs)),
		DocLengths:   make([]int, 0, len(docs)),
		K1:           DefaultK1,
		B:            DefaultB,
	}
	if len(docs) == 0 {
		return idx
	}

	docFreq := make(map[string]int)
	totalTokens := 0
	for _, tokens := range docs {
		termFreq := make(map[string]int, len(tokens))
		for _, token := range tokens {
			termFreq[token]++
		}
		for term := range termFreq {
			docFreq[term]++
		}
		idx.DocTermFreqs = append(idx.DocTermFreqs, termFreq)
		idx.DocLengths = append(idx.DocLengths, len(tokens))
		totalTokens += len(tokens)
	}

	totalDocs := len(docs)
	idx.AvgDocLength = float64(totalTokens) / float64(totalDocs)
	for term, df := range docFreq {
		idx.IDF[term] = computeIDF(totalDocs, df)
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.DocTermFreqs)
}

// computeIDF is the Robertson-Sparck Jones variant ln(1 + (N-df+0.5)/(df+0.5)).
// It is not clamped at zero.
func computeIDF(totalDocs int, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq) + 0.5
	denominator := float64(docFreq) + 0.5
	return math.Log(1 + numerator/denominator)
}
