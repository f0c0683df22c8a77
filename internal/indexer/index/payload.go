// Package index defines the loaded retrieval artifact: the ordered examples,
// the match threshold and one method-specific scoring structure aligned 1:1
// with the examples by position.
package index

import (
	"fmt"
	"math"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/bm25"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// Kind is the method-specific scoring structure of a payload. It is one of
// *Vector, *BM25 or *Boolean.
type Kind interface {
	// Rows is the number of scoreable documents.
	Rows() int
	isKind()
}

// Vector holds a fitted vectorizer and the document-term matrix it produced.
type Vector struct {
	Vectorizer *vector.Vectorizer
	Matrix     []vector.Sparse
}

// BM25 holds precomputed BM25 statistics. DocTokens keeps the tokenized
// corpus for vocabulary inspection.
type BM25 struct {
	Index     *bm25.Index
	DocTokens [][]string
}

// Boolean holds the tokenized corpus.
type Boolean struct {
	DocTokens [][]string
}

func (v *Vector) Rows() int  { return len(v.Matrix) }
func (b *BM25) Rows() int    { return b.Index.Len() }
func (b *Boolean) Rows() int { return len(b.DocTokens) }

func (*Vector) isKind()  {}
func (*BM25) isKind()    {}
func (*Boolean) isKind() {}

// Payload is a fully materialized retrieval index. It is never mutated after
// it has been built or loaded, so any number of goroutines may score against
// it concurrently.
type Payload struct {
	Method    faq.Method
	Examples  []faq.Example
	Threshold float64
	Kind      Kind
}

// Validate checks that the method is supported, that the scoring structure
// matches the method and is internally consistent, and that every scoring
// row has an example.
func (p *Payload) Validate() error {
	if !p.Method.Valid() {
		return apperrors.Newf(apperrors.ErrInvalidMethod, "unsupported method %q", p.Method)
	}
	if p.Threshold < 0 {
		return apperrors.Newf(apperrors.ErrInvalidInput, "threshold must be >= 0, got %v", p.Threshold)
	}
	if p.Kind == nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, "%s index has no scoring structure", p.Method)
	}
	if err := matchKind(p.Method, p.Kind); err != nil {
		return err
	}
	if err := checkShape(p.Kind); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, "%s index: %v", p.Method, err)
	}
	if rows := p.Kind.Rows(); rows != len(p.Examples) {
		return apperrors.Newf(apperrors.ErrInvalidInput,
			"%s index has %d scoring rows for %d examples", p.Method, rows, len(p.Examples))
	}
	return nil
}

// checkShape rejects structures the scorer would index out of range.
func checkShape(kind Kind) error {
	switch k := kind.(type) {
	case *Vector:
		return checkVector(k)
	case *BM25:
		idx := k.Index
		if len(idx.DocLengths) != len(idx.DocTermFreqs) {
			return fmt.Errorf("%d document lengths for %d documents", len(idx.DocLengths), len(idx.DocTermFreqs))
		}
		if idx.AvgDocLength < 0 || math.IsNaN(idx.AvgDocLength) || math.IsInf(idx.AvgDocLength, 0) {
			return fmt.Errorf("invalid average document length %v", idx.AvgDocLength)
		}
		if k.DocTokens != nil && len(k.DocTokens) != len(idx.DocTermFreqs) {
			return fmt.Errorf("%d token lists for %d documents", len(k.DocTokens), len(idx.DocTermFreqs))
		}
	}
	return nil
}

func checkVector(k *Vector) error {
	v := k.Vectorizer
	terms := len(v.Vocabulary)
	for term, col := range v.Vocabulary {
		if col < 0 || col >= terms {
			return fmt.Errorf("term %q maps to column %d of %d", term, col, terms)
		}
	}
	switch v.Weighting {
	case vector.WeightTFIDF:
		if len(v.IDF) != terms {
			return fmt.Errorf("%d idf weights for %d terms", len(v.IDF), terms)
		}
	case vector.WeightCount:
	default:
		return fmt.Errorf("unknown weighting %q", v.Weighting)
	}
	for i, row := range k.Matrix {
		if len(row.Indices) != len(row.Values) {
			return fmt.Errorf("row %d has %d indices for %d values", i, len(row.Indices), len(row.Values))
		}
		for j, col := range row.Indices {
			if col < 0 || col >= terms || (j > 0 && col <= row.Indices[j-1]) {
				return fmt.Errorf("row %d has column %d out of order or range", i, col)
			}
		}
	}
	return nil
}

// Vocabulary returns the sorted terms the index can match on.
func (p *Payload) Vocabulary() []string {
	switch k := p.Kind.(type) {
	case *Vector:
		return k.Vectorizer.Features()
	case *BM25:
		return vocabulary(k.DocTokens)
	case *Boolean:
		return vocabulary(k.DocTokens)
	}
	return nil
}

func matchKind(method faq.Method, kind Kind) error {
	ok := false
	switch k := kind.(type) {
	case *Vector:
		ok = k.Vectorizer != nil &&
			(method == faq.MethodTFIDF && k.Vectorizer.Weighting == vector.WeightTFIDF ||
				method == faq.MethodBOW && k.Vectorizer.Weighting == vector.WeightCount)
	case *BM25:
		ok = method == faq.MethodBM25 && k.Index != nil
	case *Boolean:
		ok = method == faq.MethodBoolean
	}
	if !ok {
		return apperrors.New(apperrors.ErrInvalidInput,
			fmt.Sprintf("scoring structure %T does not serve method %s", kind, method))
	}
	return nil
}
