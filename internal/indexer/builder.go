// Package indexer builds retrieval indexes from a prepared corpus and trains
// the per-method artifacts the chat and evaluation commands load.
package indexer

import (
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/bm25"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/normalizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// Build fits the scoring structure for method over corpus. The returned
// payload is validated and aligned row-for-row with corpus.Examples.
func Build(method faq.Method, corpus ingestion.Corpus, threshold float64) (*index.Payload, error) {
	if len(corpus.Documents) != len(corpus.Examples) {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput,
			"corpus has %d documents for %d examples", len(corpus.Documents), len(corpus.Examples))
	}

	var kind index.Kind
	switch method {
	case faq.MethodTFIDF:
		v := vector.NewTFIDF()
		kind = &index.Vector{Vectorizer: v, Matrix: v.FitTransform(corpus.Documents)}
	case faq.MethodBOW:
		v := vector.NewCount()
		kind = &index.Vector{Vectorizer: v, Matrix: v.FitTransform(corpus.Documents)}
	case faq.MethodBM25:
		tokens := tokenizeAll(corpus.Documents)
		kind = &index.BM25{Index: bm25.Build(tokens), DocTokens: tokens}
	case faq.MethodBoolean:
		kind = &index.Boolean{DocTokens: tokenizeAll(corpus.Documents)}
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidMethod, "unsupported method %q", method)
	}

	p := &index.Payload{
		Method:    method,
		Examples:  corpus.Examples,
		Threshold: threshold,
		Kind:      kind,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func tokenizeAll(docs []string) [][]string {
	tokens := make([][]string, len(docs))
	for i, doc := range docs {
		tokens[i] = normalizer.Fields(doc)
	}
	return tokens
}
