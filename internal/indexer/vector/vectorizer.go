// Package vector turns normalized patterns into sparse document-term vectors
// and provides the cosine similarity primitive used by the vector retrieval
// methods.
package vector

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Weighting selects how term counts become vector components.
type Weighting string

const (
	// WeightTFIDF uses raw counts times smoothed IDF, L2-normalized per row.
	WeightTFIDF Weighting = "tfidf"
	// WeightCount uses raw counts.
	WeightCount Weighting = "count"
)

// minTokenRunes drops one-character tokens, matching the word pattern the
// indexes were originally trained with.
const minTokenRunes = 2

// Vectorizer maps text into a fixed vocabulary. It is fitted once on the
// training corpus and is read-only afterwards.
type Vectorizer struct {
	Weighting  Weighting      `cbor:"weighting"`
	NGramMax   int            `cbor:"ngram_max"`
	Vocabulary map[string]int `cbor:"vocabulary"`
	IDF        []float64      `cbor:"idf,omitempty"`
}

// NewTFIDF returns an unfitted TF-IDF vectorizer over unigrams and bigrams.
func NewTFIDF() *Vectorizer {
	return &Vectorizer{Weighting: WeightTFIDF, NGramMax: 2}
}

// NewCount returns an unfitted bag-of-words vectorizer over unigrams.
func NewCount() *Vectorizer {
	return &Vectorizer{Weighting: WeightCount, NGramMax: 1}
}

// FitTransform learns the vocabulary (and IDF weights) from docs and returns
// one row per document, aligned by position.
func (v *Vectorizer) FitTransform(docs []string) []Sparse {
	analyzed := make([][]string, len(docs))
	terms := make(map[string]struct{})
	for i, doc := range docs {
		analyzed[i] = v.analyze(doc)
		for _, term := range analyzed[i] {
			terms[term] = struct{}{}
		}
	}

	features := make([]string, 0, len(terms))
	for term := range terms {
		features = append(features, term)
	}
	sort.Strings(features)
	v.Vocabulary = make(map[string]int, len(features))
	for i, term := range features {
		v.Vocabulary[term] = i
	}

	if v.Weighting == WeightTFIDF {
		docFreq := make([]int, len(features))
		for _, doc := range analyzed {
			seen := make(map[int]struct{}, len(doc))
			for _, term := range doc {
				col := v.Vocabulary[term]
				if _, ok := seen[col]; ok {
					continue
				}
				seen[col] = struct{}{}
				docFreq[col]++
			}
		}
		n := float64(len(docs))
		v.IDF = make([]float64, len(features))
		for col, df := range docFreq {
			v.IDF[col] = math.Log((1+n)/(1+float64(df))) + 1
		}
	}

	rows := make([]Sparse, len(analyzed))
	for i, doc := range analyzed {
		rows[i] = v.vectorize(doc)
	}
	return rows
}

// Transform projects text into the fitted vocabulary. Unknown terms are
// ignored.
func (v *Vectorizer) Transform(text string) Sparse {
	return v.vectorize(v.analyze(text))
}

// Features returns the vocabulary in column order.
func (v *Vectorizer) Features() []string {
	features := make([]string, len(v.Vocabulary))
	for term, col := range v.Vocabulary {
		features[col] = term
	}
	return features
}

func (v *Vectorizer) vectorize(terms []string) Sparse {
	counts := make(map[int]float64, len(terms))
	for _, term := range terms {
		if col, ok := v.Vocabulary[term]; ok {
			counts[col]++
		}
	}
	if v.Weighting == WeightTFIDF {
		for col := range counts {
			counts[col] *= v.IDF[col]
		}
		return fromMap(counts).normalized()
	}
	return fromMap(counts)
}

// analyze splits normalized text into the unigram..NGramMax n-grams of its
// tokens.
func (v *Vectorizer) analyze(text string) []string {
	tokens := make([]string, 0)
	for _, field := range strings.Fields(text) {
		if utf8.RuneCountInString(field) >= minTokenRunes {
			tokens = append(tokens, field)
		}
	}
	maxN := v.NGramMax
	if maxN < 1 {
		maxN = 1
	}
	terms := make([]string, 0, len(tokens)*maxN)
	terms = append(terms, tokens...)
	for n := 2; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
