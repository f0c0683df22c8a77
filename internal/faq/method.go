package faq

import (
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// Method names a retrieval strategy. The string value is what users type and
// what artifact file names carry.
type Method string

const (
	MethodTFIDF   Method = "tfidf"
	MethodBOW     Method = "bow"
	MethodBM25    Method = "bm25"
	MethodBoolean Method = "boolean"
)

// Methods lists every supported method in sorted order.
func Methods() []Method {
	return []Method{MethodBM25, MethodBoolean, MethodBOW, MethodTFIDF}
}

// ParseMethod normalizes user input into a Method or fails with
// ErrInvalidMethod.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		names := make([]string, 0, 4)
		for _, known := range Methods() {
			names = append(names, string(known))
		}
		return "", apperrors.Newf(apperrors.ErrInvalidMethod,
			"unsupported method %q, supported methods: %s", s, strings.Join(names, ", "))
	}
	return m, nil
}

func (m Method) Valid() bool {
	switch m {
	case MethodTFIDF, MethodBOW, MethodBM25, MethodBoolean:
		return true
	}
	return false
}

// IsVector reports whether the method scores by cosine similarity over a
// document-term matrix.
func (m Method) IsVector() bool {
	return m == MethodTFIDF || m == MethodBOW
}

func (m Method) String() string {
	return string(m)
}

func sortStrings(s []string) {
	sort.Strings(s)
}
