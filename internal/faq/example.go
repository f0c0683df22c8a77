// Package faq defines the stored question/answer model shared by training,
// matching and evaluation: examples, retrieval methods and topics.
package faq

// FallbackMessage is returned whenever no stored pattern clears the match
// threshold or the matched example has no response text.
const FallbackMessage = "I am not sure about that yet. Please rephrase your question."

// Example is one stored question pattern and the answers attached to its
// tag. Examples are immutable once a corpus has been built.
type Example struct {
	Tag       string   `json:"tag" cbor:"tag"`
	Pattern   string   `json:"pattern" cbor:"pattern"`
	Responses []string `json:"responses" cbor:"responses"`
	SourceURL string   `json:"source_url,omitempty" cbor:"source_url,omitempty"`
}

// Classes returns the sorted set of tags used by examples.
func Classes(examples []Example) []string {
	seen := make(map[string]struct{}, len(examples))
	classes := make([]string, 0)
	for _, ex := range examples {
		if _, ok := seen[ex.Tag]; ok {
			continue
		}
		seen[ex.Tag] = struct{}{}
		classes = append(classes, ex.Tag)
	}
	sortStrings(classes)
	return classes
}
