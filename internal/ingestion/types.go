// Package ingestion reads raw training data (intents JSON and web-sourced
// Q/A CSV files) and prepares the normalized corpus and aligned examples an
// index is built from.
package ingestion

import "github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"

// IntentsFile is the JSON document holding hand-written intents.
type IntentsFile struct {
	Intents []Intent `json:"intents"`
}

// Intent groups question patterns that share a tag and a response set.
type Intent struct {
	Tag       string   `json:"tag"`
	Patterns  []string `json:"patterns"`
	Responses []string `json:"responses"`
}

// QARow is one question/answer pair from a CSV source.
type QARow struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Topic     string `json:"topic"`
	SourceURL string `json:"source_url"`
}

// Corpus is the normalized text of every kept pattern together with its
// example. Documents[i] always belongs to Examples[i].
type Corpus struct {
	Documents []string
	Examples  []faq.Example
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.Documents)
}

// Append adds every document of other, preserving alignment.
func (c *Corpus) Append(other Corpus) {
	c.Documents = append(c.Documents, other.Documents...)
	c.Examples = append(c.Examples, other.Examples...)
}
