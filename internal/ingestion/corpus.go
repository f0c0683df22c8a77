package ingestion

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/normalizer"
)

// webTagPrefix is prepended to CSV topics so web-sourced tags never collide
// with hand-written intent tags.
const webTagPrefix = "web_"

// PrepareIntents normalizes every intent pattern. Patterns with no usable
// tokens are dropped; the rest share their intent's responses.
func PrepareIntents(file *IntentsFile) Corpus {
	var corpus Corpus
	for i := range file.Intents {
		intent := &file.Intents[i]
		if err := ValidateIntent(intent); err != nil {
			slog.Warn("skipping intent", "index", i, "reason", err)
			continue
		}
		for _, pattern := range intent.Patterns {
			normalized := normalizer.Normalize(pattern)
			if normalized == "" {
				continue
			}
			corpus.Documents = append(corpus.Documents, normalized)
			corpus.Examples = append(corpus.Examples, faq.Example{
				Tag:       intent.Tag,
				Pattern:   pattern,
				Responses: intent.Responses,
			})
		}
	}
	return corpus
}

// PrepareQARows turns CSV rows into examples tagged web_<topic>, each with
// its single answer and source attribution.
func PrepareQARows(rows []QARow) Corpus {
	var corpus Corpus
	for _, row := range rows {
		normalized := normalizer.Normalize(row.Question)
		if normalized == "" {
			continue
		}
		corpus.Documents = append(corpus.Documents, normalized)
		corpus.Examples = append(corpus.Examples, faq.Example{
			Tag:       webTagPrefix + row.Topic,
			Pattern:   row.Question,
			Responses: []string{row.Answer},
			SourceURL: row.SourceURL,
		})
	}
	return corpus
}
