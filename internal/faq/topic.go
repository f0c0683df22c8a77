package faq

import (
	"strings"
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

// TopicAll disables topic filtering.
const TopicAll = "all"

// webTagPrefix marks tags that came from web-sourced Q/A rows.
const webTagPrefix = "web_"

// NormalizeTopic converts a tag (or user-typed topic) into the key used for
// topic filtering: trimmed, lower-cased, without the web prefix and with
// spaces replaced by underscores.
func NormalizeTopic(tag string) string {
	cleaned := strings.ToLower(strings.TrimSpace(tag))
	cleaned = strings.TrimPrefix(cleaned, webTagPrefix)
	return strings.ReplaceAll(cleaned, " ", "_")
}

// FormatTopicName renders a tag for display, e.g. "web_machine_learning"
// becomes "Machine Learning".
func FormatTopicName(tag string) string {
	cleaned := strings.TrimPrefix(tag, webTagPrefix)
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "_", " "))
	return titleCase(cleaned)
}

// AvailableTopics returns the sorted, de-duplicated topic keys of examples.
func AvailableTopics(examples []Example) []string {
	seen := make(map[string]struct{})
	topics := make([]string, 0)
	for _, ex := range examples {
		topic := NormalizeTopic(ex.Tag)
		if topic == "" {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}
	sortStrings(topics)
	return topics
}

// ResolveTopic turns a user-typed topic into a filter key. Empty input and
// "all" resolve to TopicAll; anything else must name one of the examples'
// topics or ErrUnknownTopic is returned.
func ResolveTopic(examples []Example, requested string) (string, error) {
	topic := NormalizeTopic(requested)
	if topic == "" || topic == TopicAll {
		return TopicAll, nil
	}
	for _, known := range AvailableTopics(examples) {
		if known == topic {
			return topic, nil
		}
	}
	return "", apperrors.Newf(apperrors.ErrUnknownTopic, "unknown topic %q", requested)
}

// TopicSummary describes one topic for listing: how many distinct questions
// it holds and up to three of them.
type TopicSummary struct {
	Topic     string
	Questions int
	Samples   []string
}

// SummarizeTopics groups distinct patterns by topic key, sorted by topic.
func SummarizeTopics(examples []Example, samples int) []TopicSummary {
	patterns := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for _, ex := range examples {
		pattern := strings.TrimSpace(ex.Pattern)
		if pattern == "" {
			continue
		}
		topic := NormalizeTopic(ex.Tag)
		if seen[topic] == nil {
			seen[topic] = make(map[string]struct{})
		}
		if _, dup := seen[topic][pattern]; dup {
			continue
		}
		seen[topic][pattern] = struct{}{}
		patterns[topic] = append(patterns[topic], pattern)
	}
	topics := make([]string, 0, len(patterns))
	for topic := range patterns {
		topics = append(topics, topic)
	}
	sortStrings(topics)

	out := make([]TopicSummary, 0, len(topics))
	for _, topic := range topics {
		list := patterns[topic]
		n := min(samples, len(list))
		out = append(out, TopicSummary{
			Topic:     topic,
			Questions: len(list),
			Samples:   list[:n],
		})
	}
	return out
}

// titleCase upper-cases the first letter of every word and lower-cases the
// rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
