package chat

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/matcher"
)

func newMatcher(t *testing.T, stats *analytics.SessionStats) *matcher.Matcher {
	t.Helper()
	corpus := ingestion.PrepareIntents(&ingestion.IntentsFile{Intents: []ingestion.Intent{
		{Tag: "account", Patterns: []string{"reset my password", "change my email"}, Responses: []string{"Open settings."}},
		{Tag: "web_sports", Patterns: []string{"football match tonight"}, Responses: []string{"Kick-off is at 8."}},
	}})
	corpus.Append(ingestion.PrepareQARows([]ingestion.QARow{
		{Question: "best running shoes", Answer: "Try a neutral trainer.", Topic: "sports", SourceURL: "https://example.org/shoes"},
	}))
	p, err := indexer.Build(faq.MethodBoolean, corpus, 0.1)
	require.NoError(t, err)

	opts := []matcher.Option{matcher.WithRand(rand.New(rand.NewPCG(1, 2)))}
	if stats != nil {
		opts = append(opts, matcher.WithSink(stats))
	}
	return matcher.New(p, opts...)
}

func run(t *testing.T, input string, cfg Config, stats *analytics.SessionStats) (string, *Session) {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(newMatcher(t, stats), stats, strings.NewReader(input), &out, cfg)
	require.NoError(t, s.Run(context.Background()))
	return out.String(), s
}

func TestSessionAnswersQuestion(t *testing.T) {
	out, _ := run(t, "How do I reset my password?\n/quit\n", Config{}, nil)

	assert.Contains(t, out, "Bot » Open settings.")
	assert.Contains(t, out, "  score: 0.600")
	assert.Contains(t, out, "Bot » Goodbye!")
	assert.NotContains(t, out, "source:")
}

func TestSessionPrintsSource(t *testing.T) {
	out, _ := run(t, "best running shoes\n", Config{}, nil)

	assert.Contains(t, out, "Try a neutral trainer.")
	assert.Contains(t, out, "  source: https://example.org/shoes")
}

func TestSessionFallback(t *testing.T) {
	out, _ := run(t, "what is the weather on mars\nexit\n", Config{}, nil)

	assert.Contains(t, out, faq.FallbackMessage)
	assert.Contains(t, out, "  score: 0.000")
}

func TestSessionQuitWords(t *testing.T) {
	for _, word := range []string{"/quit", "quit", "EXIT", "bye"} {
		out, _ := run(t, word+"\nreset my password\n", Config{}, nil)
		assert.Contains(t, out, "Goodbye!", word)
		assert.NotContains(t, out, "Open settings.", word)
	}
}

func TestSessionEndsAtEOF(t *testing.T) {
	out, _ := run(t, "", Config{}, nil)
	assert.Contains(t, out, "Method: boolean")
	assert.NotContains(t, out, "Goodbye!")
}

func TestSessionHelpAndTopics(t *testing.T) {
	out, _ := run(t, "/help\n/topics\n", Config{}, nil)

	assert.Contains(t, out, "/stats  Show statistics for this session")
	assert.Contains(t, out, "Available topics: all | account | sports")
}

func TestSessionList(t *testing.T) {
	out, _ := run(t, "/list\n", Config{}, nil)

	assert.Contains(t, out, "- Account (2 questions)")
	assert.Contains(t, out, "    • reset my password")
	assert.Contains(t, out, "- Sports (2 questions)")
}

func TestSessionTopicSwitching(t *testing.T) {
	out, s := run(t, "/topic\n/topic Sports\nreset my password\n/topic nope\n", Config{}, nil)

	assert.Contains(t, out, "Current topic: All")
	assert.Contains(t, out, "Switched topic to: Sports")
	assert.Contains(t, out, "Unknown topic. Use /topics")
	// account answers are outside the sports filter
	assert.NotContains(t, out, "Open settings.")
	assert.Equal(t, "sports", s.Topic())

	_, s = run(t, "/topic all\n", Config{Topic: "sports"}, nil)
	assert.Equal(t, faq.TopicAll, s.Topic())
}

func TestSessionInitialTopic(t *testing.T) {
	out, s := run(t, "", Config{Topic: "web_sports"}, nil)
	assert.Equal(t, "sports", s.Topic())
	assert.Contains(t, out, "Active topic: Sports")

	out, s = run(t, "", Config{Topic: "cooking"}, nil)
	assert.Equal(t, faq.TopicAll, s.Topic())
	assert.Contains(t, out, "Unknown topic 'cooking'. Using all topics.")
}

func TestSessionEmptyLineTip(t *testing.T) {
	out, _ := run(t, "   \n", Config{}, nil)
	assert.Contains(t, out, "(Tip: Ask a question or type /help)")
}

func TestSessionStats(t *testing.T) {
	stats := analytics.NewSessionStats()
	out, s := run(t, "reset my password\nweather on mars\n?!\n/stats\n", Config{}, stats)

	assert.Contains(t, out, "Queries: 3 (answered 1, fallbacks 1, empty 1)")
	assert.Contains(t, out, `unanswered: "weather on mars" x1`)
	assert.NotEmpty(t, s.ID())
}

func TestSessionStatsDisabled(t *testing.T) {
	out, _ := run(t, "/stats\n", Config{}, nil)
	assert.Contains(t, out, "not being collected")
}

func TestSessionPromptAndCanceledContext(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(newMatcher(t, nil), nil, strings.NewReader("reset my password\n"), &out, Config{Prompt: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.Contains(t, out.String(), "You » ")
	assert.NotContains(t, out.String(), "Open settings.")
}
