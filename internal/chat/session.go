// Package chat runs the interactive question/answer loop. A Session reads
// one line at a time from any io.Reader, so the same loop serves a terminal
// and scripted input.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/searcher/matcher"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/logger"
)

// Config controls a Session.
type Config struct {
	// Topic is the initial filter. Unknown topics fall back to all.
	Topic string
	// Prompt prints an input prompt before every line. Set it when reading
	// from a terminal.
	Prompt bool
}

// Session is one chat conversation against a single matcher.
type Session struct {
	id      string
	matcher *matcher.Matcher
	stats   *analytics.SessionStats
	in      *bufio.Scanner
	out     io.Writer
	topic   string
	prompt  bool
	style   styles
	logger  *slog.Logger
}

type styles struct {
	title  lipgloss.Style
	prompt lipgloss.Style
	bot    lipgloss.Style
	meta   lipgloss.Style
	warn   lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:  r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		prompt: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		bot:    r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		meta:   r.NewStyle().Foreground(lipgloss.Color("8")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	}
}

// NewSession creates a session. stats receives nothing directly: the
// matcher's sink is expected to feed it, and the session only reads it for
// /stats. stats may be nil.
func NewSession(m *matcher.Matcher, stats *analytics.SessionStats, in io.Reader, out io.Writer, cfg Config) *Session {
	s := &Session{
		id:      uuid.NewString(),
		matcher: m,
		stats:   stats,
		in:      bufio.NewScanner(in),
		out:     out,
		topic:   faq.TopicAll,
		prompt:  cfg.Prompt,
		style:   newStyles(out),
	}
	s.logger = slog.Default().With("component", "chat", "session_id", s.id)

	topic, err := faq.ResolveTopic(m.Payload().Examples, cfg.Topic)
	if err != nil {
		s.warnf("Unknown topic '%s'. Using all topics.", cfg.Topic)
	} else {
		s.topic = topic
	}
	return s
}

// ID returns the session identifier attached to every chat event.
func (s *Session) ID() string { return s.id }

// Topic returns the active topic filter.
func (s *Session) Topic() string { return s.topic }

// Run reads lines until a quit command, end of input or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	ctx = logger.WithSessionID(ctx, s.id)
	s.logger.Info("chat session started", "method", s.matcher.Payload().Method, "topic", s.topic)
	defer s.logger.Info("chat session ended")

	s.banner()
	s.metaf("Active topic: %s", faq.FormatTopicName(s.topic))
	s.metaf("Use /topics to see topics, /topic <name> to switch, /topic all to remove filter.")

	for {
		if s.prompt {
			fmt.Fprint(s.out, s.style.prompt.Render("You » "))
		}
		if !s.in.Scan() {
			return s.in.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := s.handle(ctx, strings.TrimSpace(s.in.Text())); quit {
			return nil
		}
	}
}

// handle processes one input line and reports whether the session ends.
func (s *Session) handle(ctx context.Context, line string) bool {
	command := strings.ToLower(line)
	switch {
	case command == "/quit" || command == "quit" || command == "exit" || command == "bye":
		s.botf("Goodbye!")
		return true
	case command == "/help":
		s.help()
	case command == "/topics":
		topics := append([]string{faq.TopicAll}, faq.AvailableTopics(s.matcher.Payload().Examples)...)
		s.metaf("Available topics: %s", strings.Join(topics, " | "))
	case command == "/list":
		s.list()
	case command == "/stats":
		s.printStats()
	case strings.HasPrefix(command, "/topic"):
		s.switchTopic(line)
	case command == "/clear":
		if s.prompt {
			fmt.Fprint(s.out, "\033[H\033[2J")
		}
		s.banner()
		s.metaf("Active topic: %s", faq.FormatTopicName(s.topic))
	case line == "":
		s.metaf("(Tip: Ask a question or type /help)")
	default:
		ans := s.matcher.Answer(ctx, line, s.topic)
		s.botf("%s", ans.Text)
		s.metaf("  score: %.3f", ans.Score)
		if ans.SourceURL != "" {
			s.metaf("  source: %s", ans.SourceURL)
		}
	}
	return false
}

func (s *Session) switchTopic(line string) {
	parts := strings.Fields(line)
	if len(parts) == 1 {
		s.metaf("Current topic: %s", faq.FormatTopicName(s.topic))
		s.metaf("Usage: /topic <name> or /topic all")
		return
	}
	requested := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))
	topic, err := faq.ResolveTopic(s.matcher.Payload().Examples, requested)
	switch {
	case err != nil:
		s.warnf("Unknown topic. Use /topics to see valid topic names.")
	case topic == faq.TopicAll:
		s.topic = topic
		s.metaf("Topic filter removed. Using all topics.")
	default:
		s.topic = topic
		s.metaf("Switched topic to: %s", faq.FormatTopicName(topic))
	}
	s.logger.Debug("topic changed", "topic", s.topic)
}

func (s *Session) list() {
	summaries := faq.SummarizeTopics(s.matcher.Payload().Examples, 3)
	if len(summaries) == 0 {
		s.warnf("No examples found in the loaded index.")
		return
	}
	s.metaf("Available topics and sample questions:")
	for _, sum := range summaries {
		s.metaf("- %s (%d questions)", faq.FormatTopicName(sum.Topic), sum.Questions)
		for _, sample := range sum.Samples {
			s.metaf("    • %s", sample)
		}
	}
}

func (s *Session) printStats() {
	if s.stats == nil {
		s.warnf("Session statistics are not being collected.")
		return
	}
	st := s.stats.Stats()
	s.metaf("Queries: %d (answered %d, fallbacks %d, empty %d)", st.Total, st.Answered, st.Fallbacks, st.EmptyQueries)
	s.metaf("Fallback rate: %.1f%%", st.FallbackRate*100)
	s.metaf("Average score: %.3f", st.AvgScore)
	s.metaf("Latency: avg %.2fms, p95 %.2fms", st.AvgLatencyMs, st.P95LatencyMs)
	if st.CacheHits > 0 {
		s.metaf("Cache hits: %d", st.CacheHits)
	}
	for _, q := range st.UnansweredTop {
		s.metaf("  unanswered: %q x%d", q.Query, q.Count)
	}
}

func (s *Session) banner() {
	s.line(s.style.title, "FAQ Chatbot")
	s.line(s.style.title, "Method: "+s.matcher.Payload().Method.String())
	s.metaf("Type /help to see commands.")
}

func (s *Session) help() {
	s.line(s.style.warn, "Commands:")
	s.metaf("  /help   Show this help")
	s.metaf("  /topics Show available topic names")
	s.metaf("  /topic  Show or change active topic filter")
	s.metaf("  /list   Show available topics and question examples")
	s.metaf("  /stats  Show statistics for this session")
	s.metaf("  /clear  Clear terminal screen")
	s.metaf("  /quit   Exit chat")
}

func (s *Session) botf(format string, args ...any) {
	fmt.Fprintln(s.out, s.style.bot.Render("Bot » ")+fmt.Sprintf(format, args...))
}

func (s *Session) metaf(format string, args ...any) {
	s.line(s.style.meta, fmt.Sprintf(format, args...))
}

func (s *Session) warnf(format string, args ...any) {
	s.line(s.style.warn, fmt.Sprintf(format, args...))
}

func (s *Session) line(style lipgloss.Style, text string) {
	fmt.Fprintln(s.out, style.Render(text))
}
