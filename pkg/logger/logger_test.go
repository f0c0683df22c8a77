package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetupWriterJSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "debug", "json")

	WithComponent("matcher").Debug("scored", "rows", 3)

	out := buf.String()
	assert.Contains(t, out, `"component":"matcher"`)
	assert.Contains(t, out, `"rows":3`)
}

func TestSetupWriterLevelFilters(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "text")

	slog.Info("hidden")
	slog.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestFromContextAddsSession(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, "info", "text")

	ctx := WithSessionID(context.Background(), "s-42")
	FromContext(ctx).Info("answer")

	assert.Contains(t, buf.String(), "session_id=s-42")
}

func TestSessionID(t *testing.T) {
	assert.Empty(t, SessionID(context.Background()))
	assert.Equal(t, "s-1", SessionID(WithSessionID(context.Background(), "s-1")))
}
