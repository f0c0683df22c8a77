package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartBuildsTree(t *testing.T) {
	ctx, root := Start(context.Background(), "train")
	assert.NotEmpty(t, root.TraceID)
	assert.Same(t, root, FromContext(ctx))

	_, first := Start(ctx, "build bm25")
	_, second := Start(ctx, "build tfidf")
	first.End()
	second.End()
	root.End()

	children := root.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "build bm25", children[0].Name)
	assert.Equal(t, root.TraceID, children[1].TraceID)
}

func TestSeparateRootsGetSeparateTraces(t *testing.T) {
	_, a := Start(context.Background(), "a")
	_, b := Start(context.Background(), "b")
	assert.NotEqual(t, a.TraceID, b.TraceID)
	assert.Nil(t, FromContext(context.Background()))
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, root := Start(context.Background(), "evaluate")
	_, child := Start(ctx, "method")
	child.SetAttr("method", "bm25")
	child.End()
	root.End()
	root.Log(logger)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=evaluate")
	assert.Contains(t, lines[0], "depth=0")
	assert.Contains(t, lines[1], "method=bm25")
	assert.Contains(t, lines[1], "depth=1")
}
