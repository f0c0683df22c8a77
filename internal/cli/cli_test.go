package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
)

const intentsJSON = `{"intents": [
  {"tag": "account", "patterns": ["reset my password", "forgot my password"], "responses": ["Open settings and choose reset."]},
  {"tag": "greeting", "patterns": ["hello friend", "good morning friend"], "responses": ["Hi there!"]}
]}`

const faqCSV = "question,answer,topic,source_url\n" +
	"best running shoes,Try a neutral trainer.,sports,https://example.org/shoes\n" +
	"football match tonight,Kick-off is at 8.,sports,\n"

type env struct {
	dir    string
	config string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	intents := filepath.Join(dir, "intents.json")
	csvPath := filepath.Join(dir, "faq.csv")
	require.NoError(t, os.WriteFile(intents, []byte(intentsJSON), 0o644))
	require.NoError(t, os.WriteFile(csvPath, []byte(faqCSV), 0o644))

	cfg := fmt.Sprintf(`artifacts:
  dir: %s
training:
  threshold: 0.1
  intentsPath: %s
  qaSources: [%s]
logging:
  level: error
`, filepath.Join(dir, "models"), intents, csvPath)
	path := filepath.Join(dir, "faqbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return env{dir: dir, config: path}
}

func (e env) run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.config}, args...)
	code := Execute(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (e env) train(t *testing.T) {
	t.Helper()
	code, out, errOut := e.run(t, "", "train")
	require.Equal(t, apperrors.ExitOK, code, errOut)
	require.Contains(t, out, "Artifacts saved to:")
}

func TestTrainAllMethods(t *testing.T) {
	e := newEnv(t)
	code, out, errOut := e.run(t, "", "train")
	require.Equal(t, apperrors.ExitOK, code, errOut)

	for _, m := range []string{"bm25", "boolean", "bow", "tfidf"} {
		assert.Contains(t, out, "Trained "+m)
		assert.FileExists(t, filepath.Join(e.dir, "models", "faq_index_"+m+".fqx"))
	}
	assert.Contains(t, out, "6 patterns (2 from CSV)")
}

func TestTrainSingleMethodWithFlags(t *testing.T) {
	e := newEnv(t)
	code, out, errOut := e.run(t, "", "train", "--method", "bm25", "--intents", "", "--threshold", "0.5")
	require.Equal(t, apperrors.ExitOK, code, errOut)
	assert.Contains(t, out, "2 patterns (2 from CSV)")
	assert.NoFileExists(t, filepath.Join(e.dir, "models", "faq_index_tfidf.fqx"))
}

func TestTrainEmptyCorpus(t *testing.T) {
	e := newEnv(t)
	code, _, errOut := e.run(t, "", "train", "--intents", "", "--qa-sources", filepath.Join(e.dir, "missing.csv"))
	assert.Equal(t, apperrors.ExitData, code)
	assert.Contains(t, errOut, "no training patterns found")
}

func TestTrainRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	code, _, _ := e.run(t, "", "train", "--method", "lsa")
	assert.Equal(t, apperrors.ExitUsage, code)

	code, _, _ = e.run(t, "", "train", "--threshold", "-1")
	assert.Equal(t, apperrors.ExitUsage, code)

	code, _, _ = e.run(t, "", "train", "--no-such-flag")
	assert.Equal(t, apperrors.ExitUsage, code)
}

func TestAsk(t *testing.T) {
	e := newEnv(t)
	e.train(t)

	code, out, errOut := e.run(t, "", "ask", "--method", "boolean", "How", "do", "I", "reset", "my", "password?")
	require.Equal(t, apperrors.ExitOK, code, errOut)
	assert.Contains(t, out, "Open settings and choose reset.")
	assert.Contains(t, out, "score: 0.600")

	code, out, _ = e.run(t, "", "ask", "--method", "tfidf", "best running shoes")
	require.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, out, "source: https://example.org/shoes")
}

func TestAskJSONAndTopic(t *testing.T) {
	e := newEnv(t)
	e.train(t)

	code, out, errOut := e.run(t, "", "ask", "--method", "boolean", "--topic", "sports", "--json", "reset my password")
	require.Equal(t, apperrors.ExitOK, code, errOut)

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Fallback)
	assert.Equal(t, "boolean", res.Method)

	code, _, _ = e.run(t, "", "ask", "--topic", "cooking", "hello")
	assert.Equal(t, apperrors.ExitUsage, code)

	code, _, _ = e.run(t, "", "ask")
	assert.Equal(t, apperrors.ExitUsage, code)
}

func TestAskWithoutIndex(t *testing.T) {
	e := newEnv(t)
	code, _, errOut := e.run(t, "", "ask", "--method", "bm25", "hello")
	assert.Equal(t, apperrors.ExitNoIndex, code)
	assert.Contains(t, errOut, "faqbot train --method bm25")
}

func TestChatSession(t *testing.T) {
	e := newEnv(t)
	e.train(t)

	code, out, errOut := e.run(t, "hello friend\n/topics\n/stats\n/quit\n", "chat", "--method", "boolean", "--seed", "7")
	require.Equal(t, apperrors.ExitOK, code, errOut)
	assert.Contains(t, out, "Method: boolean")
	assert.Contains(t, out, "Hi there!")
	assert.Contains(t, out, "Available topics: all | account | greeting | sports")
	assert.Contains(t, out, "Queries: 1 (answered 1, fallbacks 0, empty 0)")
	assert.Contains(t, out, "Goodbye!")
}

func TestTopics(t *testing.T) {
	e := newEnv(t)
	e.train(t)

	code, out, _ := e.run(t, "", "topics", "--method", "bow", "--samples", "1")
	require.Equal(t, apperrors.ExitOK, code)
	assert.Contains(t, out, "- Account [account] (2 questions)")
	assert.Contains(t, out, "- Sports [sports] (2 questions)")
	assert.Equal(t, 3, strings.Count(out, "•"))
}

func TestEvaluate(t *testing.T) {
	e := newEnv(t)
	e.train(t)

	csvPath := filepath.Join(e.dir, "results", "eval.csv")
	code, out, errOut := e.run(t, "", "evaluate", "--out", csvPath, "--workers", "2")
	require.Equal(t, apperrors.ExitOK, code, errOut)
	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "Saved CSV: "+csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "method,total,correct,accuracy,fallback_rate", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "bm25,6,"))
}

func TestEvaluateMissingIndex(t *testing.T) {
	e := newEnv(t)
	code, _, _ := e.run(t, "", "evaluate", "--method", "tfidf")
	assert.Equal(t, apperrors.ExitNoIndex, code)
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	code, out, _ := e.run(t, "", "health")
	assert.Equal(t, apperrors.ExitInternal, code)
	assert.Contains(t, out, "no trained indexes")

	e.train(t)
	code, out, errOut := e.run(t, "", "health", "--json")
	require.Equal(t, apperrors.ExitOK, code, errOut)

	var report struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "up", report.Status)
	assert.Equal(t, "disabled", report.Components["redis"].Status)
	assert.Equal(t, "disabled", report.Components["kafka"].Status)
}

func TestBackendCommandsNeedBackends(t *testing.T) {
	e := newEnv(t)

	code, _, errOut := e.run(t, "", "stats")
	assert.Equal(t, apperrors.ExitInternal, code)
	assert.Contains(t, errOut, "kafka.enabled")

	code, _, errOut = e.run(t, "", "history")
	assert.Equal(t, apperrors.ExitInternal, code)
	assert.Contains(t, errOut, "postgres.enabled")
}

func TestBadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"--config", "/does/not/exist.yaml", "topics"},
		strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, apperrors.ExitUsage, code)
}

func TestParseMethods(t *testing.T) {
	got, err := parseMethods("ALL")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = parseMethods("bm25, tfidf,bm25")
	require.NoError(t, err)
	assert.Equal(t, "bm25", got[0].String())
	assert.Len(t, got, 2)

	_, err = parseMethods("bm25,nope")
	assert.Error(t, err)
}
