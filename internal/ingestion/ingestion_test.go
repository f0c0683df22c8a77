package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadIntents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.json")
	writeFile(t, path, `{"intents":[{"tag":"greeting","patterns":["Hi","Hello there"],"responses":["Hello!"]}]}`)

	file, err := LoadIntents(path)
	require.NoError(t, err)
	require.Len(t, file.Intents, 1)
	assert.Equal(t, "greeting", file.Intents[0].Tag)
	assert.Equal(t, []string{"Hi", "Hello there"}, file.Intents[0].Patterns)
}

func TestLoadIntentsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadIntents(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"intents":`)
	_, err = LoadIntents(bad)
	assert.Error(t, err)
}

func TestReadQARows(t *testing.T) {
	data := "topic,question,answer,source_url,extra\n" +
		"sports,Who won?,Team A,https://example.com/a,x\n" +
		",What is Go?,A language,,\n" +
		"sports,,no question,,\n" +
		"sports,no answer,  ,,\n" +
		"short,Only question\n"

	rows, err := ReadQARows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, QARow{Question: "Who won?", Answer: "Team A", Topic: "sports", SourceURL: "https://example.com/a"}, rows[0])
	assert.Equal(t, "general", rows[1].Topic)
	assert.Empty(t, rows[1].SourceURL)
}

func TestReadQARowsStripsByteOrderMark(t *testing.T) {
	data := "\ufeffquestion,answer,topic\nHow late are you open?,Until 9pm,hours\n"

	rows, err := ReadQARows(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "How late are you open?", rows[0].Question)
	assert.Equal(t, "hours", rows[0].Topic)
}

func TestReadQARowsEmptyInput(t *testing.T) {
	rows, err := ReadQARows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadQARowsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "question,answer,topic\nSecond?,2,b\n")
	writeFile(t, filepath.Join(dir, "a.csv"), "question,answer,topic\nFirst?,1,a\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "question,answer\nIgnored?,x\n")

	rows, err := LoadQARows(dir)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "First?", rows[0].Question)
	assert.Equal(t, "Second?", rows[1].Question)
}

func TestLoadQARowsMissingPath(t *testing.T) {
	rows, err := LoadQARows(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadQASources(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "faq.csv")
	writeFile(t, file, "question,answer\nOne?,1\n")
	sub := filepath.Join(dir, "topics")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, filepath.Join(sub, "x.csv"), "question,answer\nTwo?,2\n")

	rows, err := LoadQASources([]string{file, sub, filepath.Join(dir, "absent")})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestPrepareIntents(t *testing.T) {
	file := &IntentsFile{Intents: []Intent{
		{Tag: "password", Patterns: []string{"How do I reset my password?", "what is the"}, Responses: []string{"Use the reset link."}},
		{Tag: "", Patterns: []string{"orphan pattern"}},
		{Tag: "greeting", Patterns: []string{"Hello"}},
	}}

	corpus := PrepareIntents(file)
	require.Equal(t, 2, corpus.Len())
	assert.Equal(t, []string{"do i reset my password", "hello"}, corpus.Documents)
	assert.Equal(t, "password", corpus.Examples[0].Tag)
	assert.Equal(t, "How do I reset my password?", corpus.Examples[0].Pattern)
	assert.Equal(t, []string{"Use the reset link."}, corpus.Examples[0].Responses)
	assert.Empty(t, corpus.Examples[1].Responses)
}

func TestPrepareQARows(t *testing.T) {
	corpus := PrepareQARows([]QARow{
		{Question: "Where is the office?", Answer: "Main street", Topic: "company", SourceURL: "https://example.com"},
		{Question: "What is the", Answer: "dropped", Topic: "company"},
	})

	require.Equal(t, 1, corpus.Len())
	ex := corpus.Examples[0]
	assert.Equal(t, "web_company", ex.Tag)
	assert.Equal(t, []string{"Main street"}, ex.Responses)
	assert.Equal(t, "https://example.com", ex.SourceURL)
	assert.Equal(t, "where office", corpus.Documents[0])
}

func TestCorpusAppendKeepsAlignment(t *testing.T) {
	a := PrepareQARows([]QARow{{Question: "alpha beta", Answer: "1", Topic: "x"}})
	b := PrepareQARows([]QARow{{Question: "gamma", Answer: "2", Topic: "y"}})
	a.Append(b)

	require.Equal(t, 2, a.Len())
	assert.Len(t, a.Examples, 2)
	assert.Equal(t, "gamma", a.Documents[1])
	assert.Equal(t, "web_y", a.Examples[1].Tag)
}

func TestValidateQARow(t *testing.T) {
	err := ValidateQARow(&QARow{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "question")
	assert.Contains(t, verr.Fields, "answer")
	assert.Equal(t, "answer:answer is required; question:question is required", verr.Error())

	assert.NoError(t, ValidateQARow(&QARow{Question: "q", Answer: "a"}))
	assert.Error(t, ValidateQARow(&QARow{Question: strings.Repeat("q", maxQuestionLength+1), Answer: "a"}))
}
