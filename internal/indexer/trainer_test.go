package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/artifact"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/internal/faq"
	apperrors "github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/faq-retrieval/pkg/metrics"
)

func writeSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	intents := filepath.Join(dir, "intents.json")
	require.NoError(t, os.WriteFile(intents, []byte(`{"intents":[
		{"tag":"password","patterns":["How do I reset my password?","what is the"],"responses":["Use the reset link."]},
		{"tag":"greeting","patterns":["Hello","Good morning"],"responses":["Hi!"]}
	]}`), 0o644))
	csvPath := filepath.Join(dir, "web_faq.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("question,answer,topic,source_url\nWhere is the office?,Main street,company,https://example.com\n"), 0o644))
	return Sources{IntentsPath: intents, QASources: []string{csvPath, filepath.Join(dir, "topics")}}
}

func TestLoadCorpus(t *testing.T) {
	corpus, fromCSV, err := LoadCorpus(writeSources(t))
	require.NoError(t, err)

	assert.Equal(t, 4, corpus.Len())
	assert.Equal(t, 1, fromCSV)
	assert.Equal(t, "web_company", corpus.Examples[3].Tag)
}

func TestLoadCorpusEmpty(t *testing.T) {
	_, _, err := LoadCorpus(Sources{QASources: []string{filepath.Join(t.TempDir(), "missing")}})
	assert.True(t, errors.Is(err, apperrors.ErrEmptyCorpus))
}

func TestLoadCorpusMissingIntents(t *testing.T) {
	_, _, err := LoadCorpus(Sources{IntentsPath: filepath.Join(t.TempDir(), "intents.json")})
	assert.Error(t, err)
}

func TestTrainWritesArtifacts(t *testing.T) {
	store := artifact.NewStore(t.TempDir())
	m := metrics.New(prometheus.NewRegistry())
	trainer := NewTrainer(store, m)

	summaries, err := trainer.Train(context.Background(), faq.Methods(), writeSources(t), 0.25)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	for i, method := range faq.Methods() {
		assert.Equal(t, method, summaries[i].Method)
		assert.Equal(t, 4, summaries[i].Patterns)
		assert.Equal(t, 1, summaries[i].FromCSV)
		assert.FileExists(t, store.Path(method))

		p, err := store.Load(method)
		require.NoError(t, err)
		assert.Equal(t, 0.25, p.Threshold)
		assert.Len(t, p.Examples, 4)
		assert.Equal(t, 4.0, testutil.ToFloat64(m.IndexedPatterns.WithLabelValues(method.String())))
	}
}

func TestTrainCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trainer := NewTrainer(artifact.NewStore(t.TempDir()), nil)
	_, err := trainer.Train(ctx, []faq.Method{faq.MethodBoolean}, writeSources(t), 0.25)
	assert.ErrorIs(t, err, context.Canceled)
}
