package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "models", cfg.Artifacts.Dir)
	assert.Equal(t, 0.25, cfg.Training.Threshold)
	assert.Equal(t, "tfidf", cfg.Chat.Method)
	assert.Equal(t, "all", cfg.Chat.Topic)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqbot.yaml")
	data := `
artifacts:
  dir: /var/lib/faqbot
training:
  threshold: 0.4
  qaSources: [faq.csv]
chat:
  method: bm25
redis:
  enabled: true
  cacheTTL: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/faqbot", cfg.Artifacts.Dir)
	assert.Equal(t, 0.4, cfg.Training.Threshold)
	assert.Equal(t, []string{"faq.csv"}, cfg.Training.QASources)
	assert.Equal(t, "bm25", cfg.Chat.Method)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	// untouched sections keep defaults
	assert.Equal(t, "data/intents.json", cfg.Training.IntentsPath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FAQ_ARTIFACTS_DIR", "/tmp/idx")
	t.Setenv("FAQ_TRAINING_THRESHOLD", "0.1")
	t.Setenv("FAQ_KAFKA_ENABLED", "true")
	t.Setenv("FAQ_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("FAQ_POSTGRES_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/idx", cfg.Artifacts.Dir)
	assert.Equal(t, 0.1, cfg.Training.Threshold)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5432, cfg.Postgres.Port)
}

func TestLoadRejectsNegativeThreshold(t *testing.T) {
	t.Setenv("FAQ_TRAINING_THRESHOLD", "-1")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=require", p.DSN())
}

func TestLoadRejectsUnknownMethod(t *testing.T) {
	t.Setenv("FAQ_CHAT_METHOD", "lsa")

	_, err := Load("")
	assert.Error(t, err)
}

func TestKafkaDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "faq-chat-events", cfg.Kafka.Topic)
	assert.Equal(t, "faqbot-stats", cfg.Kafka.ConsumerGroup)
	assert.Equal(t, 2*time.Second, cfg.Kafka.FlushInterval)
}
