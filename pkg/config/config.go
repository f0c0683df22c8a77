// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// training, chat and evaluation commands and for the optional backends
// (Redis, PostgreSQL, Kafka, Prometheus).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Training   TrainingConfig   `yaml:"training"`
	Chat       ChatConfig       `yaml:"chat"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ArtifactsConfig locates trained index artifacts.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// TrainingConfig holds the corpus sources and the default match threshold
// stored into every trained index.
type TrainingConfig struct {
	Threshold   float64  `yaml:"threshold"`
	IntentsPath string   `yaml:"intentsPath"`
	QASources   []string `yaml:"qaSources"`
}

// ChatConfig holds chat defaults.
type ChatConfig struct {
	Method string `yaml:"method"`
	Topic  string `yaml:"topic"`
	// Seed pins response selection when non-zero.
	Seed uint64 `yaml:"seed"`
}

// EvaluationConfig controls the leave-one-out runner.
type EvaluationConfig struct {
	Workers int    `yaml:"workers"`
	OutPath string `yaml:"outPath"`
}

// RedisConfig holds Redis connection and match-cache parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// PostgresConfig holds PostgreSQL connection parameters for evaluation history.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds broker settings for chat analytics events.
type KafkaConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Brokers       []string      `yaml:"brokers"`
	Topic         string        `yaml:"topic"`
	ConsumerGroup string        `yaml:"consumerGroup"`
	BufferSize    int           `yaml:"bufferSize"`
	BatchSize     int           `yaml:"batchSize"`
	FlushInterval time.Duration `yaml:"flushInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// methods lists the retrieval methods accepted as chat.method.
var methods = map[string]struct{}{"tfidf": {}, "bow": {}, "bm25": {}, "boolean": {}}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	if _, ok := methods[strings.ToLower(strings.TrimSpace(c.Chat.Method))]; !ok {
		return fmt.Errorf("chat.method must be one of tfidf, bow, bm25, boolean, got %q", c.Chat.Method)
	}
	if c.Training.Threshold < 0 {
		return fmt.Errorf("training.threshold must be >= 0, got %v", c.Training.Threshold)
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}
	if c.Evaluation.Workers < 0 {
		return fmt.Errorf("evaluation.workers must be >= 0, got %d", c.Evaluation.Workers)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Dir: "models",
		},
		Training: TrainingConfig{
			Threshold:   0.25,
			IntentsPath: "data/intents.json",
			QASources:   []string{"data/web_faq.csv", "data/topics"},
		},
		Chat: ChatConfig{
			Method: "tfidf",
			Topic:  "all",
		},
		Evaluation: EvaluationConfig{
			Workers: 4,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 10 * time.Minute,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "faqbot",
			User:            "faqbot",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			Topic:         "faq-chat-events",
			ConsumerGroup: "faqbot-stats",
			BufferSize:    1000,
			BatchSize:     50,
			FlushInterval: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
	}
}

// applyEnvOverrides reads FAQ_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FAQ_ARTIFACTS_DIR"); v != "" {
		cfg.Artifacts.Dir = v
	}
	if v := os.Getenv("FAQ_TRAINING_THRESHOLD"); v != "" {
		if threshold, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Training.Threshold = threshold
		}
	}
	if v := os.Getenv("FAQ_TRAINING_INTENTS_PATH"); v != "" {
		cfg.Training.IntentsPath = v
	}
	if v := os.Getenv("FAQ_TRAINING_QA_SOURCES"); v != "" {
		cfg.Training.QASources = strings.Split(v, ",")
	}
	if v := os.Getenv("FAQ_CHAT_METHOD"); v != "" {
		cfg.Chat.Method = v
	}
	if v := os.Getenv("FAQ_CHAT_TOPIC"); v != "" {
		cfg.Chat.Topic = v
	}
	if v := os.Getenv("FAQ_CHAT_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Chat.Seed = seed
		}
	}
	if v := os.Getenv("FAQ_EVALUATION_OUT_PATH"); v != "" {
		cfg.Evaluation.OutPath = v
	}
	if v := os.Getenv("FAQ_EVALUATION_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.Workers = workers
		}
	}
	if v := os.Getenv("FAQ_REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FAQ_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FAQ_POSTGRES_ENABLED"); v != "" {
		cfg.Postgres.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("FAQ_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("FAQ_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("FAQ_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("FAQ_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("FAQ_KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FAQ_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("FAQ_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FAQ_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FAQ_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
