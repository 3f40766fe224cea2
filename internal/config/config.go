// Package config loads the job configuration from environment variables,
// with an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Ledger backend selectors.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all job configuration.
type Config struct {
	// Ledger
	LedgerBackend string
	PostgresURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Exchange credential; never logged or written to output
	ExchangeToken   string
	ExchangeBaseURL string

	// File locations
	InputDir  string
	OutputDir string

	// Scoring
	RewardFactor int
	MaxPoints    int

	// Context identifiers echoed into verdict metadata
	DlpID        int64
	FileID       int64
	FileURL      string
	JobID        string
	OwnerAddress string

	// Optional ClickHouse proof archive; disabled when Addr is empty
	ClickHouseAddr     string
	ClickHouseUsername string
	ClickHousePassword string
	ClickHouseTimeout  int

	// Optional Kafka verdict publisher; disabled when Brokers is empty
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment, loading .env first when
// present.
func Load() (*Config, error) {
	// Ignore absence; .env is a local-run convenience
	_ = godotenv.Load()

	cfg := &Config{
		LedgerBackend: getEnv("LEDGER_BACKEND", BackendPostgres),
		PostgresURL:   getEnv("POSTGRES_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ExchangeToken:   getEnv("EXCHANGE_TOKEN", ""),
		ExchangeBaseURL: getEnv("EXCHANGE_BASE_URL", ""),

		InputDir:  getEnv("INPUT_DIR", "/input"),
		OutputDir: getEnv("OUTPUT_DIR", "/output"),

		RewardFactor: getEnvAsInt("REWARD_FACTOR", 630),
		MaxPoints:    getEnvAsInt("MAX_POINTS", 630),

		DlpID:        getEnvAsInt64("DLP_ID", 13),
		FileID:       getEnvAsInt64("FILE_ID", 0),
		FileURL:      getEnv("FILE_URL", ""),
		JobID:        getEnv("JOB_ID", ""),
		OwnerAddress: getEnv("OWNER_ADDRESS", ""),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", ""),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickHouseTimeout:  getEnvAsInt("CLICKHOUSE_TIMEOUT", 10),

		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil, ","),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "proof-verdicts"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerBackend {
	case BackendPostgres:
		if c.PostgresURL == "" {
			return fmt.Errorf("POSTGRES_URL is required for the postgres ledger backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis ledger backend")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.LedgerBackend)
	}

	if c.MaxPoints <= 0 {
		return fmt.Errorf("MAX_POINTS must be positive, got %d", c.MaxPoints)
	}
	return nil
}

// getEnv reads a string variable with a default.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

// getEnvAsInt reads an integer variable with a default.
func getEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvAsInt64 reads a 64-bit integer variable with a default.
func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvAsSlice reads a separated list variable with a default.
func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultVal
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
