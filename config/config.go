package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full service configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Feed      FeedConfig      `koanf:"feed"`
	Digest    DigestConfig    `koanf:"digest"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	LLM       LLMConfig       `koanf:"llm"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port         string        `koanf:"port"`
	Mode         string        `koanf:"mode"` // gin mode: debug, release, test
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	Path         string        `koanf:"path"`
	SeedFile     string        `koanf:"seed_file"`
	Seed         bool          `koanf:"seed"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
	LogQueries   bool          `koanf:"log_queries"`
}

// FeedConfig holds feed tuning that may differ per deployment
type FeedConfig struct {
	RevisitConcurrency int `koanf:"revisit_concurrency"`
}

// DigestConfig configures Today's Connection
type DigestConfig struct {
	NarrativeEnabled bool `koanf:"narrative_enabled"`
}

// BreakerConfig configures the circuit breakers around content sources
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// RateLimitConfig configures per-client limits on public endpoints
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// LLMConfig configures the optional digest narrator
type LLMConfig struct {
	Provider       string `koanf:"provider"` // "openai" or "groq"
	OpenAIKey      string `koanf:"openai_key"`
	GroqKey        string `koanf:"groq_key"`
	BaseURL        string `koanf:"base_url"`
	NarrativeModel string `koanf:"narrative_model"`
}

// APIKey returns the key for the configured provider
func (c LLMConfig) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIKey
	}
	return c.GroqKey
}

// JobsConfig configures scheduled maintenance
type JobsConfig struct {
	Enabled         bool   `koanf:"enabled"`
	ExpirySweepSpec string `koanf:"expiry_sweep_spec"`
	CachePurgeSpec  string `koanf:"cache_purge_spec"`
}

// LoggingConfig configures the zerolog logger
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port == "" {
		problems = append(problems, "server.port must be set")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Database.Path == "" {
		problems = append(problems, "database.path must be set")
	}
	if c.Database.QueryTimeout <= 0 {
		problems = append(problems, "database.query_timeout must be positive")
	}
	if c.Feed.RevisitConcurrency < 1 {
		problems = append(problems, "feed.revisit_concurrency must be at least 1")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		problems = append(problems, "breaker.failure_ratio must be in (0,1]")
	}
	if c.Breaker.MaxRequests == 0 {
		problems = append(problems, "breaker.max_requests must be at least 1")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1) {
		problems = append(problems, "rate_limit requires positive requests_per_second and burst")
	}
	if c.Digest.NarrativeEnabled {
		switch c.LLM.Provider {
		case "openai", "groq":
			if c.LLM.APIKey() == "" {
				problems = append(problems, fmt.Sprintf("llm key is required when provider is %q", c.LLM.Provider))
			}
		default:
			problems = append(problems, fmt.Sprintf("invalid llm.provider %q", c.LLM.Provider))
		}
	}
	if c.Jobs.Enabled && c.Jobs.ExpirySweepSpec == "" {
		problems = append(problems, "jobs.expiry_sweep_spec must be set when jobs are enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
