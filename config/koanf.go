package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes the environment variables read by Load
const EnvPrefix = "FEED_"

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// defaultConfig returns the built-in defaults, the lowest configuration layer
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Mode:         "release",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "spark_feed.db",
			SeedFile:     "seed_data.json",
			Seed:         false,
			QueryTimeout: 3 * time.Second,
			LogQueries:   false,
		},
		Feed: FeedConfig{
			RevisitConcurrency: 5,
		},
		Digest: DigestConfig{
			NarrativeEnabled: false,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		LLM: LLMConfig{
			Provider:       "groq",
			BaseURL:        "https://api.groq.com/openai/v1",
			NarrativeModel: "llama-3.1-8b-instant",
		},
		Jobs: JobsConfig{
			Enabled:         true,
			ExpirySweepSpec: "@every 5m",
			CachePurgeSpec:  "@daily",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from three layers, later ones winning:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH, or config.yaml in the working directory)
//  3. FEED_* environment variables, e.g. FEED_SERVER_PORT -> server.port
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envKeyToPath maps FEED_RATE_LIMIT_BURST to rate_limit.burst. The first
// segment after the prefix that names a known section becomes the section;
// the rest is the field name.
func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range configSections {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// configSections lists the koanf section names recognised in env keys
var configSections = []string{
	"rate_limit",
	"database",
	"logging",
	"breaker",
	"digest",
	"server",
	"feed",
	"jobs",
	"llm",
}

// findConfigFile returns the first config file found, or "" when there is none
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
