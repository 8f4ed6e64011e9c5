// Package config handles configuration loading for the gateway:
// an optional YAML file merged with GENESIS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the gateway.
type Config struct {
	// HTTP server port for the gateway API
	HTTPPort int

	// Path to the SQLite database file
	DatabasePath string

	// Optional YAML file with extra pipeline definitions
	PipelinesFile string

	// OTLP collector address for tracing
	OTELEndpoint string

	// Capability name -> worker base URL
	Workers map[string]string

	// Per-call timeout for worker invocations
	WorkerTimeout time.Duration

	// Rate limit for job creation, requests per second per client.
	// Zero disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int

	// Pagination bounds for GET /jobs
	DefaultPageSize int
	MaxPageSize     int
}

// Load reads configuration from the given file (or genesis.yaml in
// the working directory when path is empty) and the environment.
// Environment variables use the GENESIS_ prefix, e.g. GENESIS_HTTP_PORT.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http_port", 8000)
	v.SetDefault("database_path", "data/jobs.db")
	v.SetDefault("pipelines_file", "")
	v.SetDefault("otel_endpoint", "localhost:4317")
	v.SetDefault("worker_timeout", "300s")
	v.SetDefault("rate_limit_rps", 0)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("default_page_size", 50)
	v.SetDefault("max_page_size", 200)

	// Default worker endpoints match the compose service names.
	v.SetDefault("workers", map[string]string{
		"llm":      "http://llm-worker:8001",
		"image":    "http://image-worker:8002",
		"stt":      "http://stt-worker:8003",
		"tts":      "http://tts-worker:8004",
		"cyclegan": "http://cyclegan-worker:8005",
	})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("genesis")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GENESIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional unless explicitly requested.
		if _, notFound := err.(viper.ConfigFileNotFoundError); path != "" || !notFound {
			if path != "" {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		HTTPPort:        v.GetInt("http_port"),
		DatabasePath:    v.GetString("database_path"),
		PipelinesFile:   v.GetString("pipelines_file"),
		OTELEndpoint:    v.GetString("otel_endpoint"),
		Workers:         v.GetStringMapString("workers"),
		WorkerTimeout:   v.GetDuration("worker_timeout"),
		RateLimitRPS:    v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:  v.GetInt("rate_limit_burst"),
		DefaultPageSize: v.GetInt("default_page_size"),
		MaxPageSize:     v.GetInt("max_page_size"),
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http_port: %d", cfg.HTTPPort)
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database_path is required")
	}
	if cfg.WorkerTimeout <= 0 {
		return nil, fmt.Errorf("invalid worker_timeout: %s", cfg.WorkerTimeout)
	}
	if cfg.DefaultPageSize <= 0 || cfg.MaxPageSize < cfg.DefaultPageSize {
		return nil, fmt.Errorf("invalid page sizes: default %d, max %d", cfg.DefaultPageSize, cfg.MaxPageSize)
	}

	return cfg, nil
}
