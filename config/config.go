// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration for comment extraction.
type Config struct {
	// ClientVersion is the web client version reported to the pagination API
	ClientVersion string `json:"client_version"`
	// UserAgent is the browser user agent sent with pagination requests
	UserAgent string `json:"user_agent"`

	// MaxRequests caps comment pages fetched per extraction run (0 = default 50)
	MaxRequests int `json:"max_requests"`
	// RequestDelay is the pacing delay between paginated requests
	RequestDelay time.Duration `json:"request_delay"`
	// HTTPTimeout is the per-request HTTP timeout
	HTTPTimeout time.Duration `json:"http_timeout"`

	// InnertubeRPS limits requests per second against the pagination API
	InnertubeRPS float64 `json:"innertube_rps"`
	// WatchPageRPS limits requests per second for watch page fetches
	WatchPageRPS float64 `json:"watch_page_rps"`

	// DataAPIKey enables the official Data API comment source when set
	DataAPIKey string `json:"data_api_key"`
	// DBPath is the archive database file (empty disables archiving)
	DBPath string `json:"db_path"`

	// LogLevel is the logging verbosity ("debug", "info", "warn", "error")
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		ClientVersion: "2.20240304.00.00",
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		MaxRequests:   50,
		RequestDelay:  100 * time.Millisecond,
		HTTPTimeout:   30 * time.Second,
		InnertubeRPS:  2.5,
		WatchPageRPS:  1.0,
		LogLevel:      "info",
	}
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.loadFromEnv()

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from ytcomments.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"ytcomments.json",
		filepath.Join(os.Getenv("HOME"), ".config", "ytcomments", "ytcomments.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YTC_CLIENT_VERSION"); v != "" {
		c.ClientVersion = v
	}
	if v := os.Getenv("YTC_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("YTC_MAX_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRequests = n
		}
	}
	if v := os.Getenv("YTC_REQUEST_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestDelay = d
		}
	}
	if v := os.Getenv("YTC_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTPTimeout = d
		}
	}
	if v := os.Getenv("YTC_INNERTUBE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.InnertubeRPS = f
		}
	}
	if v := os.Getenv("YTC_WATCH_PAGE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.WatchPageRPS = f
		}
	}
	if v := os.Getenv("YTC_DATA_API_KEY"); v != "" {
		c.DataAPIKey = v
	}
	if v := os.Getenv("YTC_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("YTC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that configuration values are valid and consistent.
// It returns an error if any configuration value is invalid.
func (c *Config) Validate() error {
	if c.ClientVersion == "" {
		return fmt.Errorf("client_version must not be empty")
	}
	if c.MaxRequests < 0 {
		return fmt.Errorf("max_requests must be non-negative")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay must be non-negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.InnertubeRPS < 0 {
		return fmt.Errorf("innertube_rps must be non-negative")
	}
	if c.WatchPageRPS < 0 {
		return fmt.Errorf("watch_page_rps must be non-negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return nil
}
