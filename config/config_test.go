package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRequests != 50 {
		t.Errorf("MaxRequests = %d, want 50", cfg.MaxRequests)
	}
	if cfg.RequestDelay != 100*time.Millisecond {
		t.Errorf("RequestDelay = %v, want 100ms", cfg.RequestDelay)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if cfg.ClientVersion == "" {
		t.Error("ClientVersion is empty")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("YTC_MAX_REQUESTS", "10")
	t.Setenv("YTC_REQUEST_DELAY", "250ms")
	t.Setenv("YTC_CLIENT_VERSION", "2.20990101.00.00")
	t.Setenv("YTC_DATA_API_KEY", "secret")
	t.Setenv("YTC_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if cfg.MaxRequests != 10 {
		t.Errorf("MaxRequests = %d, want 10", cfg.MaxRequests)
	}
	if cfg.RequestDelay != 250*time.Millisecond {
		t.Errorf("RequestDelay = %v, want 250ms", cfg.RequestDelay)
	}
	if cfg.ClientVersion != "2.20990101.00.00" {
		t.Errorf("ClientVersion = %q", cfg.ClientVersion)
	}
	if cfg.DataAPIKey != "secret" {
		t.Errorf("DataAPIKey = %q", cfg.DataAPIKey)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromEnv_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("YTC_MAX_REQUESTS", "not-a-number")
	t.Setenv("YTC_REQUEST_DELAY", "soon")

	cfg := DefaultConfig()
	cfg.loadFromEnv()

	if cfg.MaxRequests != 50 {
		t.Errorf("MaxRequests = %d, want default kept", cfg.MaxRequests)
	}
	if cfg.RequestDelay != 100*time.Millisecond {
		t.Errorf("RequestDelay = %v, want default kept", cfg.RequestDelay)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ytcomments.json")
	content := `{"max_requests": 5, "innertube_rps": 1.5, "db_path": "/tmp/archive.db"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	cfg := DefaultConfig()
	if err := cfg.loadFromFile(); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.MaxRequests != 5 {
		t.Errorf("MaxRequests = %d, want 5", cfg.MaxRequests)
	}
	if cfg.InnertubeRPS != 1.5 {
		t.Errorf("InnertubeRPS = %v, want 1.5", cfg.InnertubeRPS)
	}
	if cfg.DBPath != "/tmp/archive.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty client version", func(c *Config) { c.ClientVersion = "" }, true},
		{"negative max requests", func(c *Config) { c.MaxRequests = -1 }, true},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"negative rps", func(c *Config) { c.InnertubeRPS = -1 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero max requests ok", func(c *Config) { c.MaxRequests = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
