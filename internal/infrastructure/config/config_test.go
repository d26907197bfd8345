package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
api:
  host: "127.0.0.1"
  port: 9000
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
    access_token_ttl: 45
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 9000)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Security.JWT.AccessTokenTTL != 45 {
		t.Errorf("AccessTokenTTL = %d, want %d", cfg.Security.JWT.AccessTokenTTL, 45)
	}
	if cfg.TokenTTL() != 45*time.Minute {
		t.Errorf("TokenTTL() = %v, want %v", cfg.TokenTTL(), 45*time.Minute)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8000 {
		t.Errorf("default API.Port = %d, want 8000", cfg.API.Port)
	}
	if cfg.Security.JWT.Algorithm != "HS256" {
		t.Errorf("default Algorithm = %q, want HS256", cfg.Security.JWT.Algorithm)
	}
	if cfg.Security.JWT.AccessTokenTTL != 30 {
		t.Errorf("default AccessTokenTTL = %d, want 30", cfg.Security.JWT.AccessTokenTTL)
	}
	if !cfg.UsesDefaultSecret() {
		t.Error("default config should report UsesDefaultSecret() = true")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VNCMAN_JWT_SECRET", "env-secret-value")
	t.Setenv("VNCMAN_API_PORT", "8443")
	t.Setenv("VNCMAN_ACCESS_TOKEN_TTL", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Security.JWT.Secret != "env-secret-value" {
		t.Errorf("Secret = %q, want env override", cfg.Security.JWT.Secret)
	}
	if cfg.API.Port != 8443 {
		t.Errorf("API.Port = %d, want 8443", cfg.API.Port)
	}
	if cfg.Security.JWT.AccessTokenTTL != 5 {
		t.Errorf("AccessTokenTTL = %d, want 5", cfg.Security.JWT.AccessTokenTTL)
	}
	if cfg.UsesDefaultSecret() {
		t.Error("UsesDefaultSecret() should be false after override")
	}
}

func TestAPIConfig_TimeoutHelpers(t *testing.T) {
	api := APIConfig{Timeouts: APITimeoutConfig{Read: 15, Write: 30, Idle: 90}}

	if got := api.GetReadTimeout(); got != 15*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 15s", got)
	}
	if got := api.GetWriteTimeout(); got != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", got)
	}
	if got := api.GetIdleTimeout(); got != 90*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 90s", got)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "empty secret",
			mutate: func(c *Config) { c.Security.JWT.Secret = "" },
			want:   "security.jwt.secret",
		},
		{
			name:   "bad algorithm",
			mutate: func(c *Config) { c.Security.JWT.Algorithm = "RS256" },
			want:   "security.jwt.algorithm",
		},
		{
			name:   "zero ttl",
			mutate: func(c *Config) { c.Security.JWT.AccessTokenTTL = 0 },
			want:   "access_token_ttl",
		},
		{
			name:   "bad port",
			mutate: func(c *Config) { c.API.Port = 0 },
			want:   "api.port",
		},
		{
			name:   "empty database path",
			mutate: func(c *Config) { c.Database.Path = "" },
			want:   "database.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}
