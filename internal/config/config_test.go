package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var envKeys = []string{
	"CONFIG_FILE", "SESSION_SECRET", "SESSION_TTL_SECONDS", "SESSION_LOOKUP_TIMEOUT_MS",
	"PASSWORD_HASH_ALGORITHM", "PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS", "DATABASE_DSN",
	"REDIS_URL", "USER_CACHE_TTL_SECONDS", "PAGE_SIZE", "EVENT_RETENTION_MINUTES",
	"EVENT_MAX_ENTRIES", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "blog.yaml")
	yaml := []byte("session_secret: from-file\nport: \"9000\"\npage_size: 25\nredis_url: redis://cache:6379/0\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("SESSION_TTL_SECONDS", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := Default()
	want.SessionSecret = "from-file"
	want.Port = "9100"
	want.PageSize = 25
	want.RedisURL = "redis://cache:6379/0"
	want.SessionTTLSeconds = 60
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("unexpected config (-want +got):\n%s", diff)
	}
	if cfg.SessionTTL() != time.Minute {
		t.Fatalf("SessionTTL = %v, want 1m", cfg.SessionTTL())
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "release without secret", mutate: func(c *Config) {
			c.GinMode = "release"
			c.DatabaseDSN = "postgres://localhost/blog"
		}, wantErr: true},
		{name: "release without database", mutate: func(c *Config) {
			c.GinMode = "release"
			c.SessionSecret = "s3cret"
		}, wantErr: true},
		{name: "release complete", mutate: func(c *Config) {
			c.GinMode = "release"
			c.SessionSecret = "s3cret"
			c.DatabaseDSN = "postgres://localhost/blog"
		}},
		{name: "zero ttl", mutate: func(c *Config) { c.SessionTTLSeconds = 0 }, wantErr: true},
		{name: "negative page size", mutate: func(c *Config) { c.PageSize = -1 }, wantErr: true},
		{name: "zero lookup timeout", mutate: func(c *Config) { c.SessionLookupTimeoutMS = 0 }, wantErr: true},
		{name: "empty algorithm", mutate: func(c *Config) { c.PasswordHashAlgorithm = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PAGE_SIZE", "ten")
	if got := getEnvAsInt("PAGE_SIZE", 10); got != 10 {
		t.Fatalf("getEnvAsInt = %d, want 10", got)
	}
}
