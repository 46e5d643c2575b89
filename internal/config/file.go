package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig は CONFIG_FILE で指定される YAML の構造です。
// 省略された項目は既定値のまま残ります。
type fileConfig struct {
	SessionSecret          string `yaml:"session_secret"`
	SessionTTLSeconds      int    `yaml:"session_ttl_seconds"`
	SessionLookupTimeoutMS int    `yaml:"session_lookup_timeout_ms"`
	PasswordHashAlgorithm  string `yaml:"password_hash_algorithm"`
	Port                   string `yaml:"port"`
	GinMode                string `yaml:"gin_mode"`
	CORSAllowedOrigins     string `yaml:"cors_allowed_origins"`
	DatabaseDSN            string `yaml:"database_dsn"`
	RedisURL               string `yaml:"redis_url"`
	UserCacheTTLSeconds    int    `yaml:"user_cache_ttl_seconds"`
	PageSize               int    `yaml:"page_size"`
	EventRetentionMinutes  int    `yaml:"event_retention_minutes"`
	EventMaxEntries        int    `yaml:"event_max_entries"`
	LogLevel               string `yaml:"log_level"`
}

func applyFile(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.SessionSecret, fc.SessionSecret)
	setInt(&c.SessionTTLSeconds, fc.SessionTTLSeconds)
	setInt(&c.SessionLookupTimeoutMS, fc.SessionLookupTimeoutMS)
	setString(&c.PasswordHashAlgorithm, fc.PasswordHashAlgorithm)
	setString(&c.Port, fc.Port)
	setString(&c.GinMode, fc.GinMode)
	setString(&c.CORSAllowedOrigins, fc.CORSAllowedOrigins)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.RedisURL, fc.RedisURL)
	setInt(&c.UserCacheTTLSeconds, fc.UserCacheTTLSeconds)
	setInt(&c.PageSize, fc.PageSize)
	setInt(&c.EventRetentionMinutes, fc.EventRetentionMinutes)
	setInt(&c.EventMaxEntries, fc.EventMaxEntries)
	setString(&c.LogLevel, fc.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
