// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// 認証設定
	SessionSecret          string // セッション Cookie 署名用の秘密鍵（プロセス起動中は不変）
	SessionTTLSeconds      int    // セッション Cookie の有効期間（秒）
	SessionLookupTimeoutMS int    // セッション検証時のユーザー検索タイムアウト（ミリ秒）
	PasswordHashAlgorithm  string // 保存用パスワードハッシュのダイジェスト方式

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ストレージ設定
	DatabaseDSN         string // PostgreSQL 接続文字列（空ならインメモリ）
	RedisURL            string // キャッシュ・イベントキュー用 Redis 接続URL（空なら無効）
	UserCacheTTLSeconds int    // ユーザーレコードのキャッシュ有効期間（秒）

	// 一覧設定
	PageSize int // 1ページあたりの件数

	// セキュリティイベント設定
	EventRetentionMinutes int // イベントの保持期間（分）
	EventMaxEntries       int // 保持するイベントの最大件数

	LogLevel string // ログレベル (debug, info, warn, error)
}

// Default は開発用の既定値を返します。
func Default() *Config {
	return &Config{
		SessionTTLSeconds:      86400,
		SessionLookupTimeoutMS: 2000,
		PasswordHashAlgorithm:  "sha1",

		Port:    "8080",
		GinMode: "debug",

		CORSAllowedOrigins: "http://localhost:5173",

		UserCacheTTLSeconds: 60,
		PageSize:            10,

		EventRetentionMinutes: 1440,
		EventMaxEntries:       1000,

		LogLevel: "info",
	}
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込み、CONFIG_FILE が指定されていれば
// YAML ファイルの値を既定値に重ねます。環境変数が最も優先されます。
func Load() (*Config, error) {
	loadEnvFile()

	config := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(config, path); err != nil {
			return nil, err
		}
	}

	// 認証設定
	config.SessionSecret = getEnv("SESSION_SECRET", config.SessionSecret)
	config.SessionTTLSeconds = getEnvAsInt("SESSION_TTL_SECONDS", config.SessionTTLSeconds)
	config.SessionLookupTimeoutMS = getEnvAsInt("SESSION_LOOKUP_TIMEOUT_MS", config.SessionLookupTimeoutMS)
	config.PasswordHashAlgorithm = getEnv("PASSWORD_HASH_ALGORITHM", config.PasswordHashAlgorithm)

	// サーバー設定
	config.Port = getEnv("PORT", config.Port)
	config.GinMode = getEnv("GIN_MODE", config.GinMode)
	config.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", config.CORSAllowedOrigins)

	// ストレージ設定
	config.DatabaseDSN = getEnv("DATABASE_DSN", config.DatabaseDSN)
	config.RedisURL = getEnv("REDIS_URL", config.RedisURL)
	config.UserCacheTTLSeconds = getEnvAsInt("USER_CACHE_TTL_SECONDS", config.UserCacheTTLSeconds)

	config.PageSize = getEnvAsInt("PAGE_SIZE", config.PageSize)
	config.EventRetentionMinutes = getEnvAsInt("EVENT_RETENTION_MINUTES", config.EventRetentionMinutes)
	config.EventMaxEntries = getEnvAsInt("EVENT_MAX_ENTRIES", config.EventMaxEntries)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.SessionTTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}
	if c.SessionLookupTimeoutMS <= 0 {
		return fmt.Errorf("SESSION_LOOKUP_TIMEOUT_MS must be positive")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.PasswordHashAlgorithm == "" {
		return fmt.Errorf("PASSWORD_HASH_ALGORITHM is required")
	}

	// ローカル開発では秘密鍵と DB は任意（起動時に一時鍵とインメモリストアを使う）
	if c.IsRelease() {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required in release mode")
		}
	}

	return nil
}

// IsRelease は本番モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// SessionTTL はセッションの有効期間を返します。
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// LookupTimeout はセッション検証時のユーザー検索タイムアウトを返します。
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.SessionLookupTimeoutMS) * time.Millisecond
}

// UserCacheTTL はユーザーキャッシュの有効期間を返します。
func (c *Config) UserCacheTTL() time.Duration {
	return time.Duration(c.UserCacheTTLSeconds) * time.Second
}

// EventRetention はセキュリティイベントの保持期間を返します。
func (c *Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionMinutes) * time.Minute
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
