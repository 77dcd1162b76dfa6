package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionMaxAge int // 秒

	// 猶予期間（発言の編集・削除を作成者に許可する時間）
	GracePeriodMinutes int

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitWrite   int

	// 外部要約API。URLが空の場合は要約機能を無効化する（テスト/CIのデフォルト）。
	SummaryAPIURL        string
	SummaryAPIKey        string
	SummaryTimeout       time.Duration
	SummaryBatchInterval time.Duration
	SummaryAPIInterval   time.Duration
	SummaryMinChars      int
	SummaryMaxPerCycle   int

	// 論理削除済み発言の物理削除までの保持日数
	RetentionDays int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.GracePeriodMinutes = getEnvInt("GRACE_PERIOD_MINUTES", 15)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitWrite = getEnvInt("RATE_LIMIT_WRITE", 30)
	cfg.SummaryAPIURL = os.Getenv("SUMMARY_API_URL")
	cfg.SummaryAPIKey = os.Getenv("SUMMARY_API_KEY")
	cfg.SummaryTimeout = getEnvDuration("SUMMARY_TIMEOUT", 10*time.Second)
	cfg.SummaryBatchInterval = getEnvDuration("SUMMARY_BATCH_INTERVAL", 10*time.Minute)
	cfg.SummaryAPIInterval = getEnvDuration("SUMMARY_API_INTERVAL", 2*time.Second)
	cfg.SummaryMinChars = getEnvInt("SUMMARY_MIN_CHARS", 1000)
	cfg.SummaryMaxPerCycle = getEnvInt("SUMMARY_MAX_PER_CYCLE", 50)
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// SummaryEnabled は外部要約APIが有効かどうかを返す。
func (c *Config) SummaryEnabled() bool {
	return c.SummaryAPIURL != ""
}

// GracePeriod は猶予期間をtime.Durationで返す。
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMinutes) * time.Minute
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
