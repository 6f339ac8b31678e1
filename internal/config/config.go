package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the client and the console
type Config struct {
	API      APIConfig
	Poll     PollConfig
	Server   ServerConfig
	Storage  StorageConfig
	Redis    RedisConfig
	AppEnv   string
	Progress ProgressConfig
}

// APIConfig describes the remote import API
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PollConfig controls import job tracking
type PollConfig struct {
	Interval    time.Duration
	MaxFailures int // 0 = retry forever
}

// ServerConfig holds console server configuration
type ServerConfig struct {
	Port string
}

// StorageConfig holds the local history database location
type StorageConfig struct {
	DBPath        string
	RetentionDays int // 0 = keep forever
	SweepInterval time.Duration
}

// RedisConfig enables the progress mirror when URL is set
type RedisConfig struct {
	URL      string
	Username string
	Password string
}

// ProgressConfig controls how long mirrored snapshots live
type ProgressConfig struct {
	TTL time.Duration
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	// .envファイルを読み込み（存在しない場合はスキップ）
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("API_BASE", "http://localhost:8000/api")
	v.SetDefault("API_TIMEOUT", "30s")
	v.SetDefault("POLL_INTERVAL", "500ms")
	v.SetDefault("POLL_MAX_FAILURES", 0)
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "data/prodimport.db")
	v.SetDefault("HISTORY_RETENTION_DAYS", 30)
	v.SetDefault("HISTORY_SWEEP_INTERVAL", "1h")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_USERNAME", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("PROGRESS_TTL", "24h")
	v.SetDefault("APP_ENV", "development")
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("API_BASE")), "/"),
			Timeout: positiveDuration(v.GetDuration("API_TIMEOUT"), 30*time.Second),
		},
		Poll: PollConfig{
			Interval:    positiveDuration(v.GetDuration("POLL_INTERVAL"), 500*time.Millisecond),
			MaxFailures: max(0, v.GetInt("POLL_MAX_FAILURES")),
		},
		Server: ServerConfig{
			Port: v.GetString("PORT"),
		},
		Storage: StorageConfig{
			DBPath:        v.GetString("DB_PATH"),
			RetentionDays: max(0, v.GetInt("HISTORY_RETENTION_DAYS")),
			SweepInterval: positiveDuration(v.GetDuration("HISTORY_SWEEP_INTERVAL"), time.Hour),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			Username: v.GetString("REDIS_USERNAME"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Progress: ProgressConfig{
			TTL: positiveDuration(v.GetDuration("PROGRESS_TTL"), 24*time.Hour),
		},
		AppEnv: v.GetString("APP_ENV"),
	}
}

func positiveDuration(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
