package config

import (
	"log"
	"os"

	"SignBridge/pkg/logger"
	stores "SignBridge/pkg/storage"
	"SignBridge/pkg/util"
)

type Config struct {
	Addr          string `env:"ADDR"`
	Mode          string `env:"MODE"`
	DBDriver      string `env:"DB_DRIVER"`
	DSN           string `env:"DSN"`
	Log           logger.LogConfig
	Storage       stores.MinioConfig
	APIPrefix     string `env:"API_PREFIX"`
	AdminPrefix   string `env:"ADMIN_PREFIX"`
	AuthPrefix    string `env:"AUTH_PREFIX"`
	SessionSecret string `env:"SESSION_SECRET"`

	// AI API. An empty key leaves the client constructible but every call
	// fails with a not-configured error, mirroring how the mobile app
	// degrades when its environment is incomplete.
	AIApiKey          string `env:"AI_API_KEY"`
	AIBaseURL         string `env:"AI_BASE_URL"`
	AIChatModel       string `env:"AI_CHAT_MODEL"`
	AITranscribeModel string `env:"AI_TRANSCRIBE_MODEL"`

	CacheType string `env:"CACHE_TYPE"`
	RedisAddr string `env:"REDIS_ADDR"`

	RateLimit string `env:"RATE_LIMIT"`

	// Cron expression; empty keeps the integrity pass manual-only.
	MaintenanceSchedule string `env:"MAINTENANCE_SCHEDULE"`
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	GlobalConfig = &Config{
		Addr:          util.GetEnvDefault("ADDR", ":8080"),
		Mode:          util.GetEnv("MODE"),
		DBDriver:      util.GetEnv("DB_DRIVER"),
		DSN:           util.GetEnv("DSN"),
		APIPrefix:     util.GetEnvDefault("API_PREFIX", "/api"),
		AdminPrefix:   util.GetEnvDefault("ADMIN_PREFIX", "/admin"),
		AuthPrefix:    util.GetEnvDefault("AUTH_PREFIX", "/auth"),
		SessionSecret: util.GetEnvDefault("SESSION_SECRET", "signbridge-dev-secret"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Storage: stores.MinioConfig{
			Endpoint:  util.GetEnv("MINIO_ENDPOINT"),
			AccessKey: util.GetEnv("MINIO_ACCESS_KEY"),
			SecretKey: util.GetEnv("MINIO_SECRET_KEY"),
			Bucket:    util.GetEnvDefault("MINIO_BUCKET", "audio-recordings"),
			UseSSL:    util.GetBoolEnv("MINIO_USE_SSL"),
			BaseURL:   util.GetEnv("MINIO_PUBLIC_BASE"),
		},
		AIApiKey:            util.GetEnv("AI_API_KEY"),
		AIBaseURL:           util.GetEnv("AI_BASE_URL"),
		AIChatModel:         util.GetEnvDefault("AI_CHAT_MODEL", "gpt-3.5-turbo"),
		AITranscribeModel:   util.GetEnvDefault("AI_TRANSCRIBE_MODEL", "whisper-1"),
		CacheType:           util.GetEnvDefault("CACHE_TYPE", "gocache"),
		RedisAddr:           util.GetEnv("REDIS_ADDR"),
		RateLimit:           util.GetEnvDefault("RATE_LIMIT", "60-M"),
		MaintenanceSchedule: util.GetEnv("MAINTENANCE_SCHEDULE"),
	}
	return nil
}
