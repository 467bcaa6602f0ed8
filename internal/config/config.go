package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFilesystem = "filesystem"
	StoragePostgres   = "postgres"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	Trello   TrelloConfig
	Redis    RedisConfig
	NATS     NATSConfig
	SMTP     SMTPConfig
	Security SecurityConfig
	Keys     KeysConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	HTTPEnabled        bool
	SessionTTL         time.Duration
}

type DatabaseConfig struct {
	Connection string
}

type StorageConfig struct {
	Backend  string // "filesystem" or "postgres"
	DataDir  string
	FilesDir string
}

type TelegramConfig struct {
	Token       string
	PollTimeout int // seconds
	Debug       bool
}

type TrelloConfig struct {
	BaseURL           string
	TargetList        string
	Timeout           time.Duration
	UploadTimeout     time.Duration
	RequestsPerSecond float64
}

type RedisConfig struct {
	URL     string
	Enabled bool
	LockTTL time.Duration
}

type NATSConfig struct {
	URL     string
	Enabled bool
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type SecurityConfig struct {
	JWTSecret         string
	CredentialsSecret string
}

type KeysConfig struct {
	ReportTopic string
	ReportEmail string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/bot.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/commits.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			HTTPEnabled:        getEnvAsBool("HTTP_ENABLED", true),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", 0),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", StorageFilesystem),
			DataDir:  getEnv("DATA_DIR", "data"),
			FilesDir: getEnv("FILES_DIR", "data/files"),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_TOKEN", ""),
			PollTimeout: getEnvAsInt("TELEGRAM_POLL_TIMEOUT", 60),
			Debug:       getEnvAsBool("TELEGRAM_DEBUG", false),
		},
		Trello: TrelloConfig{
			BaseURL:           getEnv("TRELLO_BASE_URL", "https://api.trello.com/1"),
			TargetList:        getEnv("TRELLO_TARGET_LIST", "🚨 PEDIDOS SEM ARTE"),
			Timeout:           getEnvAsDuration("TRELLO_TIMEOUT", 30*time.Second),
			UploadTimeout:     getEnvAsDuration("TRELLO_UPLOAD_TIMEOUT", 120*time.Second),
			RequestsPerSecond: getEnvAsFloat("TRELLO_RPS", 8),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", "redis://localhost:6379"),
			Enabled: getEnvAsBool("REDIS_ENABLED", false),
			LockTTL: getEnvAsDuration("REDIS_LOCK_TTL", 15*time.Minute),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Order Card Bot"),
		},
		Security: SecurityConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			CredentialsSecret: getEnv("CREDENTIALS_SECRET", ""),
		},
		Keys: KeysConfig{
			ReportTopic: getEnv("COMMIT_REPORT_TOPIC_NAME", "COMMIT_REPORT"),
			ReportEmail: getEnv("REPORT_EMAIL", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("45s") and bare seconds ("45").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
