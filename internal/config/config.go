package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	SMTP       SMTPConfig
	Notify     NotifyConfig
	Monitoring MonitoringConfig
	Storage    StorageConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SMTPConfig holds the global outgoing-mail relay. Companies may carry their
// own override which takes precedence per message.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// NotifyConfig controls the notification dispatch pipeline.
type NotifyConfig struct {
	QueueSize             int
	Concurrency           int
	AttemptTimeoutSeconds int
	FrontendBaseURL       string
	DefaultEmailRecipient string
}

// MonitoringConfig holds defaults for the SLA/idle dashboard queries.
type MonitoringConfig struct {
	IRWarningHours         int
	ResolutionWarningHours int
	IdleDays               int
	CacheTTLSeconds        int
	QueryLimit             int
}

// StorageConfig selects and parameterizes the attachment storage backend.
type StorageConfig struct {
	Backend      string
	LocalDir     string
	BaseURL      string
	MaxSizeBytes int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "memoq-tickets-system"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", "localhost"),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Username:    os.Getenv("SMTP_USERNAME"),
			Password:    os.Getenv("SMTP_PASSWORD"),
			FromAddress: getEnv("SMTP_FROM_ADDRESS", "noreply@example.com"),
			FromName:    getEnv("SMTP_FROM_NAME", "MemoQ Ticket System"),
		},
		Notify: NotifyConfig{
			QueueSize:             getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			Concurrency:           getEnvAsInt("NOTIFY_CONCURRENCY", 4),
			AttemptTimeoutSeconds: getEnvAsInt("NOTIFY_ATTEMPT_TIMEOUT_SECONDS", 10),
			FrontendBaseURL:       getEnv("NOTIFY_FRONTEND_BASE_URL", "http://localhost:3000"),
			DefaultEmailRecipient: os.Getenv("NOTIFY_DEFAULT_EMAIL_RECIPIENT"),
		},
		Monitoring: MonitoringConfig{
			IRWarningHours:         getEnvAsInt("MONITORING_IR_WARNING_HOURS", 1),
			ResolutionWarningHours: getEnvAsInt("MONITORING_RESOLUTION_WARNING_HOURS", 24),
			IdleDays:               getEnvAsInt("MONITORING_IDLE_DAYS", 3),
			CacheTTLSeconds:        getEnvAsInt("MONITORING_CACHE_TTL_SECONDS", 60),
			QueryLimit:             getEnvAsInt("MONITORING_QUERY_LIMIT", 200),
		},
		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", "local"),
			LocalDir:     getEnv("STORAGE_LOCAL_DIR", "uploads"),
			BaseURL:      getEnv("STORAGE_BASE_URL", "/files"),
			MaxSizeBytes: int64(getEnvAsInt("STORAGE_MAX_SIZE_BYTES", 25<<20)),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AttemptTimeout bounds a single channel-sender call.
func (n NotifyConfig) AttemptTimeout() time.Duration {
	if n.AttemptTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n.AttemptTimeoutSeconds) * time.Second
}

// CacheTTL returns the monitoring cache lifetime.
func (m MonitoringConfig) CacheTTL() time.Duration {
	return time.Duration(m.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
