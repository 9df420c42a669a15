package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StoreMode selects where products and users live.
type StoreMode string

const (
	StoreModeRemote StoreMode = "remote"
	StoreModeLocal  StoreMode = "local"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Store        StoreConfig
	Advisory     AdvisoryConfig
	Share        ShareConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// Timezone names the calendar used for "today" in purchase dates.
	Timezone string
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

// StoreConfig configures the durable local store tiers.
type StoreConfig struct {
	Mode           StoreMode
	PrimaryTier    string
	KeyPrefix      string
	SecondaryPath  string
	MirrorQueueLen int
}

// AdvisoryConfig schedules the daily lifespan sweep.
type AdvisoryConfig struct {
	Enabled  bool
	DailyAt  string
	Timezone string
}

// ShareConfig holds object storage settings for published share images.
type ShareConfig struct {
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	URLTTLMinutes   int
	ImageWidthPixel int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dsn := os.Getenv("POSTGRES_DSN")
	defaultMode := StoreModeLocal
	if dsn != "" {
		defaultMode = StoreModeRemote
	}
	mode := StoreMode(strings.ToLower(getEnv("STORE_MODE", string(defaultMode))))
	if mode != StoreModeRemote && mode != StoreModeLocal {
		return nil, fmt.Errorf("invalid STORE_MODE %q", mode)
	}
	if mode == StoreModeRemote && dsn == "" {
		return nil, fmt.Errorf("STORE_MODE=remote requires POSTGRES_DSN")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "device-cost-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			Timezone:              getEnv("APP_TIMEZONE", "UTC"),
		},
		Postgres: PostgresConfig{
			DSN:            dsn,
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
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*7),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Store: StoreConfig{
			Mode:           mode,
			PrimaryTier:    strings.ToLower(getEnv("STORE_PRIMARY_TIER", "redis")),
			KeyPrefix:      getEnv("STORE_KEY_PREFIX", "devicecost:"),
			SecondaryPath:  getEnv("STORE_SECONDARY_PATH", "data/mirror.db"),
			MirrorQueueLen: getEnvAsInt("STORE_MIRROR_QUEUE_LEN", 64),
		},
		Advisory: AdvisoryConfig{
			Enabled:  getEnvAsBool("ADVISORY_ENABLED", true),
			DailyAt:  getEnv("ADVISORY_DAILY_AT", "09:00"),
			Timezone: getEnv("ADVISORY_TIMEZONE", "UTC"),
		},
		Share: ShareConfig{
			S3Bucket:        os.Getenv("SHARE_S3_BUCKET"),
			S3Region:        getEnv("SHARE_S3_REGION", "us-east-1"),
			S3Endpoint:      os.Getenv("SHARE_S3_ENDPOINT"),
			S3AccessKey:     os.Getenv("SHARE_S3_ACCESS_KEY"),
			S3SecretKey:     os.Getenv("SHARE_S3_SECRET_KEY"),
			URLTTLMinutes:   getEnvAsInt("SHARE_URL_TTL_MINUTES", 60),
			ImageWidthPixel: getEnvAsInt("SHARE_IMAGE_WIDTH", 720),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if cfg.Store.PrimaryTier != "redis" && cfg.Store.PrimaryTier != "memory" {
		return nil, fmt.Errorf("invalid STORE_PRIMARY_TIER %q", cfg.Store.PrimaryTier)
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

// Location resolves the calendar timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	return loadLocation(a.Timezone)
}

// Location resolves the advisory timezone, falling back to UTC.
func (a AdvisoryConfig) Location() *time.Location {
	return loadLocation(a.Timezone)
}

// Enabled reports whether share images can be published to object storage.
func (s ShareConfig) Enabled() bool {
	return s.S3Bucket != ""
}

// URLTTL returns the presigned URL lifetime.
func (s ShareConfig) URLTTL() time.Duration {
	if s.URLTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.URLTTLMinutes) * time.Minute
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
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
